package repository

import (
	"context"

	"github.com/fazamuttaqien/cards/internal/domain"
)

type CardRepository interface {
	CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error)
	FindByMobileNumber(ctx context.Context, mobileNumber string) (*domain.Card, error)
	FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Card, error)
	UpdateCard(ctx context.Context, card *domain.Card) (int64, error)
	DeleteByID(ctx context.Context, cardID uint64) (int64, error)
}

type CardCache interface {
	Get(ctx context.Context, mobileNumber string) (*domain.Card, error)
	Set(ctx context.Context, card *domain.Card) error
	Delete(ctx context.Context, mobileNumber string) error
}

type CardEventPublisher interface {
	Publish(ctx context.Context, event domain.CardEvent) error
	Close() error
}
