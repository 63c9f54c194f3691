package service

import (
	"context"

	"github.com/fazamuttaqien/cards/internal/dto"
)

// CardServices is the capability the card endpoints delegate to.
// FetchCard fails with common.ErrCardNotFound when no card exists for the
// mobile number. UpdateCard and DeleteCard report false when the store did
// not change the record.
type CardServices interface {
	CreateCard(ctx context.Context, mobileNumber string) error
	FetchCard(ctx context.Context, mobileNumber string) (*dto.CardsDto, error)
	UpdateCard(ctx context.Context, req dto.CardsDto) (bool, error)
	DeleteCard(ctx context.Context, mobileNumber string) (bool, error)
}
