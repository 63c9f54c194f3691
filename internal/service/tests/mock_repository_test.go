package service_test

import (
	"context"

	"github.com/fazamuttaqien/cards/internal/domain"
)

type mockCardRepository struct {
	// Fields to control mock behavior
	MockFindByMobileData *domain.Card
	MockFindByNumberData *domain.Card
	MockFindError        error
	MockCreateError      error
	MockRowsAffected     int64
	MockWriteError       error

	// Fields to capture calls
	CreateCalledWith   *domain.Card
	UpdateCalledWith   *domain.Card
	DeleteCalledWith   uint64
	FindByMobileCalled int
}

func (m *mockCardRepository) CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	m.CreateCalledWith = card
	if m.MockCreateError != nil {
		return nil, m.MockCreateError
	}
	created := *card
	created.CardID = 1
	return &created, nil
}

func (m *mockCardRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) (*domain.Card, error) {
	m.FindByMobileCalled++
	if m.MockFindError != nil {
		return nil, m.MockFindError
	}
	if m.MockFindByMobileData != nil && m.MockFindByMobileData.MobileNumber == mobileNumber {
		card := *m.MockFindByMobileData
		return &card, nil
	}
	return nil, nil
}

func (m *mockCardRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	if m.MockFindError != nil {
		return nil, m.MockFindError
	}
	if m.MockFindByNumberData != nil && m.MockFindByNumberData.CardNumber == cardNumber {
		card := *m.MockFindByNumberData
		return &card, nil
	}
	return nil, nil
}

func (m *mockCardRepository) UpdateCard(ctx context.Context, card *domain.Card) (int64, error) {
	m.UpdateCalledWith = card
	return m.MockRowsAffected, m.MockWriteError
}

func (m *mockCardRepository) DeleteByID(ctx context.Context, cardID uint64) (int64, error) {
	m.DeleteCalledWith = cardID
	return m.MockRowsAffected, m.MockWriteError
}

type mockCardCache struct {
	MockGetData *domain.Card

	SetCalledWith  *domain.Card
	DeletedMobiles []string
}

func (m *mockCardCache) Get(ctx context.Context, mobileNumber string) (*domain.Card, error) {
	if m.MockGetData != nil && m.MockGetData.MobileNumber == mobileNumber {
		return m.MockGetData, nil
	}
	return nil, nil
}

func (m *mockCardCache) Set(ctx context.Context, card *domain.Card) error {
	m.SetCalledWith = card
	return nil
}

func (m *mockCardCache) Delete(ctx context.Context, mobileNumber string) error {
	m.DeletedMobiles = append(m.DeletedMobiles, mobileNumber)
	return nil
}

type mockPublisher struct {
	MockError error

	Published []domain.CardEvent
}

func (m *mockPublisher) Publish(ctx context.Context, e domain.CardEvent) error {
	m.Published = append(m.Published, e)
	return m.MockError
}

func (m *mockPublisher) Close() error { return nil }
