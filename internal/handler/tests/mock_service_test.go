package handler_test

import (
	"context"

	"github.com/fazamuttaqien/cards/internal/dto"

	"github.com/stretchr/testify/mock"
)

type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) CreateCard(ctx context.Context, mobileNumber string) error {
	args := m.Called(ctx, mobileNumber)
	return args.Error(0)
}

func (m *MockCardService) FetchCard(ctx context.Context, mobileNumber string) (*dto.CardsDto, error) {
	args := m.Called(ctx, mobileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CardsDto), args.Error(1)
}

func (m *MockCardService) UpdateCard(ctx context.Context, req dto.CardsDto) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockCardService) DeleteCard(ctx context.Context, mobileNumber string) (bool, error) {
	args := m.Called(ctx, mobileNumber)
	return args.Bool(0), args.Error(1)
}
