package model

import (
	"github.com/fazamuttaqien/cards/internal/domain"
)

func CardFromEntity(data *domain.Card) Card {
	return Card{
		CardID:          data.CardID,
		MobileNumber:    data.MobileNumber,
		CardNumber:      data.CardNumber,
		CardType:        data.CardType,
		TotalLimit:      data.TotalLimit,
		AmountUsed:      data.AmountUsed,
		AvailableAmount: data.AvailableAmount,
		CreatedAt:       data.CreatedAt,
		CreatedBy:       data.CreatedBy,
		UpdatedAt:       data.UpdatedAt,
		UpdatedBy:       data.UpdatedBy,
	}
}

func CardToEntity(data Card) *domain.Card {
	return &domain.Card{
		CardID:          data.CardID,
		MobileNumber:    data.MobileNumber,
		CardNumber:      data.CardNumber,
		CardType:        data.CardType,
		TotalLimit:      data.TotalLimit,
		AmountUsed:      data.AmountUsed,
		AvailableAmount: data.AvailableAmount,
		CreatedAt:       data.CreatedAt,
		CreatedBy:       data.CreatedBy,
		UpdatedAt:       data.UpdatedAt,
		UpdatedBy:       data.UpdatedBy,
	}
}
