package dto

import "github.com/fazamuttaqien/cards/internal/domain"

// CardsDto is the wire shape of a card, used both as the update request body
// and as the fetch response.
type CardsDto struct {
	MobileNumber    string `json:"mobileNumber" validate:"required,mobile"`
	CardNumber      string `json:"cardNumber" validate:"required,len=12,number"`
	CardType        string `json:"cardType" validate:"required"`
	TotalLimit      int64  `json:"totalLimit" validate:"gt=0"`
	AmountUsed      int64  `json:"amountUsed" validate:"gte=0"`
	AvailableAmount int64  `json:"availableAmount" validate:"gte=0"`
}

// --- Mapping --- //

func CardToDto(card *domain.Card) *CardsDto {
	return &CardsDto{
		MobileNumber:    card.MobileNumber,
		CardNumber:      card.CardNumber,
		CardType:        card.CardType,
		TotalLimit:      card.TotalLimit,
		AmountUsed:      card.AmountUsed,
		AvailableAmount: card.AvailableAmount,
	}
}

// ApplyToCard copies the mutable fields of the request onto an existing card.
func ApplyToCard(req CardsDto, card *domain.Card) {
	card.MobileNumber = req.MobileNumber
	card.CardNumber = req.CardNumber
	card.CardType = req.CardType
	card.TotalLimit = req.TotalLimit
	card.AmountUsed = req.AmountUsed
	card.AvailableAmount = req.AvailableAmount
}
