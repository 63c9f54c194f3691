package domain

import "time"

const (
	CreditCard       = "Credit Card"
	NewCardLimit     = 100_000
	CardNumberLength = 12
)

type Card struct {
	CardID          uint64
	MobileNumber    string
	CardNumber      string
	CardType        string
	TotalLimit      int64
	AmountUsed      int64
	AvailableAmount int64
	CreatedAt       time.Time
	CreatedBy       string
	UpdatedAt       time.Time
	UpdatedBy       string
}

// RecalculateAvailable keeps AvailableAmount = TotalLimit - AmountUsed.
func (c *Card) RecalculateAvailable() {
	c.AvailableAmount = c.TotalLimit - c.AmountUsed
}

type CardEventType string

const (
	CardCreated CardEventType = "card.created"
	CardUpdated CardEventType = "card.updated"
	CardDeleted CardEventType = "card.deleted"
)

type CardEvent struct {
	EventID      string        `json:"event_id"`
	Type         CardEventType `json:"type"`
	MobileNumber string        `json:"mobile_number"`
	CardNumber   string        `json:"card_number"`
	OccurredAt   time.Time     `json:"occurred_at"`
}
