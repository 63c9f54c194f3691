package model

import (
	"time"

	"gorm.io/gorm"
)

// Card represents the cards table
type Card struct {
	CardID          uint64    `gorm:"primaryKey;autoIncrement" json:"card_id"`
	MobileNumber    string    `gorm:"type:varchar(15);not null;uniqueIndex" json:"mobile_number"`
	CardNumber      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"card_number"`
	CardType        string    `gorm:"type:varchar(100);not null" json:"card_type"`
	TotalLimit      int64     `gorm:"not null" json:"total_limit"`
	AmountUsed      int64     `gorm:"not null" json:"amount_used"`
	AvailableAmount int64     `gorm:"not null" json:"available_amount"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy       string    `gorm:"type:varchar(20);not null" json:"created_by"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UpdatedBy       string    `gorm:"type:varchar(20)" json:"updated_by"`
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Card{})
}
