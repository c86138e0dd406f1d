package models

import (
	"time"
)

// Market outcome sides accepted by the trade service.
const (
	OutcomeYes = "yes"
	OutcomeNo  = "no"
)

// Market represents a binary prediction market. Prices start at 50/50 and
// must satisfy yes_price + no_price > 100 on create and update; trades move
// prices without re-checking that bound.
type Market struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"size:200;not null" json:"question"`
	Category  string    `gorm:"size:100" json:"category"`
	YesPrice  float64   `gorm:"not null;default:50" json:"yes_price"`
	NoPrice   float64   `gorm:"not null;default:50" json:"no_price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Market model
func (Market) TableName() string {
	return "markets"
}
