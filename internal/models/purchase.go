package models

import (
	"time"
)

// Purchase is an append-only ledger entry recording a points-for-position
// trade. Rows are never updated; the only delete path is the cascade when
// the referenced market is removed.
type Purchase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MarketID  uint      `gorm:"not null;index" json:"market_id"`
	Market    Market    `gorm:"foreignKey:MarketID" json:"market,omitempty"`
	Outcome   string    `gorm:"size:3;not null" json:"outcome"`
	Amount    int       `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Purchase model
func (Purchase) TableName() string {
	return "purchases"
}
