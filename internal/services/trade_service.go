package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"points-market/internal/models"
)

// TradeService executes the one stateful transaction in the system: debit
// the buyer, append a purchase, and move the chosen side's price by
// 0.1 per point. The spread invariant is deliberately not re-checked after
// the price move.
type TradeService struct {
	db *gorm.DB
}

// NewTradeService creates a new TradeService
func NewTradeService(db *gorm.DB) *TradeService {
	return &TradeService{db: db}
}

// TradeResult reports the caller's balance and the market prices after a buy.
type TradeResult struct {
	Purchase *models.Purchase `json:"purchase"`
	Points   int              `json:"points"`
	YesPrice float64          `json:"yes_price"`
	NoPrice  float64          `json:"no_price"`
}

// Buy atomically validates and applies a purchase. The debit, the purchase
// insert and the price move commit together or not at all; the user and
// market rows are read under FOR UPDATE so two concurrent buys cannot both
// pass the balance check.
func (s *TradeService) Buy(userID, marketID uint, outcome string, amount int) (*TradeResult, error) {
	if marketID == 0 || amount <= 0 {
		return nil, ErrInvalidInput
	}
	if outcome != models.OutcomeYes && outcome != models.OutcomeNo {
		return nil, ErrInvalidInput
	}

	var result TradeResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var market models.Market
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", marketID).First(&market).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch market: %w", err)
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}

		if user.Points < amount {
			return ErrInsufficientFunds
		}

		user.Points -= amount
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("points", user.Points).Error; err != nil {
			return fmt.Errorf("failed to debit points: %w", err)
		}

		purchase := models.Purchase{
			UserID:   user.ID,
			MarketID: market.ID,
			Outcome:  outcome,
			Amount:   amount,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return fmt.Errorf("failed to record purchase: %w", err)
		}

		// Linear price impact: +0.1 per point spent, no normalization.
		if outcome == models.OutcomeYes {
			market.YesPrice += 0.1 * float64(amount)
		} else {
			market.NoPrice += 0.1 * float64(amount)
		}
		if err := tx.Model(&models.Market{}).Where("id = ?", market.ID).
			Updates(map[string]interface{}{
				"yes_price": market.YesPrice,
				"no_price":  market.NoPrice,
			}).Error; err != nil {
			return fmt.Errorf("failed to update price: %w", err)
		}

		result = TradeResult{
			Purchase: &purchase,
			Points:   user.Points,
			YesPrice: market.YesPrice,
			NoPrice:  market.NoPrice,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &result, nil
}
