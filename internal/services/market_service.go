package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"points-market/internal/models"
)

// MarketService implements the market catalog: list, get, create, update,
// delete. The spread invariant (yes + no > 100) is enforced here on create
// and update only.
type MarketService struct {
	db *gorm.DB
}

// NewMarketService creates a new MarketService
func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{db: db}
}

// MarketPatch carries a partial update; nil fields keep their prior value.
type MarketPatch struct {
	Question *string
	Category *string
	YesPrice *float64
	NoPrice  *float64
}

// List returns all markets in insertion order.
func (s *MarketService) List() ([]models.Market, error) {
	var markets []models.Market
	if err := s.db.Order("id").Find(&markets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}
	return markets, nil
}

// Get returns a single market by id.
func (s *MarketService) Get(id uint) (*models.Market, error) {
	var market models.Market
	if err := s.db.Where("id = ?", id).First(&market).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch market: %w", err)
	}
	return &market, nil
}

// Create validates the spread invariant and persists a new market.
func (s *MarketService) Create(question, category string, yesPrice, noPrice float64) (*models.Market, error) {
	if question == "" {
		return nil, ErrInvalidInput
	}
	if yesPrice+noPrice <= 100 {
		return nil, ErrSpreadViolation
	}

	market := models.Market{
		Question: question,
		Category: category,
		YesPrice: yesPrice,
		NoPrice:  noPrice,
	}

	if err := s.db.Create(&market).Error; err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	return &market, nil
}

// Update applies a partial update. The spread invariant is re-validated
// against the resulting yes/no pair before anything is committed.
func (s *MarketService) Update(id uint, patch MarketPatch) (*models.Market, error) {
	market, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.Question != nil {
		market.Question = *patch.Question
	}
	if patch.Category != nil {
		market.Category = *patch.Category
	}
	if patch.YesPrice != nil {
		market.YesPrice = *patch.YesPrice
	}
	if patch.NoPrice != nil {
		market.NoPrice = *patch.NoPrice
	}

	if market.YesPrice+market.NoPrice <= 100 {
		return nil, ErrSpreadViolation
	}

	if err := s.db.Save(market).Error; err != nil {
		return nil, fmt.Errorf("failed to update market: %w", err)
	}

	return market, nil
}

// Delete removes a market and, in the same transaction, the purchases that
// reference it. Deleting a missing market is ErrNotFound.
func (s *MarketService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var market models.Market
		if err := tx.Where("id = ?", id).First(&market).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch market: %w", err)
		}

		if err := tx.Where("market_id = ?", id).Delete(&models.Purchase{}).Error; err != nil {
			return fmt.Errorf("failed to delete purchases: %w", err)
		}

		if err := tx.Delete(&market).Error; err != nil {
			return fmt.Errorf("failed to delete market: %w", err)
		}

		return nil
	})
}
