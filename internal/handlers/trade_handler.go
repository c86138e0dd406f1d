package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"points-market/internal/auth"
	"points-market/internal/services"
)

type TradeHandler struct {
	tradeService *services.TradeService
}

func NewTradeHandler(tradeService *services.TradeService) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// Buy spends the caller's points on a yes/no position. Accepts form posts
// from the market page and JSON from API clients.
// POST /buy
func (h *TradeHandler) Buy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	var req struct {
		MarketID uint   `json:"market_id" form:"market_id"`
		Outcome  string `json:"outcome" form:"outcome"`
		Amount   int    `json:"amount" form:"amount"`
	}

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result, err := h.tradeService.Buy(userID, req.MarketID, req.Outcome, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Bought %d %s on market %d", req.Amount, req.Outcome, req.MarketID),
		"points":    result.Points,
		"yes_price": result.YesPrice,
		"no_price":  result.NoPrice,
	})
}
