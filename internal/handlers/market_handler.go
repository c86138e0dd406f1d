package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"points-market/internal/services"
)

type MarketHandler struct {
	marketService *services.MarketService
}

func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// GetMarkets returns all markets
// GET /api/markets
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	markets, err := h.marketService.List()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, markets)
}

// GetMarketByID returns a specific market
// GET /api/markets/:id
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	market, err := h.marketService.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, market)
}

// CreateMarket creates a new market (admin only)
// POST /api/markets
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req struct {
		Question string   `json:"question"`
		Category string   `json:"category"`
		YesPrice *float64 `json:"yes_price"`
		NoPrice  *float64 `json:"no_price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Question == "" || req.YesPrice == nil || req.NoPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	market, err := h.marketService.Create(req.Question, req.Category, *req.YesPrice, *req.NoPrice)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, market)
}

// UpdateMarket applies a partial update (admin only). Omitted fields keep
// their prior value.
// PUT /api/markets/:id
func (h *MarketHandler) UpdateMarket(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var req struct {
		Question *string  `json:"question"`
		Category *string  `json:"category"`
		YesPrice *float64 `json:"yes_price"`
		NoPrice  *float64 `json:"no_price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.marketService.Update(id, services.MarketPatch{
		Question: req.Question,
		Category: req.Category,
		YesPrice: req.YesPrice,
		NoPrice:  req.NoPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, market)
}

// DeleteMarket removes a market (admin only)
// DELETE /api/markets/:id
func (h *MarketHandler) DeleteMarket(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	if err := h.marketService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Market deleted"})
}

// CreateMarketForm handles the admin creation form. Prices default to 50
// when the fields are left blank; success redirects home.
// POST /create_market, POST /add
func (h *MarketHandler) CreateMarketForm(c *gin.Context) {
	var req struct {
		Question string `form:"question"`
		Category string `form:"category"`
		YesPrice string `form:"yes_price"`
		NoPrice  string `form:"no_price"`
	}

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	yesPrice, err := parsePrice(req.YesPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price values."})
		return
	}
	noPrice, err := parsePrice(req.NoPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price values."})
		return
	}

	if _, err := h.marketService.Create(req.Question, req.Category, yesPrice, noPrice); err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// DeleteMarketForm removes a market and redirects home.
// GET /delete/:id
func (h *MarketHandler) DeleteMarketForm(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	if err := h.marketService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

func parsePrice(raw string) (float64, error) {
	if raw == "" {
		return 50, nil
	}
	return strconv.ParseFloat(raw, 64)
}
