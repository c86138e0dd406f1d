package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"points-market/internal/services"
)

// writeError maps service errors onto the HTTP taxonomy: 400 for
// user-correctable input problems, 401/403/404 for auth and lookup
// failures, 500 for everything the store surfaces.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrDuplicateIdentity),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrSpreadViolation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
