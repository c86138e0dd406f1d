package auth

import (
	"net/http"

	"points-market/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminPolicy decides whether the calling request may perform admin
// operations. Two models exist across deployments: the is_admin flag on the
// user row, and a shared-secret key passed as a query parameter.
type AdminPolicy interface {
	Allow(c *gin.Context) bool
}

// FlagPolicy authorizes callers whose user row has is_admin set.
type FlagPolicy struct {
	db *gorm.DB
}

// NewFlagPolicy creates a FlagPolicy backed by the given database.
func NewFlagPolicy(db *gorm.DB) *FlagPolicy {
	return &FlagPolicy{db: db}
}

// Allow reports whether the caller is an authenticated admin user.
func (p *FlagPolicy) Allow(c *gin.Context) bool {
	userID, ok := GetUserID(c)
	if !ok {
		return false
	}

	var user models.User
	if err := p.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return false
	}

	return user.IsAdmin
}

// SharedKeyPolicy authorizes any request carrying the configured secret in
// the "key" query parameter, regardless of session state.
type SharedKeyPolicy struct {
	key string
}

// NewSharedKeyPolicy creates a SharedKeyPolicy with the given secret.
func NewSharedKeyPolicy(key string) *SharedKeyPolicy {
	return &SharedKeyPolicy{key: key}
}

// Allow reports whether the request carries the shared secret.
func (p *SharedKeyPolicy) Allow(c *gin.Context) bool {
	return p.key != "" && c.Query("key") == p.key
}

// RequireAdmin rejects requests the policy denies with 403.
func RequireAdmin(policy AdminPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Allow(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
