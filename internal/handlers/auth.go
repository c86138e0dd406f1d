package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"points-market/internal/auth"
	"points-market/internal/models"
	"points-market/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Username string `json:"username" form:"username"`
}

// Register creates a new account and opens a session.
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Register(req.Email, req.Password, req.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userSummary(user),
	})
}

// Login verifies credentials and opens a session.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userSummary(user),
	})
}

// Logout invalidates the caller's session and redirects home. Requests
// without a session still get the redirect.
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := auth.GetSessionToken(c); ok {
		h.authService.Logout(token)
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// GetMe returns the current caller's profile.
// GET /api/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userSummary(user)})
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(auth.SessionCookie, token, 0, "/", "", false, true)
}

func userSummary(user *models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"name":     user.DisplayName(),
		"points":   user.Points,
		"is_admin": user.IsAdmin,
	}
}
