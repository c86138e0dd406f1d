package services

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"points-market/internal/auth"
	"points-market/internal/config"
	"points-market/internal/models"
)

// AuthService handles registration, login and session management. The
// credential policy is fixed at construction: "password" verifies a bcrypt
// hash, "identity" only checks that the email exists.
type AuthService struct {
	db               *gorm.DB
	sessions         *auth.SessionStore
	credentialPolicy string
	defaultPoints    int
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, sessions *auth.SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		db:               db,
		sessions:         sessions,
		credentialPolicy: cfg.Auth.CredentialPolicy,
		defaultPoints:    cfg.App.DefaultPoints,
	}
}

// Register creates a user with the default points balance and binds a new
// session to it. The username is optional.
func (s *AuthService) Register(email, password, username string) (*models.User, string, error) {
	if email == "" {
		return nil, "", ErrInvalidInput
	}
	if s.credentialPolicy == config.CredentialPassword && password == "" {
		return nil, "", ErrInvalidInput
	}

	var existing models.User
	query := s.db.Where("email = ?", email)
	if username != "" {
		query = s.db.Where("email = ? OR username = ?", email, username)
	}
	if err := query.First(&existing).Error; err == nil {
		return nil, "", ErrDuplicateIdentity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	user := models.User{
		Email:  email,
		Points: s.defaultPoints,
	}
	if username != "" {
		user.Username = &username
	}

	if s.credentialPolicy == config.CredentialPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token := s.sessions.Create(user.ID)
	log.Printf("New user registered: %s (ID: %d)", user.Email, user.ID)

	return &user, token, nil
}

// Login verifies credentials per the active policy and binds a session to
// the existing user.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	if email == "" {
		return nil, "", ErrInvalidInput
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	if s.credentialPolicy == config.CredentialPassword {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, "", ErrInvalidCredential
		}
	}

	token := s.sessions.Create(user.ID)
	log.Printf("User logged in: %s (ID: %d)", user.Email, user.ID)

	return &user, token, nil
}

// Logout invalidates the session. Unknown tokens are a no-op.
func (s *AuthService) Logout(token string) {
	s.sessions.Delete(token)
}

// ResolveCaller maps a session token to a user id; absent or expired
// sessions yield the anonymous caller (0, false).
func (s *AuthService) ResolveCaller(token string) (uint, bool) {
	return s.sessions.Resolve(token)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
