// Package services implements the core operations behind the HTTP surface:
// account registration and login, the market catalog, and the points-for-
// position trade. errors.go defines the sentinel errors handlers use to
// pick response codes.
package services

import "errors"

var (
	// ErrInvalidInput — a required field is missing or malformed
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateIdentity — email or username already registered
	ErrDuplicateIdentity = errors.New("identity already registered")
	// ErrNotFound — referenced user or market does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredential — password check failed
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrInsufficientFunds — buy amount exceeds the caller's points
	ErrInsufficientFunds = errors.New("not enough points")
	// ErrSpreadViolation — yes_price + no_price must exceed 100
	ErrSpreadViolation = errors.New("the sum of Yes and No prices must be greater than 100 (spread required)")
)
