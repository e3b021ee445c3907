package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names stored on user records.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a customer account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Balance      float64   `json:"balance" db:"balance"`
	BonusPoints  float64   `json:"bonus_points" db:"bonus_points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=16"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse follows the OAuth2 bearer token response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// DepositRequest adds funds to the caller's balance.
type DepositRequest struct {
	Amount float64 `json:"amount"`
}

// DepositResponse reports the balance after a deposit.
type DepositResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	OldPassword       string `json:"old_password" validate:"required,min=6,max=16"`
	NewPassword       string `json:"new_password" validate:"required,min=6,max=16"`
	NewPasswordRepeat string `json:"new_password_reped" validate:"required,min=6,max=16"`
}

// ChangeEmailRequest replaces the caller's email.
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// SetBalanceRequest is used by administrators to overwrite a balance.
type SetBalanceRequest struct {
	NewBalance float64 `json:"new_balance"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
