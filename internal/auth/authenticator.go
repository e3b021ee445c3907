package auth

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// UserLookup is the slice of the user store the authenticator needs.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator verifies credentials and resolves bearer tokens to users.
type Authenticator interface {
	// Login checks the credentials and issues a bearer token.
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)

	// Resolve returns the user a token was issued for.
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// authenticator implements Authenticator.
type authenticator struct {
	users  UserLookup
	tokens *TokenManager
	logger zerolog.Logger
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(users UserLookup, tokens *TokenManager, logger zerolog.Logger) Authenticator {
	return &authenticator{
		users:  users,
		tokens: tokens,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Login implements Authenticator.
func (a *authenticator) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		a.logger.Debug().Str("email", email).Msg("login for unknown email")
		return nil, model.ErrUserNotFound
	}

	if !VerifyPassword(password, user.PasswordHash) {
		a.logger.Warn().Str("user_id", user.ID.String()).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	a.logger.Info().Str("user_id", user.ID.String()).Msg("token issued")

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(a.tokens.TTL().Seconds()),
	}, nil
}

// Resolve implements Authenticator.
func (a *authenticator) Resolve(ctx context.Context, token string) (*model.User, error) {
	subject, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token subject: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

// RequireRole fails with model.ErrForbidden unless user has the given role.
func RequireRole(user *model.User, role string) error {
	if user == nil || user.Role != role {
		return model.ErrForbidden
	}
	return nil
}
