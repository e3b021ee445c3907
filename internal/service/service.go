package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CartService drives the pending order ("cart") of a user through its lifecycle.
// Every operation runs in one transaction holding the cart row lock.
type CartService interface {
	// AddItem adds quantity units of a product, merging with an existing line.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.OrderResponse, error)

	// GetCart returns the pending order with its lines.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.OrderResponse, error)

	// UpdateItemQuantity overwrites a line's quantity. Zero removes the line.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.OrderResponse, error)

	// DeleteItem removes a line from the cart.
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (*model.OrderResponse, error)

	// Checkout completes the cart, consuming stock and balance and opening a new cart.
	Checkout(ctx context.Context, userID uuid.UUID) (*model.OrderResponse, error)

	// History returns completed orders, newest first.
	History(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)
}

// UserService defines account and administration operations.
type UserService interface {
	// Register creates a user together with their first cart.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	Deposit(ctx context.Context, userID uuid.UUID, amount float64) (float64, error)
	ChangePassword(ctx context.Context, user *model.User, req *model.ChangePasswordRequest) error
	ChangeEmail(ctx context.Context, userID uuid.UUID, email string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetBalance(ctx context.Context, id uuid.UUID, balance float64) (*model.User, error)

	// EnsureAdmin creates the administrator account when it does not exist yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves the whole catalogue.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error)

	// Update applies a partial update.
	Update(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.Product, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// runInTx runs fn in a transaction, committing when it returns nil and rolling
// back otherwise. Domain errors from fn are returned unwrapped.
func runInTx(ctx context.Context, txr repository.Transactor, logger zerolog.Logger, op string, fn func(tx pgx.Tx) error) (err error) {
	tx, err := txr.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Str("operation", op).Msg("failed to begin transaction")
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Str("operation", op).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Str("operation", op).Msg("failed to commit transaction")
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	return nil
}
