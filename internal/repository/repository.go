package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor opens the transactions cart and account operations run in.
type Transactor interface {
	// BeginTx starts a new read-committed transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields model.ErrUserAlreadyExists.
	Create(ctx context.Context, tx pgx.Tx, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByIDForUpdate retrieves and row-locks a user within the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]model.User, error)

	// UpdateFunds overwrites balance and bonus points within the transaction.
	UpdateFunds(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, bonusPoints float64) error

	// AddBalance atomically increments the balance and returns the new value.
	AddBalance(ctx context.Context, id uuid.UUID, amount float64) (float64, error)

	// SetBalance overwrites the balance and returns the updated user, or nil when absent.
	SetBalance(ctx context.Context, id uuid.UUID, balance float64) (*model.User, error)

	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Delete removes the user; orders and their lines cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves the whole catalogue ordered by name.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDTx is GetByID within the provided transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// LockByIDs retrieves and row-locks the given products in id order.
	// Unknown IDs are simply missing from the result.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock removes quantity units from stock within the transaction.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error

	// Upsert inserts or updates products by ID in a single batch.
	Upsert(ctx context.Context, tx pgx.Tx, products []model.Product) (int, error)
}

// OrderRepository defines the interface for order and order line data access.
// Cart operations are transaction-bound so the engine controls isolation.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetPending retrieves the user's cart without locking. Returns nil when absent.
	GetPending(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error)

	// LockPending retrieves the user's cart and locks it FOR UPDATE.
	LockPending(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error)

	ListItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetItem retrieves a line only when it belongs to the given order.
	GetItem(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*model.OrderItem, error)

	GetItemByProduct(ctx context.Context, tx pgx.Tx, orderID, productID uuid.UUID) (*model.OrderItem, error)
	CreateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// UpdateItem persists quantity and price snapshot of an existing line.
	UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
	UpdateAmount(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, amount float64) error

	// Complete moves a pending order to completed.
	Complete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, completedAt time.Time) error

	// ListCompleted returns the user's completed orders with lines, newest first.
	ListCompleted(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)
}
