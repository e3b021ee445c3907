package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(email string) *model.User {
	return &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

// seedUser inserts a user together with an empty pending order.
func seedUser(t *testing.T, pool *pgxpool.Pool, email string) (*model.User, *model.Order) {
	ctx := context.Background()
	users := NewUserRepository(pool, zerolog.Nop())
	orders := NewOrderRepository(pool, zerolog.Nop())
	txr := NewTransactor(pool, zerolog.Nop())

	user := testUser(email)
	cart := &model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := txr.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, tx, user))
	require.NoError(t, orders.CreateOrder(ctx, tx, cart))
	require.NoError(t, tx.Commit(ctx))

	return user, cart
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user, _ := seedUser(t, pool, "alice@example.com")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, model.RoleUser, byID.Role)
	assert.Zero(t, byID.Balance)
	assert.Zero(t, byID.BonusPoints)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	txr := NewTransactor(pool, zerolog.Nop())
	ctx := context.Background()

	seedUser(t, pool, "alice@example.com")

	tx, err := txr.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = repo.Create(ctx, tx, testUser("alice@example.com"))
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestUserRepository_Balance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	txr := NewTransactor(pool, zerolog.Nop())
	ctx := context.Background()

	user, _ := seedUser(t, pool, "alice@example.com")

	balance, err := repo.AddBalance(ctx, user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	balance, err = repo.AddBalance(ctx, user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 125.0, balance)

	_, err = repo.AddBalance(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	updated, err := repo.SetBalance(ctx, user.ID, 50)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 50.0, updated.Balance)

	none, err := repo.SetBalance(ctx, uuid.New(), 50)
	require.NoError(t, err)
	assert.Nil(t, none)

	tx, err := txr.BeginTx(ctx)
	require.NoError(t, err)
	locked, err := repo.GetByIDForUpdate(ctx, tx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	require.NoError(t, repo.UpdateFunds(ctx, tx, user.ID, locked.Balance-20, 2))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Balance)
	assert.Equal(t, 2.0, got.BonusPoints)
}

func TestUserRepository_UpdateCredentials(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	ctx := context.Background()

	alice, _ := seedUser(t, pool, "alice@example.com")
	seedUser(t, pool, "bob@example.com")

	assert.ErrorIs(t, repo.UpdateEmail(ctx, alice.ID, "bob@example.com"), model.ErrUserAlreadyExists)
	require.NoError(t, repo.UpdateEmail(ctx, alice.ID, "alice@new.example.com"))
	assert.ErrorIs(t, repo.UpdateEmail(ctx, uuid.New(), "x@example.com"), model.ErrUserNotFound)

	require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "h"), model.ErrUserNotFound)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", got.Email)
	assert.Equal(t, "new-hash", got.PasswordHash)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepository_DeleteCascadesOrders(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user, cart := seedUser(t, pool, "alice@example.com")

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), model.ErrUserNotFound)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE id = $1`, cart.ID).Scan(&count))
	assert.Zero(t, count)
}
