package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	orderColumns = `id, user_id, status, order_amount, created_at, completed_at`
	itemColumns  = `id, order_id, product_id, product_name, quantity, price`
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Amount, &o.CreatedAt, &o.CompletedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (*model.OrderItem, error) {
	var i model.OrderItem
	if err := row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Quantity, &i.Price); err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, status, order_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.UserID, order.Status, order.Amount, order.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("user_id", order.UserID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// GetPending retrieves the user's cart.
func (r *orderRepository) GetPending(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error) {
	return r.pending(ctx, tx, userID, "")
}

// LockPending retrieves the user's cart and locks it until the transaction ends.
func (r *orderRepository) LockPending(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error) {
	return r.pending(ctx, tx, userID, " FOR UPDATE")
}

func (r *orderRepository) pending(ctx context.Context, tx pgx.Tx, userID uuid.UUID, lock string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND status = $2` + lock

	order, err := scanOrder(tx.QueryRow(ctx, query, userID, model.OrderStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID.String()).Msg("pending order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query pending order")
		return nil, fmt.Errorf("failed to query pending order: %w", err)
	}
	return order, nil
}

// ListItems returns the lines of an order.
func (r *orderRepository) ListItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY product_name, id`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetItem retrieves a line belonging to the given order.
func (r *orderRepository) GetItem(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 AND id = $2`
	return r.item(ctx, tx, query, orderID, itemID)
}

// GetItemByProduct retrieves the line for a product in the given order.
func (r *orderRepository) GetItemByProduct(ctx context.Context, tx pgx.Tx, orderID, productID uuid.UUID) (*model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 AND product_id = $2`
	return r.item(ctx, tx, query, orderID, productID)
}

func (r *orderRepository) item(ctx context.Context, tx pgx.Tx, query string, orderID, id uuid.UUID) (*model.OrderItem, error) {
	item, err := scanItem(tx.QueryRow(ctx, query, orderID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order item")
		return nil, fmt.Errorf("failed to query order item: %w", err)
	}
	return item, nil
}

// CreateItem inserts a new line.
func (r *orderRepository) CreateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `INSERT INTO order_items (` + itemColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", item.OrderID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to create order item")
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// UpdateItem persists a line's quantity and price snapshot.
func (r *orderRepository) UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `UPDATE order_items SET quantity = $2, price = $3, product_name = $4 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, item.ID, item.Quantity, item.Price, item.ProductName)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to update order item")
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderItemNotFound
	}
	return nil
}

// DeleteItem removes a line.
func (r *orderRepository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to delete order item")
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderItemNotFound
	}
	return nil
}

// UpdateAmount stores a recomputed order total.
func (r *orderRepository) UpdateAmount(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, amount float64) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET order_amount = $2 WHERE id = $1`, orderID, amount)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order amount")
		return fmt.Errorf("failed to update order amount: %w", err)
	}
	return nil
}

// Complete marks a pending order as completed. Completed orders never change again.
func (r *orderRepository) Complete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, completedAt time.Time) error {
	query := `
		UPDATE orders SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
	`

	tag, err := tx.Exec(ctx, query, orderID, model.OrderStatusCompleted, completedAt, model.OrderStatusPending)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to complete order")
		return fmt.Errorf("failed to complete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

// ListCompleted returns the user's order history.
func (r *orderRepository) ListCompleted(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	orderQuery := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND status = $2
		ORDER BY completed_at DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, orderQuery, userID, model.OrderStatusCompleted)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query order history")
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}

	history := []model.OrderResponse{}
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		index[order.ID] = len(history)
		ids = append(ids, order.ID)
		history = append(history, model.OrderResponse{Order: *order, Items: []model.OrderItem{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return history, nil
	}

	itemsQuery := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY product_name, id`

	itemRows, err := r.pool.Query(ctx, itemsQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query order history items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		pos := index[item.OrderID]
		history[pos].Items = append(history[pos].Items, *item)
	}

	if err := itemRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return history, nil
}
