package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	txr         repository.Transactor
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	cache       cache.ProductCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	txr repository.Transactor,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	productCache cache.ProductCache,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		txr:         txr,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cache:       productCache,
		logger:      logger.With().Str("service", "cart").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AddItem adds quantity units of a product to the user's cart.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.OrderResponse, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	var resp *model.OrderResponse
	err := runInTx(ctx, s.txr, s.logger, "add item", func(tx pgx.Tx) error {
		product, err := s.productRepo.GetByIDTx(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return model.ErrProductNotFound
		}

		// stock is checked against the requested amount only; carts reserve nothing
		if quantity > product.StockQuantity {
			s.logger.Debug().
				Str("product_id", productID.String()).
				Int("requested", quantity).
				Int("available", product.StockQuantity).
				Msg("insufficient stock for add")
			return model.ErrInsufficientStock
		}

		cart, err := s.lockCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		line, err := s.orderRepo.GetItemByProduct(ctx, tx, cart.ID, productID)
		if err != nil {
			return fmt.Errorf("failed to get cart line: %w", err)
		}

		if line != nil {
			// re-adding refreshes the price snapshot
			line.Quantity += quantity
			line.Price = product.Price
			line.ProductName = product.Name
			if err := s.orderRepo.UpdateItem(ctx, tx, line); err != nil {
				return fmt.Errorf("failed to update cart line: %w", err)
			}
		} else {
			line = &model.OrderItem{
				ID:          uuid.New(),
				OrderID:     cart.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    quantity,
				Price:       product.Price,
			}
			if err := s.orderRepo.CreateItem(ctx, tx, line); err != nil {
				return fmt.Errorf("failed to create cart line: %w", err)
			}
		}

		resp, err = s.recompute(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Float64("order_amount", resp.Amount).
		Msg("item added to cart")

	return resp, nil
}

// GetCart returns the user's pending order.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.OrderResponse, error) {
	var resp *model.OrderResponse
	err := runInTx(ctx, s.txr, s.logger, "get cart", func(tx pgx.Tx) error {
		cart, err := s.orderRepo.GetPending(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to get cart: %w", err)
		}
		if cart == nil {
			return model.ErrCartNotFound
		}

		items, err := s.orderRepo.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to list cart lines: %w", err)
		}

		resp = &model.OrderResponse{Order: *cart, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateItemQuantity sets a line's quantity, keeping its price snapshot.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.OrderResponse, error) {
	var resp *model.OrderResponse
	err := runInTx(ctx, s.txr, s.logger, "update cart line", func(tx pgx.Tx) error {
		cart, line, err := s.lockLine(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if quantity < 0 {
			return model.ErrQuantityNegative
		}

		if quantity == 0 {
			if err := s.orderRepo.DeleteItem(ctx, tx, line.ID); err != nil {
				return fmt.Errorf("failed to delete cart line: %w", err)
			}
		} else {
			line.Quantity = quantity
			if err := s.orderRepo.UpdateItem(ctx, tx, line); err != nil {
				return fmt.Errorf("failed to update cart line: %w", err)
			}
		}

		resp, err = s.recompute(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("item_id", itemID.String()).
		Int("quantity", quantity).
		Msg("cart line updated")

	return resp, nil
}

// DeleteItem removes a line from the user's cart.
func (s *cartService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (*model.OrderResponse, error) {
	var resp *model.OrderResponse
	err := runInTx(ctx, s.txr, s.logger, "delete cart line", func(tx pgx.Tx) error {
		cart, line, err := s.lockLine(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := s.orderRepo.DeleteItem(ctx, tx, line.ID); err != nil {
			return fmt.Errorf("failed to delete cart line: %w", err)
		}

		resp, err = s.recompute(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("item_id", itemID.String()).
		Msg("cart line deleted")

	return resp, nil
}

// Checkout validates every line against locked stock and the locked balance
// before applying any mutation, so a failed checkout changes nothing.
func (s *cartService) Checkout(ctx context.Context, userID uuid.UUID) (*model.OrderResponse, error) {
	var resp *model.OrderResponse
	err := runInTx(ctx, s.txr, s.logger, "checkout", func(tx pgx.Tx) error {
		cart, err := s.lockCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		items, err := s.orderRepo.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to list cart lines: %w", err)
		}
		if len(items) == 0 {
			return model.ErrCartEmpty
		}

		ids := make([]uuid.UUID, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}

		products, err := s.productRepo.LockByIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}
		stock := make(map[uuid.UUID]int, len(products))
		for _, p := range products {
			stock[p.ID] = p.StockQuantity
		}

		for _, item := range items {
			available, ok := stock[item.ProductID]
			if !ok {
				s.logger.Warn().
					Str("user_id", userID.String()).
					Str("product_id", item.ProductID.String()).
					Msg("cart references a deleted product")
				return model.ErrProductNotFound
			}
			if item.Quantity > available {
				return &model.StockError{ProductID: item.ProductID, Requested: item.Quantity, Available: available}
			}
		}

		user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if user == nil {
			return model.ErrUserNotFound
		}

		total := model.OrderTotal(items)
		if user.Balance < total {
			s.logger.Debug().
				Str("user_id", userID.String()).
				Float64("balance", user.Balance).
				Float64("order_amount", total).
				Msg("insufficient funds for checkout")
			return model.ErrInsufficientFunds
		}

		for _, item := range items {
			if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to consume stock: %w", err)
			}
		}

		if err := s.userRepo.UpdateFunds(ctx, tx, userID, user.Balance-total, user.BonusPoints+total/model.BonusRate); err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		if err := s.orderRepo.UpdateAmount(ctx, tx, cart.ID, total); err != nil {
			return fmt.Errorf("failed to update order amount: %w", err)
		}

		completedAt := s.now()
		if err := s.orderRepo.Complete(ctx, tx, cart.ID, completedAt); err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}

		next := &model.Order{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    model.OrderStatusPending,
			CreatedAt: completedAt,
		}
		if err := s.orderRepo.CreateOrder(ctx, tx, next); err != nil {
			return fmt.Errorf("failed to open new cart: %w", err)
		}

		cart.Status = model.OrderStatusCompleted
		cart.Amount = total
		cart.CompletedAt = &completedAt
		resp = &model.OrderResponse{Order: *cart, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate product cache after checkout")
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("order_id", resp.ID.String()).
		Float64("order_amount", resp.Amount).
		Int("line_count", len(resp.Items)).
		Msg("checkout completed")

	return resp, nil
}

// History returns the user's completed orders.
func (s *cartService) History(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListCompleted(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get order history")
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	return orders, nil
}

func (s *cartService) lockCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Order, error) {
	cart, err := s.orderRepo.LockPending(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cart == nil {
		s.logger.Warn().Str("user_id", userID.String()).Msg("user has no pending order")
		return nil, model.ErrCartNotFound
	}
	return cart, nil
}

func (s *cartService) lockLine(ctx context.Context, tx pgx.Tx, userID, itemID uuid.UUID) (*model.Order, *model.OrderItem, error) {
	cart, err := s.lockCart(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	line, err := s.orderRepo.GetItem(ctx, tx, cart.ID, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	if line == nil {
		return nil, nil, model.ErrOrderItemNotFound
	}
	return cart, line, nil
}

// recompute re-reads the lines and stores their full sum as the order amount.
func (s *cartService) recompute(ctx context.Context, tx pgx.Tx, cart *model.Order) (*model.OrderResponse, error) {
	items, err := s.orderRepo.ListItems(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	total := model.OrderTotal(items)
	if err := s.orderRepo.UpdateAmount(ctx, tx, cart.ID, total); err != nil {
		return nil, fmt.Errorf("failed to update order amount: %w", err)
	}

	cart.Amount = total
	return &model.OrderResponse{Order: *cart, Items: items}, nil
}
