package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.ProductCache
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, productCache cache.ProductCache, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves all products, served from the cache when possible.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	cached, ok, err := s.cache.GetProducts(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("product cache unavailable, reading from database")
	} else if ok {
		return cached, nil
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if err := s.cache.SetProducts(ctx, products); err != nil {
		s.logger.Warn().Err(err).Msg("failed to populate product cache")
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error) {
	if req.Price < 0 || req.StockQuantity < 0 {
		return nil, model.ErrInvalidProduct
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Size:          req.Size,
		Color:         req.Color,
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", product.ID.String()).Str("name", product.Name).Msg("product created")

	return product, nil
}

// Update changes only the fields present in req.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.Product, error) {
	if (req.Price != nil && *req.Price < 0) || (req.StockQuantity != nil && *req.StockQuantity < 0) {
		return nil, model.ErrInvalidProduct
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(product)
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	return product, nil
}

// Delete removes a product. Existing cart lines keep their snapshots.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

func (s *productService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate product cache")
	}
}
