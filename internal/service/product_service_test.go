package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_List(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{
		{ID: uuid.New(), Name: "Socks", Price: 1.2, StockQuantity: 10, CreatedAt: time.Now()},
		{ID: uuid.New(), Name: "Boots", Price: 80, StockQuantity: 3, CreatedAt: time.Now()},
	}

	tests := []struct {
		name        string
		setupMocks  func(repo *MockProductRepository, c *MockProductCache)
		expected    []model.Product
		expectError bool
	}{
		{
			name: "Cache hit skips database",
			setupMocks: func(repo *MockProductRepository, c *MockProductCache) {
				c.On("GetProducts", ctx).Return(testProducts, true, nil)
			},
			expected: testProducts,
		},
		{
			name: "Cache miss reads database and fills cache",
			setupMocks: func(repo *MockProductRepository, c *MockProductCache) {
				c.On("GetProducts", ctx).Return(nil, false, nil)
				repo.On("List", ctx).Return(testProducts, nil)
				c.On("SetProducts", ctx, testProducts).Return(nil)
			},
			expected: testProducts,
		},
		{
			name: "Cache unavailable falls back to database",
			setupMocks: func(repo *MockProductRepository, c *MockProductCache) {
				c.On("GetProducts", ctx).Return(nil, false, errors.New("connection refused"))
				repo.On("List", ctx).Return(testProducts, nil)
				c.On("SetProducts", ctx, testProducts).Return(errors.New("connection refused"))
			},
			expected: testProducts,
		},
		{
			name: "Database error",
			setupMocks: func(repo *MockProductRepository, c *MockProductCache) {
				c.On("GetProducts", ctx).Return(nil, false, nil)
				repo.On("List", ctx).Return(nil, errors.New("database error"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			c := new(MockProductCache)
			tt.setupMocks(repo, c)

			svc := NewProductService(repo, c, logger)
			products, err := svc.List(ctx)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to get products")
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, products)
			}

			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name        string
		mockReturn  *model.Product
		mockError   error
		expectedErr error
		expectError bool
	}{
		{
			name:       "Found",
			mockReturn: &model.Product{ID: id, Name: "Socks"},
		},
		{
			name:        "Not found",
			expectedErr: model.ErrProductNotFound,
			expectError: true,
		},
		{
			name:        "Database error",
			mockError:   errors.New("database error"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			repo.On("GetByID", ctx, id).Return(tt.mockReturn, tt.mockError)

			svc := NewProductService(repo, new(MockProductCache), logger)
			product, err := svc.GetByID(ctx, id)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, product)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, product)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_Create(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Creates and invalidates cache", func(t *testing.T) {
		repo := new(MockProductRepository)
		c := new(MockProductCache)

		repo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
			return p.ID != uuid.Nil && p.Name == "Hat" && p.Price == 15 && p.StockQuantity == 2 && !p.CreatedAt.IsZero()
		})).Return(nil)
		c.On("Invalidate", liveCtx).Return(nil)

		svc := NewProductService(repo, c, logger)
		product, err := svc.Create(ctx, &model.ProductCreateRequest{Name: "Hat", Price: 15, StockQuantity: 2, Color: "red"})

		require.NoError(t, err)
		assert.Equal(t, "red", product.Color)
		assert.Equal(t, product.CreatedAt, product.UpdatedAt)
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("Negative price rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, new(MockProductCache), logger)

		product, err := svc.Create(ctx, &model.ProductCreateRequest{Name: "Hat", Price: -1})

		assert.ErrorIs(t, err, model.ErrInvalidProduct)
		assert.Nil(t, product)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Cache failure does not fail the write", func(t *testing.T) {
		repo := new(MockProductRepository)
		c := new(MockProductCache)

		repo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)
		c.On("Invalidate", liveCtx).Return(errors.New("redis down"))

		svc := NewProductService(repo, c, logger)
		_, err := svc.Create(ctx, &model.ProductCreateRequest{Name: "Hat", Price: 15})

		require.NoError(t, err)
		c.AssertExpectations(t)
	})

	t.Run("Invalidates even when the request is cancelled", func(t *testing.T) {
		reqCtx, cancel := context.WithCancel(ctx)
		repo := new(MockProductRepository)
		c := new(MockProductCache)

		repo.On("Create", reqCtx, mock.AnythingOfType("*model.Product")).
			Run(func(mock.Arguments) { cancel() }).
			Return(nil)
		c.On("Invalidate", liveCtx).Return(nil)

		svc := NewProductService(repo, c, logger)
		_, err := svc.Create(reqCtx, &model.ProductCreateRequest{Name: "Hat", Price: 15})

		require.NoError(t, err)
		c.AssertExpectations(t)
	})
}

func TestProductService_Update(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	id := uuid.New()

	t.Run("Applies only given fields", func(t *testing.T) {
		repo := new(MockProductRepository)
		c := new(MockProductCache)
		existing := &model.Product{ID: id, Name: "Hat", Price: 15, StockQuantity: 2, Color: "red"}
		price := 12.5

		repo.On("GetByID", ctx, id).Return(existing, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(p *model.Product) bool {
			return p.Price == 12.5 && p.Name == "Hat" && p.StockQuantity == 2 && p.Color == "red"
		})).Return(nil)
		c.On("Invalidate", liveCtx).Return(nil)

		svc := NewProductService(repo, c, logger)
		product, err := svc.Update(ctx, id, &model.ProductUpdateRequest{Price: &price})

		require.NoError(t, err)
		assert.Equal(t, 12.5, product.Price)
		assert.False(t, product.UpdatedAt.IsZero())
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("Unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByID", ctx, id).Return(nil, nil)

		svc := NewProductService(repo, new(MockProductCache), logger)
		_, err := svc.Update(ctx, id, &model.ProductUpdateRequest{})

		assert.ErrorIs(t, err, model.ErrProductNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Negative stock rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		stock := -3

		svc := NewProductService(repo, new(MockProductCache), logger)
		_, err := svc.Update(ctx, id, &model.ProductUpdateRequest{StockQuantity: &stock})

		assert.ErrorIs(t, err, model.ErrInvalidProduct)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestProductService_Delete(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name            string
		repoErr         error
		expectedErr     error
		expectInvalid   bool
		expectErrSubstr string
	}{
		{name: "Deleted", expectInvalid: true},
		{name: "Not found", repoErr: model.ErrProductNotFound, expectedErr: model.ErrProductNotFound},
		{name: "Database error", repoErr: errors.New("database error"), expectErrSubstr: "failed to delete product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			c := new(MockProductCache)
			repo.On("Delete", ctx, id).Return(tt.repoErr)
			if tt.expectInvalid {
				c.On("Invalidate", liveCtx).Return(nil)
			}

			svc := NewProductService(repo, c, logger)
			err := svc.Delete(ctx, id)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.expectErrSubstr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErrSubstr)
			default:
				require.NoError(t, err)
			}

			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}
