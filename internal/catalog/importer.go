package catalog

import (
	"context"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Importer upserts seed files into the product table.
type Importer struct {
	loader   Loader
	txr      repository.Transactor
	products repository.ProductRepository
	cache    cache.ProductCache
	logger   zerolog.Logger
}

// NewImporter creates a catalogue importer.
func NewImporter(
	loader Loader,
	txr repository.Transactor,
	products repository.ProductRepository,
	productCache cache.ProductCache,
	logger zerolog.Logger,
) *Importer {
	return &Importer{
		loader:   loader,
		txr:      txr,
		products: products,
		cache:    productCache,
		logger:   logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads all files concurrently and upserts their products in one transaction.
// When two files carry the same product the later file wins.
func (i *Importer) Import(ctx context.Context, paths []string) (count int, err error) {
	if len(paths) == 0 {
		return 0, nil
	}

	results := make([][]model.Product, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range paths {
		g.Go(func() error {
			products, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load seed file %s: %w", path, err)
			}
			results[idx] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		i.logger.Error().Err(err).Msg("catalogue import aborted")
		return 0, err
	}

	merged := merge(results)

	tx, err := i.txr.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				i.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	count, err = i.products.Upsert(ctx, tx, merged)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert products: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if cacheErr := i.cache.Invalidate(context.WithoutCancel(ctx)); cacheErr != nil {
		i.logger.Warn().Err(cacheErr).Msg("failed to invalidate product cache after import")
	}

	i.logger.Info().
		Int("file_count", len(paths)).
		Int("product_count", count).
		Msg("catalogue imported")

	return count, nil
}

// merge flattens the per-file results, keeping the first position of each id
// and the last value seen for it.
func merge(results [][]model.Product) []model.Product {
	index := make(map[uuid.UUID]int)
	var merged []model.Product
	for _, products := range results {
		for _, p := range products {
			if pos, ok := index[p.ID]; ok {
				merged[pos] = p
				continue
			}
			index[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged
}
