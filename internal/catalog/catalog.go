package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

// Loader defines the interface for loading product seed files.
type Loader interface {
	// Load reads a seed file of JSON lines and returns its products.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Record is one line of a seed file.
type Record struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	StockQuantity int        `json:"stock_quantity"`
	Size          int        `json:"size"`
	Color         string     `json:"color"`
	Description   string     `json:"description"`
}

var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront/products"))

// ProductID derives a stable product id from its name so re-imports update in place.
func ProductID(name string) uuid.UUID {
	return uuid.NewSHA1(productNamespace, []byte(strings.ToLower(strings.TrimSpace(name))))
}

// Product converts the record, rejecting blank names and negative price or stock.
func (r Record) Product(now time.Time) (model.Product, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return model.Product{}, fmt.Errorf("product name is required")
	}
	if r.Price < 0 || r.StockQuantity < 0 {
		return model.Product{}, fmt.Errorf("product %q: %w", name, model.ErrInvalidProduct)
	}

	id := ProductID(name)
	if r.ID != nil && *r.ID != uuid.Nil {
		id = *r.ID
	}

	return model.Product{
		ID:            id,
		Name:          name,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		Size:          r.Size,
		Color:         r.Color,
		Description:   r.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// decompress picks a reader from the file extension: .gz, .br or plain.
func decompress(r io.Reader, name string) (io.Reader, func() error, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		return gz, gz.Close, nil
	case ".br":
		return brotli.NewReader(r), func() error { return nil }, nil
	default:
		return r, func() error { return nil }, nil
	}
}

// decode reads one JSON record per line. Blank lines are skipped.
func decode(ctx context.Context, r io.Reader, name string, now time.Time) ([]model.Product, error) {
	plain, closeFn, err := decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	scanner := bufio.NewScanner(plain)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: invalid record: %w", name, lineNo, err)
		}
		p, err := rec.Product(now)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", name, err)
	}

	return products, nil
}
