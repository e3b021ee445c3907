//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
)

type record struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Size          int     `json:"size,omitempty"`
	Color         string  `json:"color,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// generateSampleCatalog writes the same catalogue in the three supported encodings.
// "Wool socks" appears in both base and restock; importing base then restock
// leaves it at the restock price and stock.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]record{
		"base.jsonl": {
			{Name: "Wool socks", Price: 1.2, StockQuantity: 10, Size: 42, Color: "grey"},
			{Name: "Leather boots", Price: 80, StockQuantity: 3, Size: 43, Color: "brown"},
			{Name: "Rain jacket", Price: 45.5, StockQuantity: 7, Color: "yellow", Description: "Packable shell"},
		},
		"accessories.jsonl.gz": {
			{Name: "Canvas belt", Price: 12, StockQuantity: 25, Color: "olive"},
			{Name: "Beanie", Price: 9.99, StockQuantity: 40, Color: "navy"},
		},
		"restock.jsonl.br": {
			{Name: "Wool socks", Price: 1.5, StockQuantity: 100, Size: 42, Color: "grey"},
			{Name: "Sun hat", Price: 15, StockQuantity: 2, Color: "red"},
		},
	}

	for filename, records := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, records); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(records))
	}

	fmt.Println("\nSample catalogue files created successfully!")
	fmt.Println("\nImport them with:")
	fmt.Println("  CATALOG_SEED_FILES=data/catalog/base.jsonl,data/catalog/accessories.jsonl.gz,data/catalog/restock.jsonl.br")
}

func createCatalogFile(filePath string, records []record) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	var w io.WriteCloser
	switch filepath.Ext(filePath) {
	case ".gz":
		w = gzip.NewWriter(file)
	case ".br":
		w = brotli.NewWriter(file)
	default:
		w = nopCloser{file}
	}

	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write product: %w", err)
		}
	}

	return w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
