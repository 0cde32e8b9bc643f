package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed seed/products.json
var seedProducts []byte

// SeedProducts returns the bundled demo catalog.
func SeedProducts() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return nil, fmt.Errorf("decode seed products: %w", err)
	}
	return products, nil
}
