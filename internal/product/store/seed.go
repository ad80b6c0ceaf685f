package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

//go:embed seed/products.json
var defaultSeed []byte

// LoadSeed reads the initial product list from a JSON file.
// An empty path loads the built-in catalog.
func LoadSeed(path string) ([]Product, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}
	}
	return parseSeed(data)
}

func parseSeed(data []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(products))
	for i := range products {
		// records without an id get a fresh one
		if products[i].ID == uuid.Nil {
			products[i].ID = uuid.New()
		}
		if _, dup := seen[products[i].ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s in seed", products[i].ID)
		}
		seen[products[i].ID] = struct{}{}
	}
	return products, nil
}
