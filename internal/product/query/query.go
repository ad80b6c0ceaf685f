// Package query filters and paginates product listings.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/abgdnv/productcatalog/internal/product/store"
	"golang.org/x/text/cases"
)

// DefaultLimit is the page size used when the caller does not provide a usable limit.
const DefaultLimit = 5

// Params holds the filter and pagination parameters of a listing.
// A Limit of 0 means "no limit".
type Params struct {
	Text        string
	Category    string
	HasDelivery string
	Limit       int
	Offset      int
}

// ParseValues builds Params from URL query values. Missing, non-numeric or non-positive
// limits fall back to defaultLimit; missing, non-numeric or negative offsets fall back to 0.
func ParseValues(values url.Values, defaultLimit int) Params {
	return Params{
		Text:        values.Get("text"),
		Category:    values.Get("category"),
		HasDelivery: values.Get("hasDelivery"),
		Limit:       coerce(values.Get("limit"), 1, defaultLimit),
		Offset:      coerce(values.Get("offset"), 0, 0),
	}
}

// coerce parses raw as an int and returns fallback if it is not a number or is below minimum.
func coerce(raw string, minimum, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < minimum {
		return fallback
	}
	return n
}

// Apply filters products and returns the requested page, preserving order.
// The result is never nil.
func Apply(products []store.Product, p Params) []store.Product {
	match := newMatcher(p)

	filtered := make([]store.Product, 0, len(products))
	for _, product := range products {
		if match(product) {
			filtered = append(filtered, product)
		}
	}
	return paginate(filtered, p.Offset, p.Limit)
}

func newMatcher(p Params) func(store.Product) bool {
	fold := cases.Fold()
	text := fold.String(p.Text)
	category := fold.String(p.Category)
	delivery, deliveryActive := parseDelivery(p.HasDelivery)

	return func(product store.Product) bool {
		if text != "" &&
			!strings.Contains(fold.String(product.Name), text) &&
			!strings.Contains(fold.String(product.Description), text) {
			return false
		}
		if category != "" && !strings.Contains(fold.String(product.Category), category) {
			return false
		}
		if deliveryActive && product.HasDelivery != delivery {
			return false
		}
		return true
	}
}

// parseDelivery only recognises the literals "true" and "false".
func parseDelivery(raw string) (value bool, active bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func paginate(products []store.Product, offset, limit int) []store.Product {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) {
		return []store.Product{}
	}
	end := len(products)
	// compared without adding so that huge limits cannot overflow
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return products[offset:end]
}
