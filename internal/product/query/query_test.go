package query

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testCatalog() []store.Product {
	return []store.Product{
		{ID: uuid.New(), Name: "Notebook", Description: "Laptop", Category: "Computers", HasDelivery: true, Stock: 100},
		{ID: uuid.New(), Name: "Mouse", Description: "Wireless mouse", Category: "Accessories", HasDelivery: true, Stock: 90},
		{ID: uuid.New(), Name: "Keyboard", Description: "Mechanical", Category: "Accessories", HasDelivery: false, Stock: 75},
		{ID: uuid.New(), Name: "Webcam", Description: "Full HD camera", Category: "Video", HasDelivery: true, Stock: 23},
		{ID: uuid.New(), Name: "Headphones", Description: "Over-ear", Category: "Audio", HasDelivery: false, Stock: 55},
		{ID: uuid.New(), Name: "Iphone", Description: "Smartphone with dual camera", Category: "Phones", HasDelivery: true, Stock: 67},
	}
}

func names(products []store.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func Test_Apply(t *testing.T) {
	testCases := []struct {
		name     string
		params   Params
		expected []string
	}{
		{
			name:     "no filters, no limit",
			params:   Params{},
			expected: []string{"Notebook", "Mouse", "Keyboard", "Webcam", "Headphones", "Iphone"},
		},
		{
			name:     "first page of two",
			params:   Params{Limit: 2, Offset: 0},
			expected: []string{"Notebook", "Mouse"},
		},
		{
			name:     "second page of two",
			params:   Params{Limit: 2, Offset: 2},
			expected: []string{"Keyboard", "Webcam"},
		},
		{
			name:     "limit past the end is truncated",
			params:   Params{Limit: 10, Offset: 4},
			expected: []string{"Headphones", "Iphone"},
		},
		{
			name:     "maximum limit with offset returns the tail",
			params:   Params{Limit: math.MaxInt, Offset: 3},
			expected: []string{"Webcam", "Headphones", "Iphone"},
		},
		{
			name:     "maximum limit and offset is empty",
			params:   Params{Limit: math.MaxInt, Offset: math.MaxInt},
			expected: []string{},
		},
		{
			name:     "offset past the end is empty",
			params:   Params{Limit: 5, Offset: 6},
			expected: []string{},
		},
		{
			name:     "text matches name or description",
			params:   Params{Text: "cam"},
			expected: []string{"Webcam", "Iphone"},
		},
		{
			name:     "text is case-insensitive",
			params:   Params{Text: "CAM"},
			expected: []string{"Webcam", "Iphone"},
		},
		{
			name:     "category substring",
			params:   Params{Category: "access"},
			expected: []string{"Mouse", "Keyboard"},
		},
		{
			name:     "delivery true",
			params:   Params{HasDelivery: "true"},
			expected: []string{"Notebook", "Mouse", "Webcam", "Iphone"},
		},
		{
			name:     "delivery false",
			params:   Params{HasDelivery: "false"},
			expected: []string{"Keyboard", "Headphones"},
		},
		{
			name:     "invalid delivery literal is ignored",
			params:   Params{HasDelivery: "maybe"},
			expected: []string{"Notebook", "Mouse", "Keyboard", "Webcam", "Headphones", "Iphone"},
		},
		{
			name:     "delivery literal is case-sensitive",
			params:   Params{HasDelivery: "TRUE"},
			expected: []string{"Notebook", "Mouse", "Keyboard", "Webcam", "Headphones", "Iphone"},
		},
		{
			name:     "combined filters then pagination",
			params:   Params{Text: "e", HasDelivery: "true", Limit: 2, Offset: 1},
			expected: []string{"Mouse", "Webcam"},
		},
		{
			name:     "no match",
			params:   Params{Category: "garden"},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			result := Apply(testCatalog(), tc.params)

			// then
			assert.NotNil(t, result)
			assert.Equal(t, tc.expected, names(result))
		})
	}
}

func Test_ParseValues(t *testing.T) {
	testCases := []struct {
		name         string
		rawQuery     string
		defaultLimit int
		expected     Params
	}{
		{
			name:         "defaults",
			rawQuery:     "",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: 5, Offset: 0},
		},
		{
			name:         "all parameters",
			rawQuery:     "text=cam&category=video&hasDelivery=true&limit=2&offset=1",
			defaultLimit: DefaultLimit,
			expected:     Params{Text: "cam", Category: "video", HasDelivery: "true", Limit: 2, Offset: 1},
		},
		{
			name:         "non-numeric values fall back",
			rawQuery:     "limit=ten&offset=one",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: 5, Offset: 0},
		},
		{
			name:         "negative values fall back",
			rawQuery:     "limit=-3&offset=-1",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: 5, Offset: 0},
		},
		{
			name:         "zero limit falls back",
			rawQuery:     "limit=0",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: 5, Offset: 0},
		},
		{
			name:         "maximum int limit is kept",
			rawQuery:     "limit=" + strconv.Itoa(math.MaxInt) + "&offset=1",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: math.MaxInt, Offset: 1},
		},
		{
			name:         "limit beyond int range falls back",
			rawQuery:     "limit=99999999999999999999999",
			defaultLimit: DefaultLimit,
			expected:     Params{Limit: 5, Offset: 0},
		},
		{
			name:         "no-limit default",
			rawQuery:     "offset=3",
			defaultLimit: 0,
			expected:     Params{Limit: 0, Offset: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			values, err := url.ParseQuery(tc.rawQuery)
			assert.NoError(t, err)

			// when
			params := ParseValues(values, tc.defaultLimit)

			// then
			assert.Equal(t, tc.expected, params)
		})
	}
}

func Test_ParseValuesThenApply_HugeLimit(t *testing.T) {
	// given
	values := url.Values{"limit": {strconv.Itoa(math.MaxInt)}, "offset": {"1"}}

	// when
	var result []store.Product
	assert.NotPanics(t, func() {
		result = Apply(testCatalog()[:3], ParseValues(values, DefaultLimit))
	})

	// then
	assert.Equal(t, []string{"Mouse", "Keyboard"}, names(result))
}
