package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":                            "DESC",
		"asc":                         "ASC",
		"  ASC ":                      "ASC",
		"desc":                        "DESC",
		"ascending":                   "DESC",
		"ASC; DROP TABLE products;--": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	cases := []struct {
		in, fallback, want string
	}{
		{"", "created_at", "created_at"},
		{"price", "created_at", "price"},
		{"  sku ", "created_at", "sku"},
		{"PRICE", "created_at", "created_at"},
		{"name desc", "created_at", "created_at"},
		{"id' OR '1'='1", "created_at", "created_at"},
		{"stock, (SELECT 1)", "name", "name"},
		{"unknown", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidateSortField(c.in, ProductSortFields, c.fallback), "input %q", c.in)
	}
}

func TestSortFieldSets(t *testing.T) {
	for name, set := range map[string]map[string]bool{
		"sales":     SaleSortFields,
		"transfers": TransferSortFields,
		"grns":      GRNSortFields,
		"orders":    PurchaseOrderSortFields,
		"journal":   JournalSortFields,
	} {
		assert.True(t, set["created_at"], name)
	}
	assert.True(t, HistorySortFields["seq"])
	assert.False(t, HistorySortFields["created_at"], "history is ordered by sequence, not insert time")
}
