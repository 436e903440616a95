package persistence

import "strings"

// Only column names found in one of these sets are ever interpolated into
// ORDER BY. Everything else falls back to the caller's default.
var (
	ProductSortFields         = columns("created_at", "updated_at", "name", "sku", "price", "stock")
	CategorySortFields        = columns("created_at", "name")
	StoreSortFields           = columns("created_at", "name")
	SupplierSortFields        = columns("created_at", "name")
	HistorySortFields         = columns("seq", "date")
	StockAdjustmentSortFields = columns("created_at", "adjustment_date")
	TransferSortFields        = columns("created_at", "transfer_date", "status")
	PurchaseOrderSortFields   = columns("created_at", "order_date", "reference_no", "total_value", "status")
	GRNSortFields             = columns("created_at", "received_date", "reference_no", "status")
	SaleSortFields            = columns("created_at", "sale_date", "total", "receipt_no")
	JournalSortFields         = columns("created_at", "entry_date")
)

func columns(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// ValidateSortOrder normalizes to "ASC" or "DESC"; anything unrecognised is DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the trimmed field when allowed, else defaultField.
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	if f := strings.TrimSpace(sortField); allowed[f] {
		return f
	}
	return defaultField
}
