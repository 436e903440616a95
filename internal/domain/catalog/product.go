package catalog

import (
	"maps"
	"slices"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalog.
//
// Stock is held either as a single aggregate count (StockByStore == nil) or
// as a per-store map. When the map is present, Stock is a derived cache equal
// to the sum of the map values; every mutation below re-establishes that.
type Product struct {
	shared.BaseAggregateRoot
	Name             string
	CategoryID       *uuid.UUID
	Price            decimal.Decimal
	Cost             decimal.Decimal
	WholesalePrice   decimal.Decimal
	SKU              string
	ImageURL         string
	TrackStock       bool
	AvailableForSale bool
	Stock            int
	StockByStore     map[uuid.UUID]int
}

// ProductAttributes carries the descriptive fields of a product
type ProductAttributes struct {
	Name             string
	CategoryID       *uuid.UUID
	Price            decimal.Decimal
	Cost             decimal.Decimal
	WholesalePrice   decimal.Decimal
	SKU              string
	ImageURL         string
	TrackStock       bool
	AvailableForSale bool
}

// NewProduct creates a product with aggregate stock
func NewProduct(attrs ProductAttributes, stock int) (*Product, error) {
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.applyAttributes(attrs); err != nil {
		return nil, err
	}
	p.Stock = stock
	return p, nil
}

// NewProductWithStoreStock creates a product that tracks stock per store
func NewProductWithStoreStock(attrs ProductAttributes, stockByStore map[uuid.UUID]int) (*Product, error) {
	if err := validateStoreStock(stockByStore); err != nil {
		return nil, err
	}
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.applyAttributes(attrs); err != nil {
		return nil, err
	}
	p.StockByStore = maps.Clone(stockByStore)
	if p.StockByStore == nil {
		p.StockByStore = make(map[uuid.UUID]int)
	}
	p.recomputeAggregate()
	return p, nil
}

// UpdateAttributes replaces the descriptive fields of the product
func (p *Product) UpdateAttributes(attrs ProductAttributes) error {
	if err := p.applyAttributes(attrs); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Product) applyAttributes(attrs ProductAttributes) error {
	name := strings.TrimSpace(attrs.Name)
	if err := validateProductName(name); err != nil {
		return err
	}
	sku := strings.TrimSpace(attrs.SKU)
	if err := validateSKU(sku); err != nil {
		return err
	}
	if err := validatePrices(attrs.Price, attrs.Cost, attrs.WholesalePrice); err != nil {
		return err
	}
	p.Name = name
	p.SKU = sku
	p.CategoryID = attrs.CategoryID
	p.Price = attrs.Price
	p.Cost = attrs.Cost
	p.WholesalePrice = attrs.WholesalePrice
	p.ImageURL = attrs.ImageURL
	p.TrackStock = attrs.TrackStock
	p.AvailableForSale = attrs.AvailableForSale
	return nil
}

// Attributes returns the descriptive fields of the product
func (p *Product) Attributes() ProductAttributes {
	return ProductAttributes{
		Name:             p.Name,
		CategoryID:       p.CategoryID,
		Price:            p.Price,
		Cost:             p.Cost,
		WholesalePrice:   p.WholesalePrice,
		SKU:              p.SKU,
		ImageURL:         p.ImageURL,
		TrackStock:       p.TrackStock,
		AvailableForSale: p.AvailableForSale,
	}
}

// UsesStoreStock reports whether stock is tracked per store
func (p *Product) UsesStoreStock() bool {
	return p.StockByStore != nil
}

// TotalStock returns the aggregate stock
func (p *Product) TotalStock() int {
	if p.StockByStore != nil {
		return sumStock(p.StockByStore)
	}
	return p.Stock
}

// EffectiveStock returns the stock relevant to a store context: the store's
// own count for per-store products, otherwise the aggregate.
func (p *Product) EffectiveStock(storeID *uuid.UUID) int {
	if storeID != nil && p.StockByStore != nil {
		return p.StockByStore[*storeID]
	}
	return p.Stock
}

// SetEffectiveStock writes value into the scope EffectiveStock reads from and
// returns the previous value of that scope. Per-store products need a store.
func (p *Product) SetEffectiveStock(storeID *uuid.UUID, value int) (int, error) {
	if value < 0 {
		return 0, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Stock of %s cannot go below zero (requested %d)", p.Name, value)
	}
	if p.StockByStore != nil {
		if storeID == nil {
			return 0, shared.NewDomainErrorf(shared.CodeInvalidInput,
				"Product %s tracks stock per store; a store is required", p.Name)
		}
		previous := p.StockByStore[*storeID]
		p.StockByStore[*storeID] = value
		p.recomputeAggregate()
		p.IncrementVersion()
		return previous, nil
	}
	previous := p.Stock
	p.Stock = value
	p.IncrementVersion()
	return previous, nil
}

// ReplaceStock swaps the whole stock representation, as done by a manual
// product edit. A nil map switches the product to aggregate stock.
func (p *Product) ReplaceStock(stock int, stockByStore map[uuid.UUID]int) error {
	if stockByStore != nil {
		if err := validateStoreStock(stockByStore); err != nil {
			return err
		}
		p.StockByStore = maps.Clone(stockByStore)
		p.recomputeAggregate()
	} else {
		if stock < 0 {
			return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
		}
		p.StockByStore = nil
		p.Stock = stock
	}
	p.IncrementVersion()
	return nil
}

// StoreIDs returns the stores present in the per-store map in a stable order
func (p *Product) StoreIDs() []uuid.UUID {
	ids := slices.Collect(maps.Keys(p.StockByStore))
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.IncrementVersion()
}

// SetImageURL records where the product image is stored
func (p *Product) SetImageURL(url string) {
	p.ImageURL = url
	p.IncrementVersion()
}

// CanBeSold reports whether the product may appear on a sale
func (p *Product) CanBeSold() bool {
	return p.AvailableForSale
}

func (p *Product) recomputeAggregate() {
	p.Stock = sumStock(p.StockByStore)
}

func sumStock(m map[uuid.UUID]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func validateStoreStock(m map[uuid.UUID]int) error {
	for storeID, v := range m {
		if storeID == uuid.Nil {
			return shared.NewDomainError("INVALID_STOCK", "Store stock entry has an empty store id")
		}
		if v < 0 {
			return shared.NewDomainErrorf("INVALID_STOCK", "Stock for store %s cannot be negative", storeID)
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}

func validatePrices(prices ...decimal.Decimal) error {
	for _, v := range prices {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
		}
	}
	return nil
}
