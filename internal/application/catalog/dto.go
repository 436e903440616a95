package catalog

import (
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Supplying StockByStore makes the product track stock per store; otherwise
// Stock is its aggregate count.
type CreateProductRequest struct {
	Name             string            `json:"name" binding:"required,min=1,max=200"`
	SKU              string            `json:"sku" binding:"required,min=1,max=64,sku"`
	CategoryID       *uuid.UUID        `json:"category_id"`
	Price            decimal.Decimal   `json:"price"`
	Cost             decimal.Decimal   `json:"cost"`
	WholesalePrice   decimal.Decimal   `json:"wholesale_price"`
	ImageURL         string            `json:"image_url" binding:"omitempty,max=500"`
	TrackStock       *bool             `json:"track_stock"`
	AvailableForSale *bool             `json:"available_for_sale"`
	Stock            int               `json:"stock" binding:"min=0"`
	StockByStore     map[uuid.UUID]int `json:"stock_by_store"`
}

// UpdateProductRequest represents a request to update a product. Nil fields
// are left unchanged. StockByStore switches the product to (or keeps it on)
// per-store stock; Stock alone switches it to aggregate stock.
type UpdateProductRequest struct {
	Name             *string           `json:"name" binding:"omitempty,min=1,max=200"`
	SKU              *string           `json:"sku" binding:"omitempty,min=1,max=64,sku"`
	CategoryID       *uuid.UUID        `json:"category_id"`
	ClearCategory    bool              `json:"clear_category"`
	Price            *decimal.Decimal  `json:"price"`
	Cost             *decimal.Decimal  `json:"cost"`
	WholesalePrice   *decimal.Decimal  `json:"wholesale_price"`
	ImageURL         *string           `json:"image_url" binding:"omitempty,max=500"`
	TrackStock       *bool             `json:"track_stock"`
	AvailableForSale *bool             `json:"available_for_sale"`
	Stock            *int              `json:"stock" binding:"omitempty,min=0"`
	StockByStore     map[uuid.UUID]int `json:"stock_by_store"`
	Reason           string            `json:"reason" binding:"max=255"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	SKU              string            `json:"sku"`
	CategoryID       *uuid.UUID        `json:"category_id,omitempty"`
	Price            decimal.Decimal   `json:"price"`
	Cost             decimal.Decimal   `json:"cost"`
	WholesalePrice   decimal.Decimal   `json:"wholesale_price"`
	ImageURL         string            `json:"image_url,omitempty"`
	TrackStock       bool              `json:"track_stock"`
	AvailableForSale bool              `json:"available_for_sale"`
	Stock            int               `json:"stock"`
	StockByStore     map[uuid.UUID]int `json:"stock_by_store,omitempty"`
	EffectiveStock   *int              `json:"effective_stock,omitempty"`
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductListFilter represents filter options for product list. StoreID
// does not restrict the list; it selects the store whose stock is reported
// as effective_stock.
type ProductListFilter struct {
	Search           string     `form:"search"`
	CategoryID       *uuid.UUID `form:"category_id"`
	AvailableForSale *bool      `form:"available_for_sale"`
	StoreID          *uuid.UUID `form:"store_id"`
	Page             int        `form:"page" binding:"omitempty,min=1"`
	PageSize         int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy          string     `form:"order_by" binding:"omitempty,oneof=name sku price created_at"`
	OrderDir         string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// EffectiveStockResponse is the stock a store context sees for a product
type EffectiveStockResponse struct {
	ProductID uuid.UUID  `json:"product_id"`
	StoreID   *uuid.UUID `json:"store_id,omitempty"`
	Stock     int        `json:"stock"`
}

// ReassignCategoryRequest moves every product of a category to another one
type ReassignCategoryRequest struct {
	NewCategoryID *uuid.UUID `json:"new_category_id"`
}

// ReassignCategoryResponse reports how many products moved
type ReassignCategoryResponse struct {
	Reassigned int64 `json:"reassigned"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryListFilter represents filter options for category list
type CategoryListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		SKU:              p.SKU,
		CategoryID:       p.CategoryID,
		Price:            p.Price,
		Cost:             p.Cost,
		WholesalePrice:   p.WholesalePrice,
		ImageURL:         p.ImageURL,
		TrackStock:       p.TrackStock,
		AvailableForSale: p.AvailableForSale,
		Stock:            p.Stock,
		StockByStore:     p.StockByStore,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products, filling
// effective_stock when a store context is given
func ToProductResponses(products []catalog.Product, storeID *uuid.UUID) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
		if storeID != nil {
			stock := products[i].EffectiveStock(storeID)
			responses[i].EffectiveStock = &stock
		}
	}
	return responses
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
