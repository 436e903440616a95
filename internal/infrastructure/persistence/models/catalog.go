package models

import (
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// StockByStore is NULL for products that keep one aggregate count.
type ProductModel struct {
	AggregateModel
	Name             string          `gorm:"type:varchar(200);not null"`
	SKU              string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	CategoryID       *uuid.UUID      `gorm:"type:uuid;index"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Cost             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WholesalePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImageURL         string          `gorm:"type:varchar(500)"`
	TrackStock       bool            `gorm:"not null;default:true"`
	AvailableForSale bool            `gorm:"not null;default:true"`
	Stock            int             `gorm:"not null;default:0"`
	StockByStore     *string         `gorm:"column:stock_by_store;type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		SKU:               m.SKU,
		CategoryID:        m.CategoryID,
		Price:             m.Price,
		Cost:              m.Cost,
		WholesalePrice:    m.WholesalePrice,
		ImageURL:          m.ImageURL,
		TrackStock:        m.TrackStock,
		AvailableForSale:  m.AvailableForSale,
		Stock:             m.Stock,
	}
	if m.StockByStore != nil {
		p.StockByStore = make(map[uuid.UUID]int)
		decodeJSON("stock_by_store", m.ID, *m.StockByStore, &p.StockByStore)
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.CategoryID = p.CategoryID
	m.Price = p.Price
	m.Cost = p.Cost
	m.WholesalePrice = p.WholesalePrice
	m.ImageURL = p.ImageURL
	m.TrackStock = p.TrackStock
	m.AvailableForSale = p.AvailableForSale
	m.Stock = p.TotalStock()
	m.StockByStore = nil
	if p.StockByStore != nil {
		raw := encodeJSON("stock_by_store", p.StockByStore)
		m.StockByStore = &raw
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}
