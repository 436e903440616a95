package models

import (
	"github.com/erp/pos/internal/domain/partner"
)

// StoreModel is the persistence model for the Store domain entity.
type StoreModel struct {
	AggregateModel
	Name    string `gorm:"type:varchar(100);not null"`
	Address string `gorm:"type:text"`
	Active  bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store entity.
func (m *StoreModel) ToDomain() *partner.Store {
	return &partner.Store{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Store entity.
func (m *StoreModel) FromDomain(s *partner.Store) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Address = s.Address
	m.Active = s.Active
}

// StoreModelFromDomain creates a new persistence model from a domain Store entity.
func StoreModelFromDomain(s *partner.Store) *StoreModel {
	m := &StoreModel{}
	m.FromDomain(s)
	return m
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Name  string `gorm:"type:varchar(200);not null"`
	Phone string `gorm:"type:varchar(50)"`
	Email string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Phone = s.Phone
	m.Email = s.Email
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
