package partner

import (
	"net/mail"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
)

// Supplier provides goods received through purchase orders and GRNs
type Supplier struct {
	shared.BaseAggregateRoot
	Name  string
	Phone string
	Email string
}

// NewSupplier creates a new supplier
func NewSupplier(name, phone, email string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, shared.NewDomainError("INVALID_EMAIL", "Supplier email is not a valid address")
		}
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             strings.TrimSpace(phone),
		Email:             strings.TrimSpace(email),
	}, nil
}
