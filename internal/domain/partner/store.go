package partner

import (
	"strings"

	"github.com/erp/pos/internal/domain/shared"
)

// Store is a physical outlet that holds stock and rings up sales
type Store struct {
	shared.BaseAggregateRoot
	Name    string
	Address string
	Active  bool
}

// NewStore creates a new active store
func NewStore(name, address string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 100 characters")
	}
	return &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Active:            true,
	}, nil
}

// Deactivate closes the store for new business
func (s *Store) Deactivate() {
	s.Active = false
	s.IncrementVersion()
}
