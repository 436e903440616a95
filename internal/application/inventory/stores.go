package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// findStore resolves a store inside a transaction, mapping a miss to NOT_FOUND
func findStore(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*partner.Store, error) {
	return FindStore(ctx, repos.StoreRepo(), id)
}

// FindStore resolves a store, mapping a miss to a NOT_FOUND error naming it
func FindStore(ctx context.Context, repo partner.StoreRepository, id uuid.UUID) (*partner.Store, error) {
	store, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Store", id)
		}
		return nil, fmt.Errorf("load store %s: %w", id, err)
	}
	return store, nil
}
