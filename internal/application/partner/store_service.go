package partner

import (
	"context"
	"errors"

	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreService handles store-related business operations
type StoreService struct {
	storeRepo partner.StoreRepository
	logger    *zap.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(storeRepo partner.StoreRepository, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{storeRepo: storeRepo, logger: logger}
}

// Create opens a new store
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	store, err := partner.NewStore(req.Name, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}
	s.logger.Info("store created", zap.String("store_id", store.ID.String()), zap.String("name", store.Name))
	resp := ToStoreResponse(store)
	return &resp, nil
}

// GetByID returns a store
func (s *StoreService) GetByID(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	store, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

// List lists stores
func (s *StoreService) List(ctx context.Context, filter ListFilter) ([]StoreResponse, int64, error) {
	f := filter.domain()
	if filter.Active != nil {
		f.Filters["active"] = *filter.Active
	}
	stores, err := s.storeRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.storeRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StoreResponse, len(stores))
	for i := range stores {
		out[i] = ToStoreResponse(&stores[i])
	}
	return out, total, nil
}

// Deactivate closes a store for new sales. Its stock and history stay.
func (s *StoreService) Deactivate(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	store, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Store is already inactive")
	}
	store.Deactivate()
	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(store)
	return &resp, nil
}

func (s *StoreService) find(ctx context.Context, id uuid.UUID) (*partner.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Store", id)
		}
		return nil, err
	}
	return store, nil
}
