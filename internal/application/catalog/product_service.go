package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStorage stores product images and returns their public URL
type ImageStorage interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ProductService handles product-related business operations.
// Stock changes made here are manual corrections; each one is written to the
// inventory history in the same transaction as the product row.
type ProductService struct {
	txScope      appinventory.TransactionScope
	ledger       *appinventory.StockLedger
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	images       ImageStorage
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	txScope appinventory.TransactionScope,
	ledger *appinventory.StockLedger,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		txScope:      txScope,
		ledger:       ledger,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// SetImageStorage enables product image uploads
func (s *ProductService) SetImageStorage(images ImageStorage) {
	s.images = images
}

// AddProduct creates a product and logs its opening stock as INITIAL_STOCK:
// one entry per store holding stock for per-store products, otherwise a
// single aggregate entry.
func (s *ProductService) AddProduct(ctx context.Context, req CreateProductRequest, actor shared.Actor) (*ProductResponse, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	attrs := catalog.ProductAttributes{
		Name:             strings.TrimSpace(req.Name),
		CategoryID:       req.CategoryID,
		Price:            req.Price,
		Cost:             req.Cost,
		WholesalePrice:   req.WholesalePrice,
		SKU:              strings.TrimSpace(req.SKU),
		ImageURL:         req.ImageURL,
		TrackStock:       boolOr(req.TrackStock, true),
		AvailableForSale: boolOr(req.AvailableForSale, true),
	}

	var (
		product *catalog.Product
		entries []*inventory.HistoryEntry
	)
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		entries = entries[:0]
		exists, err := repos.ProductRepo().ExistsBySKU(ctx, attrs.SKU, nil)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
		}

		if req.StockByStore != nil {
			if err := checkStores(ctx, repos, req.StockByStore); err != nil {
				return err
			}
			product, err = catalog.NewProductWithStoreStock(attrs, req.StockByStore)
		} else {
			product, err = catalog.NewProduct(attrs, req.Stock)
		}
		if err != nil {
			return err
		}
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}

		for _, in := range openingEntries(product, actor) {
			entry, err := s.ledger.RecordEntry(ctx, repos, in)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Published(ctx, entries...)
	s.logger.Info("product added",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int("stock", product.Stock),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies field edits. Stock edits are logged as PRODUCT_EDIT:
// per store when the product tracks per-store stock before and after,
// otherwise as one entry carrying the net change of the total.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest, actor shared.Actor) (*ProductResponse, error) {
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	var (
		product *catalog.Product
		entries []*inventory.HistoryEntry
	)
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		entries = entries[:0]
		var err error
		product, err = findProductForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}

		attrs := product.Attributes()
		applyProductEdits(&attrs, req)
		if attrs.SKU != product.SKU {
			exists, err := repos.ProductRepo().ExistsBySKU(ctx, attrs.SKU, &product.ID)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
			}
		}
		if err := product.UpdateAttributes(attrs); err != nil {
			return err
		}

		before := snapshotStock(product)
		switch {
		case req.StockByStore != nil:
			if err := checkStores(ctx, repos, req.StockByStore); err != nil {
				return err
			}
			if err := product.ReplaceStock(0, req.StockByStore); err != nil {
				return err
			}
		case req.Stock != nil:
			if err := product.ReplaceStock(*req.Stock, nil); err != nil {
				return err
			}
		}
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}

		for _, in := range editEntries(before, product, req.Reason, actor) {
			entry, err := s.ledger.RecordEntry(ctx, repos, in)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Published(ctx, entries...)
	s.logger.Info("product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock_entries", len(entries)),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// DeleteProduct writes PRODUCT_DELETED entries that take every counted unit
// out of stock, then removes the product. History rows are kept.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID, actor shared.Actor) error {
	var entries []*inventory.HistoryEntry
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		entries = entries[:0]
		product, err := findProductForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		for _, in := range deletionEntries(product, actor) {
			entry, err := s.ledger.RecordEntry(ctx, repos, in)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return repos.ProductRepo().Delete(ctx, product.ID)
	})
	if err != nil {
		return err
	}

	s.ledger.Published(ctx, entries...)
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// GetEffectiveStock returns the stock a store context sees: the store's own
// count for per-store products, otherwise the aggregate. An unknown product
// has no stock.
func (s *ProductService) GetEffectiveStock(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID) (int, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return product.EffectiveStock(storeID), nil
}

// ReassignProductsToCategory moves every product of one category to another.
// A nil target leaves the products uncategorized.
func (s *ProductService) ReassignProductsToCategory(ctx context.Context, oldCategoryID uuid.UUID, newCategoryID *uuid.UUID) (int64, error) {
	if newCategoryID != nil && *newCategoryID == oldCategoryID {
		return 0, nil
	}
	if err := s.checkCategory(ctx, newCategoryID); err != nil {
		return 0, err
	}
	n, err := s.productRepo.ReassignCategory(ctx, oldCategoryID, newCategoryID)
	if err != nil {
		return 0, fmt.Errorf("reassign products: %w", err)
	}
	s.logger.Info("products reassigned",
		zap.String("from_category_id", oldCategoryID.String()),
		zap.Int64("count", n),
	)
	return n, nil
}

// GetByID returns a product, with the effective stock of the given store
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID, storeID *uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Product", id)
		}
		return nil, err
	}
	resp := ToProductResponses([]catalog.Product{*product}, storeID)[0]
	return &resp, nil
}

// List lists products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.AvailableForSale != nil {
		domainFilter.Filters["available_for_sale"] = *filter.AvailableForSale
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products, filter.StoreID), total, nil
}

// UploadImage stores a product image and records its URL on the product
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, body io.Reader, size int64) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Image storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unsupported content type %q", contentType)
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Product", id)
		}
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", id, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.images.PutObject(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}

	// The upload can take a while; stock may move meanwhile, so the URL is
	// written onto a freshly locked row rather than the copy read above.
	var product *catalog.Product
	err = s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		var err error
		product, err = findProductForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		product.SetImageURL(url)
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("product image uploaded",
		zap.String("product_id", product.ID.String()),
		zap.String("key", key),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func findProductForUpdate(ctx context.Context, repos appinventory.TransactionalRepositories, id uuid.UUID) (*catalog.Product, error) {
	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Product", id)
		}
		return nil, err
	}
	return product, nil
}

func checkStores(ctx context.Context, repos appinventory.TransactionalRepositories, stockByStore map[uuid.UUID]int) error {
	for storeID := range stockByStore {
		if _, err := appinventory.FindStore(ctx, repos.StoreRepo(), storeID); err != nil {
			return err
		}
	}
	return nil
}

func applyProductEdits(attrs *catalog.ProductAttributes, req UpdateProductRequest) {
	if req.Name != nil {
		attrs.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		attrs.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.CategoryID != nil {
		attrs.CategoryID = req.CategoryID
	} else if req.ClearCategory {
		attrs.CategoryID = nil
	}
	if req.Price != nil {
		attrs.Price = *req.Price
	}
	if req.Cost != nil {
		attrs.Cost = *req.Cost
	}
	if req.WholesalePrice != nil {
		attrs.WholesalePrice = *req.WholesalePrice
	}
	if req.ImageURL != nil {
		attrs.ImageURL = *req.ImageURL
	}
	if req.TrackStock != nil {
		attrs.TrackStock = *req.TrackStock
	}
	if req.AvailableForSale != nil {
		attrs.AvailableForSale = *req.AvailableForSale
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
