package handler

import (
	"errors"
	"net/http"

	catalogapp "github.com/erp/pos/internal/application/catalog"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
	productService  *catalogapp.ProductService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService, productService *catalogapp.ProductService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		productService:  productService,
	}
}

// Create creates a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// GetByID returns one category
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// List returns categories
func (h *CategoryHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := catalogapp.CategoryListFilter{
		Search:   q.String("search"),
		Page:     q.Int("page"),
		PageSize: q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	categories, total, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, categories, total, filter.Page, filter.PageSize)
}

// Reassign moves every product of the category to new_category_id, or
// leaves them uncategorized when it is null
func (h *CategoryHandler) Reassign(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReassignCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	moved, err := h.productService.ReassignProductsToCategory(c.Request.Context(), id, req.NewCategoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ReassignCategoryResponse{Reassigned: moved})
}

// Delete removes a category; ?reassign_to= moves its products first
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	q := newQuery(c)
	reassignTo := q.UUID("reassign_to")
	if !q.ok(&h.BaseHandler) {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id, reassignTo); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	maxImageSize   int64
}

// NewProductHandler creates a new ProductHandler. maxImageSize bounds
// uploaded images; zero means 5 MiB.
func NewProductHandler(productService *catalogapp.ProductService, maxImageSize int64) *ProductHandler {
	if maxImageSize <= 0 {
		maxImageSize = 5 << 20
	}
	return &ProductHandler{
		productService: productService,
		maxImageSize:   maxImageSize,
	}
}

// Create adds a product and records its opening stock
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.AddProduct(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID returns one product; ?store_id= selects the store view of stock
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	q := newQuery(c)
	storeID := q.UUID("store_id")
	if !q.ok(&h.BaseHandler) {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns products
func (h *ProductHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := catalogapp.ProductListFilter{
		Search:           q.String("search"),
		CategoryID:       q.UUID("category_id"),
		AvailableForSale: q.Bool("available_for_sale"),
		StoreID:          q.UUID("store_id"),
		Page:             q.Int("page"),
		PageSize:         q.Int("page_size"),
		OrderBy:          q.String("order_by"),
		OrderDir:         q.String("order_dir"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update edits a product; stock changes are written to the history
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product and writes its closing history entries
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stock returns the effective stock of a product, per store when store_id is given
func (h *ProductHandler) Stock(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	q := newQuery(c)
	storeID := q.UUID("store_id")
	if !q.ok(&h.BaseHandler) {
		return
	}

	stock, err := h.productService.GetEffectiveStock(c.Request.Context(), id, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.EffectiveStockResponse{ProductID: id, StoreID: storeID, Stock: stock})
}

// UploadImage stores the multipart "image" file and sets the product image URL
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize+64<<10)
	file, err := c.FormFile("image")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || (err == nil && file.Size > h.maxImageSize) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image exceeds maximum allowed size")
		return
	}
	if err != nil {
		h.BadRequest(c, "Multipart field \"image\" is required")
		return
	}
	body, err := file.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	product, err := h.productService.UploadImage(c.Request.Context(), id, file.Filename, file.Header.Get("Content-Type"), body, file.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
