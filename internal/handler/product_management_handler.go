package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// ProductManagementHandler handles product CRUD HTTP endpoints.
type ProductManagementHandler struct {
	productService *service.ProductService
}

// NewProductManagementHandler constructs a ProductManagementHandler.
func NewProductManagementHandler(productService *service.ProductService) *ProductManagementHandler {
	return &ProductManagementHandler{productService: productService}
}

// ListProducts handles GET /v1/admin/products
func (h *ProductManagementHandler) ListProducts(c *gin.Context) {
	f, ok := productFilter(c)
	if !ok {
		return
	}
	products, total, err := h.productService.ListAdmin(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved", products, f.Page, f.Limit, total)
}

// GetProduct handles GET /v1/admin/products/:id
func (h *ProductManagementHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", p)
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductManagementHandler) CreateProduct(c *gin.Context) {
	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	utils.Success(c, http.StatusCreated, "Product created successfully", p)
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *ProductManagementHandler) UpdateProduct(c *gin.Context) {
	var req models.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := h.productService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", p)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *ProductManagementHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted successfully", nil)
}

// BulkDelete handles POST /v1/admin/products/bulk-delete
func (h *ProductManagementHandler) BulkDelete(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required,min=1,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ids must list between 1 and 500 products")
		return
	}
	n, err := h.productService.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err, "Failed to delete products")
		return
	}
	utils.Success(c, http.StatusOK, "Products deleted", gin.H{"deleted": n})
}

// DuplicateProduct handles POST /v1/admin/products/:id/duplicate
func (h *ProductManagementHandler) DuplicateProduct(c *gin.Context) {
	p, err := h.productService.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to duplicate product")
		return
	}
	utils.Success(c, http.StatusCreated, "Product duplicated", p)
}

// ToggleFeatured handles POST /v1/admin/products/:id/featured
func (h *ProductManagementHandler) ToggleFeatured(c *gin.Context) {
	p, err := h.productService.ToggleFeatured(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated", p)
}
