package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// ProductHandler handles the storefront catalog endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// productFilter reads the listing query shared by the storefront and admin.
func productFilter(c *gin.Context) (repository.ProductFilter, bool) {
	page, limit := pageParams(c)
	f := repository.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Featured: boolQuery(c, "featured"),
		Pincode:  strings.TrimSpace(c.Query("pincode")),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	}
	for key, dst := range map[string]*decimal.NullDecimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			badRequest(c, key+" must be a number")
			return f, false
		}
		*dst = decimal.NewNullDecimal(d)
	}
	return f, true
}

// GetProducts handles GET /v1/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	f, ok := productFilter(c)
	if !ok {
		return
	}
	products, total, err := h.productService.ListPublic(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to get products")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", products, f.Page, f.Limit, total)
}

// GetCategories handles GET /v1/products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get categories")
		return
	}
	utils.Success(c, http.StatusOK, "Categories retrieved", categories)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", p)
}

// CheckDelivery handles GET /v1/delivery/check?pincode=&productId=
func (h *ProductHandler) CheckDelivery(c *gin.Context) {
	pincode := strings.TrimSpace(c.Query("pincode"))
	if pincode == "" {
		badRequest(c, "pincode is required")
		return
	}
	res, err := h.productService.CheckDelivery(c.Request.Context(), pincode, c.Query("productId"))
	if err != nil {
		respondError(c, err, "Failed to check delivery")
		return
	}
	utils.Success(c, http.StatusOK, "Delivery checked", res)
}
