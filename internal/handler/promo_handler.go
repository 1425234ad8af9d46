package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// PromoHandler handles promo code endpoints.
type PromoHandler struct {
	promoService *service.PromoService
}

func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// Validate handles POST /v1/promo/validate
func (h *PromoHandler) Validate(c *gin.Context) {
	var req struct {
		Code     string          `json:"code" binding:"required"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code is required")
		return
	}
	res, err := h.promoService.Check(c.Request.Context(), strings.TrimSpace(req.Code), req.Subtotal)
	if err != nil {
		respondError(c, err, "Failed to validate promo code")
		return
	}
	utils.Success(c, http.StatusOK, "Promo code applied", res)
}

// Create handles POST /v1/admin/promo-codes
func (h *PromoHandler) Create(c *gin.Context) {
	var req models.PromoCode
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req.IsActive = true
	p, err := h.promoService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create promo code")
		return
	}
	utils.Success(c, http.StatusCreated, "Promo code created", p)
}

// List handles GET /v1/admin/promo-codes
func (h *PromoHandler) List(c *gin.Context) {
	list, err := h.promoService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve promo codes")
		return
	}
	utils.Success(c, http.StatusOK, "Promo codes retrieved", list)
}

// Deactivate handles POST /v1/admin/promo-codes/:code/deactivate
func (h *PromoHandler) Deactivate(c *gin.Context) {
	if err := h.promoService.SetActive(c.Request.Context(), c.Param("code"), false); err != nil {
		respondError(c, err, "Failed to deactivate promo code")
		return
	}
	utils.Success(c, http.StatusOK, "Promo code deactivated", nil)
}
