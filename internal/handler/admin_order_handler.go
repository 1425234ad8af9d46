package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// AdminOrderHandler handles back-office order endpoints.
type AdminOrderHandler struct {
	orderService *service.OrderService
}

// NewAdminOrderHandler constructs an AdminOrderHandler.
func NewAdminOrderHandler(orderService *service.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// ListOrders handles GET /v1/admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	page, limit := pageParams(c)
	f := repository.OrderFilter{
		Status: models.OrderStatus(strings.ToLower(c.Query("status"))),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	}

	// Parse date range (YYYY-MM-DD, inclusive)
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			badRequest(c, "startDate must be YYYY-MM-DD")
			return
		}
		f.From = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			badRequest(c, "endDate must be YYYY-MM-DD")
			return
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}

	orders, total, err := h.orderService.ListAdmin(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", orders, page, limit, total)
}

// Stats handles GET /v1/admin/orders/stats
func (h *AdminOrderHandler) Stats(c *gin.Context) {
	stats, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to count orders")
		return
	}
	utils.Success(c, http.StatusOK, "Order stats retrieved", stats)
}

// GetOrder handles GET /v1/admin/orders/:id
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	o, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", o)
}

// UpdateStatus handles PUT /v1/admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	utils.Success(c, http.StatusOK, "Order status updated", o)
}

// UpdateTracking handles PUT /v1/admin/orders/:id/tracking
// Body: {"steps": {"out_for_delivery": true}}
func (h *AdminOrderHandler) UpdateTracking(c *gin.Context) {
	var req struct {
		Steps map[string]bool `json:"steps" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Steps) == 0 {
		badRequest(c, "steps is required")
		return
	}
	o, err := h.orderService.UpdateTracking(c.Request.Context(), c.Param("id"), req.Steps)
	if err != nil {
		respondError(c, err, "Failed to update tracking")
		return
	}
	utils.Success(c, http.StatusOK, "Order tracking updated", o)
}
