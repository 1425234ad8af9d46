package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/middleware"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// OrderHandler handles customer checkout and tracking.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) bindCheckout(c *gin.Context) (service.CheckoutInput, bool) {
	var in service.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return in, false
	}
	in.UserID = middleware.UserIDPtr(c)
	return in, true
}

// Quote handles POST /v1/orders/quote
func (h *OrderHandler) Quote(c *gin.Context) {
	in, ok := h.bindCheckout(c)
	if !ok {
		return
	}
	q, err := h.orderService.Quote(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to price cart")
		return
	}
	utils.Success(c, http.StatusOK, "Cart priced", q)
}

// Submit handles POST /v1/orders
func (h *OrderHandler) Submit(c *gin.Context) {
	in, ok := h.bindCheckout(c)
	if !ok {
		return
	}
	res, err := h.orderService.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}
	utils.Success(c, http.StatusCreated, "Order placed", res)
}

// Track handles GET /v1/orders/:ref?phone=
func (h *OrderHandler) Track(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		badRequest(c, "phone is required")
		return
	}
	o, err := h.orderService.Track(c.Request.Context(), c.Param("ref"), phone)
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", o)
}

// ListMine handles GET /v1/me/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	page, limit := pageParams(c)
	orders, total, err := h.orderService.ListMine(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, err, "Failed to get orders")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", orders, page, limit, total)
}
