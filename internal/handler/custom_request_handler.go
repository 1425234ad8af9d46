package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/middleware"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// CustomRequestHandler handles custom cake enquiries.
type CustomRequestHandler struct {
	service *service.CustomRequestService
}

func NewCustomRequestHandler(svc *service.CustomRequestService) *CustomRequestHandler {
	return &CustomRequestHandler{service: svc}
}

// Submit handles POST /v1/custom-requests
func (h *CustomRequestHandler) Submit(c *gin.Context) {
	var in service.CustomRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	in.UserID = middleware.UserIDPtr(c)
	req, err := h.service.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to submit request")
		return
	}
	utils.Success(c, http.StatusCreated, "Request received, we will get back to you soon", req)
}

// List handles GET /v1/admin/custom-requests?status=
func (h *CustomRequestHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	status := models.CustomRequestStatus(strings.ToLower(c.Query("status")))
	list, total, err := h.service.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve custom requests")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Custom requests retrieved", list, page, limit, total)
}

// Get handles GET /v1/admin/custom-requests/:id
func (h *CustomRequestHandler) Get(c *gin.Context) {
	req, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get custom request")
		return
	}
	utils.Success(c, http.StatusOK, "Custom request retrieved", req)
}

// Review handles PUT /v1/admin/custom-requests/:id
func (h *CustomRequestHandler) Review(c *gin.Context) {
	var in service.CustomRequestReview
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req, err := h.service.Review(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update custom request")
		return
	}
	utils.Success(c, http.StatusOK, "Custom request updated", req)
}
