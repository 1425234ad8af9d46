package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// CommunityHandler collects pincode requests and newsletter sign-ups, and
// lists them, with the customer directory, for the back office.
type CommunityHandler struct {
	pincodeService    *service.PincodeService
	newsletterService *service.NewsletterService
	userService       *service.UserService
}

func NewCommunityHandler(pincodes *service.PincodeService, newsletter *service.NewsletterService, users *service.UserService) *CommunityHandler {
	return &CommunityHandler{pincodeService: pincodes, newsletterService: newsletter, userService: users}
}

// RequestPincode handles POST /v1/pincode-requests
func (h *CommunityHandler) RequestPincode(c *gin.Context) {
	var in service.PincodeRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req, err := h.pincodeService.Request(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to record request")
		return
	}
	utils.Success(c, http.StatusCreated, "Thanks! We will let you know when we deliver there", req)
}

// ListPincodeRequests handles GET /v1/admin/pincode-requests
func (h *CommunityHandler) ListPincodeRequests(c *gin.Context) {
	page, limit := pageParams(c)
	list, total, err := h.pincodeService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve pincode requests")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Pincode requests retrieved", list, page, limit, total)
}

// PincodeDemand handles GET /v1/admin/pincode-requests/demand?limit=
func (h *CommunityHandler) PincodeDemand(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	demand, err := h.pincodeService.Demand(c.Request.Context(), min(limit, maxPageLimit))
	if err != nil {
		respondError(c, err, "Failed to retrieve pincode demand")
		return
	}
	utils.Success(c, http.StatusOK, "Pincode demand retrieved", demand)
}

// Subscribe handles POST /v1/newsletter
func (h *CommunityHandler) Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	created, err := h.newsletterService.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to subscribe")
		return
	}
	if !created {
		utils.Success(c, http.StatusOK, "You are already subscribed", nil)
		return
	}
	utils.Success(c, http.StatusCreated, "Subscribed", nil)
}

// ListSubscribers handles GET /v1/admin/newsletter
func (h *CommunityHandler) ListSubscribers(c *gin.Context) {
	page, limit := pageParams(c)
	list, total, err := h.newsletterService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve subscribers")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Subscribers retrieved", list, page, limit, total)
}

// ListUsers handles GET /v1/admin/users?search=
func (h *CommunityHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	list, total, err := h.userService.List(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve users")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Users retrieved", list, page, limit, total)
}
