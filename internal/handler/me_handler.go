package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/middleware"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// MeHandler serves the signed-in customer's profile and inbox.
type MeHandler struct {
	userService         *service.UserService
	notificationService *service.NotificationService
}

func NewMeHandler(userService *service.UserService, notificationService *service.NotificationService) *MeHandler {
	return &MeHandler{userService: userService, notificationService: notificationService}
}

// SaveProfile handles PUT /v1/me/profile
func (h *MeHandler) SaveProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	u, err := h.userService.SaveProfile(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	utils.Success(c, http.StatusOK, "Profile saved", u)
}

// Notifications handles GET /v1/me/notifications?unread=true&limit=
func (h *MeHandler) Notifications(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageLimit)
		}
	}
	unread := boolQuery(c, "unread")
	inbox, err := h.notificationService.Inbox(c.Request.Context(), middleware.GetUserID(c), unread != nil && *unread, limit)
	if err != nil {
		respondError(c, err, "Failed to get notifications")
		return
	}
	utils.Success(c, http.StatusOK, "Notifications retrieved", inbox)
}

// MarkRead handles POST /v1/me/notifications/:id/read
func (h *MeHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to update notification")
		return
	}
	utils.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead handles POST /v1/me/notifications/read-all
func (h *MeHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "Failed to update notifications")
		return
	}
	utils.Success(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": n})
}
