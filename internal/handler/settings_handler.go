package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// SettingsHandler serves the store settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /v1/settings and GET /v1/admin/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get settings")
		return
	}
	utils.Success(c, http.StatusOK, "Settings retrieved", s)
}

// Update handles PUT /v1/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req models.StoreSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to save settings")
		return
	}
	utils.Success(c, http.StatusOK, "Settings saved", s)
}
