package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// SettingsHandler exposes the lending policy settings to staff
type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsService.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, settings, "")
}

func (h *SettingsHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	setting, err := h.settingsService.GetSetting(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, setting, "")
}

func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req models.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	setting, err := h.settingsService.UpdateSetting(c.Request.Context(), key, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, setting, "setting updated successfully")
}
