// Public HTTP handlers.
//
// Unauthenticated endpoints serving site branding so clients can render a
// login page before any credentials exist.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

// SiteInfoResponse carries the public branding settings.
type SiteInfoResponse struct {
	WebsiteName    string `json:"website_name"`
	WebsiteLogo    string `json:"website_logo"`
	LargeFontScale string `json:"large_font_scale"`
}

// GetSiteInfo handles GET /public/site-info.
func (h *Handlers) GetSiteInfo(c *gin.Context) {
	ctx := c.Request.Context()

	all, err := h.settingsSvc.All(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, SiteInfoResponse{
		WebsiteName:    all[domain.SettingWebsiteName],
		WebsiteLogo:    all[domain.SettingWebsiteLogo],
		LargeFontScale: all[domain.SettingLargeFontScale],
	})
}
