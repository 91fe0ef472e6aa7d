// Admin HTTP handlers.
//
// Operator endpoints, all gated by the admin middleware:
//   - GET    /admin/users                    (list accounts)
//   - PUT    /admin/users/{id}/ban           (ban / unban)
//   - DELETE /admin/users/{id}               (remove account and its data)
//   - GET    /admin/conversations            (list every conversation)
//   - DELETE /admin/conversations/{id}       (remove any conversation)
//   - GET    /admin/settings                 (full settings map)
//   - PUT    /admin/settings                 (update; may freeze conversations)
//   - POST   /admin/settings/logo            (upload site logo)
//   - POST   /admin/llm/test-connection      (probe model credentials)
//   - POST   /admin/llm/models               (enumerate available models)
//
// Settings updates report how many conversations were frozen so the operator
// console can show the blast radius of a model change.
package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/services"
)

// maxLogoBytes caps uploaded logo size.
const maxLogoBytes = 2 << 20

// logoMIMEAllowList enumerates accepted logo content types.
var logoMIMEAllowList = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// BanRequest is the JSON payload for toggling a user ban.
type BanRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

// UpdateSettingsRequest carries the settings to write.
type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// UpdateSettingsResponse reports the write outcome.
type UpdateSettingsResponse struct {
	Updated             int   `json:"updated"`
	FrozenConversations int64 `json:"frozen_conversations"`
}

// LLMCredentialsRequest carries provider credentials for the diagnostics
// endpoints. Credentials are taken from the request, not from stored
// settings, so operators can probe before saving.
type LLMCredentialsRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
}

// AdminListUsers handles GET /admin/users.
func (h *Handlers) AdminListUsers(c *gin.Context) {
	users, err := h.adminSvc.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"users": users})
}

// AdminBanUser handles PUT /admin/users/:id/ban.
func (h *Handlers) AdminBanUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Banned == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "banned (bool) required")
		return
	}

	if err := h.adminSvc.SetUserBan(c.Request.Context(), id, *req.Banned); err != nil {
		failUserAdmin(c, err)
		return
	}
	noContent(c)
}

// AdminDeleteUser handles DELETE /admin/users/:id.
func (h *Handlers) AdminDeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}

	if err := h.adminSvc.DeleteUser(c.Request.Context(), id); err != nil {
		failUserAdmin(c, err)
		return
	}
	noContent(c)
}

// AdminListConversations handles GET /admin/conversations.
func (h *Handlers) AdminListConversations(c *gin.Context) {
	convs, err := h.adminSvc.ListAllConversations(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"conversations": convs})
}

// AdminDeleteConversation handles DELETE /admin/conversations/:id.
func (h *Handlers) AdminDeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	if err := h.adminSvc.DeleteConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// AdminGetSettings handles GET /admin/settings.
func (h *Handlers) AdminGetSettings(c *gin.Context) {
	all, err := h.settingsSvc.All(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"settings": all})
}

// AdminUpdateSettings handles PUT /admin/settings. Changing any
// model-affecting key freezes every active conversation; the response
// reports how many.
func (h *Handlers) AdminUpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Values) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "values (non-empty object) required")
		return
	}
	for k := range req.Values {
		if !domain.IsKnownSettingKey(k) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("unknown setting key %q", k))
			return
		}
	}

	frozen, err := h.settingsSvc.Update(c.Request.Context(), req.Values)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, UpdateSettingsResponse{
		Updated:             len(req.Values),
		FrozenConversations: frozen,
	})
}

// AdminUploadLogo handles POST /admin/settings/logo. The image is validated
// against a small MIME allow-list, capped at 2 MiB, and stored inline as a
// data URL under the website_logo setting.
func (h *Handlers) AdminUploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' required")
		return
	}
	if fileHeader.Size > maxLogoBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "logo exceeds 2 MiB limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxLogoBytes+1))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if len(data) > maxLogoBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "logo exceeds 2 MiB limit")
		return
	}

	mime := logoMIME(fileHeader.Filename, data)
	if _, allowed := logoMIMEAllowList[mime]; !allowed {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unsupported image type")
		return
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	if _, err := h.settingsSvc.Update(c.Request.Context(), map[string]string{
		domain.SettingWebsiteLogo: dataURL,
	}); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"website_logo": dataURL})
}

// AdminTestConnection handles POST /admin/llm/test-connection.
func (h *Handlers) AdminTestConnection(c *gin.Context) {
	var req LLMCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider and api_key required")
		return
	}

	if err := h.adminSvc.TestConnection(c.Request.Context(), req.Provider, req.APIKey, req.Model, req.BaseURL); err != nil {
		// Probe failures are reported, not hidden behind a 500: this
		// endpoint exists to surface exactly this error text.
		ok(c, http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}
	ok(c, http.StatusOK, gin.H{"ok": true})
}

// AdminListModels handles POST /admin/llm/models.
func (h *Handlers) AdminListModels(c *gin.Context) {
	var req LLMCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider and api_key required")
		return
	}

	models, err := h.adminSvc.ListModels(c.Request.Context(), req.Provider, req.APIKey, req.BaseURL)
	if err != nil {
		ok(c, http.StatusOK, gin.H{"models": []any{}, "error": err.Error()})
		return
	}
	ok(c, http.StatusOK, gin.H{"models": models})
}

// failUserAdmin maps user-admin errors onto the HTTP taxonomy.
func failUserAdmin(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrAdminImmutable):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "the built-in administrator cannot be modified")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// logoMIME sniffs the content type, special-casing SVG which
// http.DetectContentType reports as generic text/XML.
func logoMIME(filename string, data []byte) string {
	if strings.HasSuffix(strings.ToLower(filename), ".svg") {
		return "image/svg+xml"
	}
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}
