// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/config"
	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/http/handlers"
	"github.com/medassist/llm-chat-backend/internal/http/middleware"
	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/repo"
	"github.com/medassist/llm-chat-backend/internal/services"
)

// conversationRepoShim adapts the repository free functions to the
// services.ConversationRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type conversationRepoShim struct{}

// CreateConversation proxies repo.CreateConversation.
func (conversationRepoShim) CreateConversation(ctx context.Context, db *gorm.DB, userID, title string) (*domain.Conversation, error) {
	return repo.CreateConversation(ctx, db, userID, title)
}

// GetConversation proxies repo.GetConversation.
func (conversationRepoShim) GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	return repo.GetConversation(ctx, db, id)
}

// CountConversations proxies repo.CountConversations.
func (conversationRepoShim) CountConversations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountConversations(ctx, db, userID)
}

// ListConversationsPage proxies repo.ListConversationsPage.
func (conversationRepoShim) ListConversationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Conversation, error) {
	return repo.ListConversationsPage(ctx, db, userID, offset, limit)
}

// DeleteConversation proxies repo.DeleteConversation.
func (conversationRepoShim) DeleteConversation(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteConversation(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// compression, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Gzip, excluding the streamed-reply route so fragments flush unbuffered
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gw *llm.Gateway, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (4 MiB; logo uploads are the largest payload)
	r.Use(limitBody(4 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Gzip. The streamed-reply route is excluded: compression would
	// buffer fragments and defeat incremental flushing.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`.*/conversations/[^/]+/messages$`}),
	))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeBadRequest, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/gateway
	authSvc := services.NewAuthService(db, []byte(cfg.Auth.JWTSecret))
	authSvc.TokenTTL = cfg.Auth.TokenTTL

	settingsSvc := &services.SettingsService{DB: db}
	convSvc := services.NewConversationService(db, conversationRepoShim{})
	msgSvc := &services.MessageService{
		DB:             db,
		Gateway:        gw,
		Settings:       settingsSvc,
		MaxPromptRunes: cfg.LLM.MaxPromptRunes,
		TitleMaxLen:    60,
		TitleLocale:    language.English,
	}
	sugSvc := &services.SuggestionService{DB: db, Gateway: gw, Settings: settingsSvc}
	adminSvc := &services.AdminService{DB: db, Gateway: gw, Settings: settingsSvc}

	h := handlers.New(authSvc, convSvc, msgSvc, sugSvc, settingsSvc, adminSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Public (no auth)
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/public/site-info", h.GetSiteInfo)

		// Authenticated
		auth := api.Group("", middleware.RequireAuth(authSvc))
		{
			auth.POST("/conversations", h.CreateConversation)
			auth.GET("/conversations", h.ListConversations)
			auth.GET("/conversations/:id", h.GetConversation)
			auth.DELETE("/conversations/:id", h.DeleteConversation)

			auth.GET("/conversations/:id/messages", h.ListMessages)
			auth.POST("/conversations/:id/messages", h.SendMessage)
			auth.GET("/conversations/:id/suggestions", h.GetSuggestions)
		}

		// Admin
		admin := api.Group("/admin", middleware.RequireAuth(authSvc), middleware.RequireAdmin())
		{
			admin.GET("/users", h.AdminListUsers)
			admin.PUT("/users/:id/ban", h.AdminBanUser)
			admin.DELETE("/users/:id", h.AdminDeleteUser)

			admin.GET("/conversations", h.AdminListConversations)
			admin.DELETE("/conversations/:id", h.AdminDeleteConversation)

			admin.GET("/settings", h.AdminGetSettings)
			admin.PUT("/settings", h.AdminUpdateSettings)
			admin.POST("/settings/logo", h.AdminUploadLogo)

			admin.POST("/llm/test-connection", h.AdminTestConnection)
			admin.POST("/llm/models", h.AdminListModels)
		}
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Requests exceeding the cap error on body read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
