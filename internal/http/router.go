// Package httpapi wires the HTTP transport (Gin) to the support desk
// services, middleware and route handlers. It owns the cross-cutting
// pipeline: tracing, correlation IDs, logging with redaction, panic
// recovery, metrics, idempotency, rate limiting, CORS, compression and
// security headers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/docs"
	"github.com/tbourn/go-support-desk/internal/catalog"
	"github.com/tbourn/go-support-desk/internal/config"
	"github.com/tbourn/go-support-desk/internal/http/handlers"
	"github.com/tbourn/go-support-desk/internal/http/middleware"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/services"
)

// Deps are the runtime dependencies the routes are built over.
type Deps struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
	// Stores hosts per-client view history; nil keeps it in process memory.
	Stores services.StoreFactory
	Log    zerolog.Logger
}

var corsAllowHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
	middleware.HeaderUserID, middleware.HeaderClientID, middleware.HeaderIdempotencyKey,
}

var corsExposeHeaders = []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"}

// RegisterRoutes attaches the middleware pipeline and every endpoint to r.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery (after the logger so panics carry the request id)
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before the rate limiter so replays bypass it)
//  8. Rate limiter keyed by caller
//  9. CORS, gzip and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	idem := repo.IdempotencyStore{DB: deps.DB, TTL: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Exists))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCaller())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	kb := services.NewKnowledgeService(deps.DB, deps.Catalog)
	if deps.Stores != nil {
		kb.Stores = deps.Stores
	}
	if cfg.HistoryCap > 0 {
		kb.HistoryCap = cfg.HistoryCap
	}
	kb.Log = deps.Log
	fb := &services.FeedbackService{DB: deps.DB, Items: deps.Catalog}
	esc := services.NewEscalationService(deps.DB)

	h := handlers.New(kb, fb, esc, handlers.WithIdempotency(idem))

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Knowledge base
		api.GET("/support/faqs", h.SearchFAQs)
		api.GET("/support/faqs/categories", h.ListFAQCategories)
		api.GET("/support/faqs/popular", h.PopularFAQs)
		api.GET("/support/faqs/recent", h.RecentFAQs)
		api.GET("/support/faqs/:id", h.GetFAQ)
		api.POST("/support/faqs/:id/view", h.RecordFAQView)
		api.POST("/support/faq-feedback", h.LeaveFeedback)

		// Escalation queue
		api.GET("/admin/support/escalations", h.ListEscalations)
		api.PATCH("/admin/support/escalations", h.AssignEscalation)
		api.POST("/admin/support/escalations/:id/take-over", h.TakeOverEscalation)
		api.POST("/support/escalations/:id/resolve", h.ResolveEscalation)
		api.POST("/support/escalations/:id/reassign", h.ReassignEscalation)
	}
}

// corsMiddleware allows every origin when none are configured and otherwise
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    corsExposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		conf.AllowAllOrigins = true
		// ACAO on requests without an Origin header too (health checks, curl).
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(conf),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	conf.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(conf),
	}
}

// limitBody caps request bodies at maxBytes; reads past the cap fail.
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
