package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/kumpul-tugas/internal/config"
	"github.com/stemsi/kumpul-tugas/internal/handler"
	"github.com/stemsi/kumpul-tugas/internal/middleware"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/service"
)

// Handlers groups all handler instances for route setup. Class is nil when
// the class registry is disabled.
type Handlers struct {
	Auth       *handler.AuthHandler
	Submission *handler.SubmissionHandler
	Class      *handler.ClassHandler
	Review     *handler.ReviewHandler
	Feed       *handler.FeedHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "X-Archive-Added", "X-Archive-Skipped"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Brotli for JSON; stored files, archives and workbooks pass through.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPathSuffixes("/download", "/archive", "/export"),
	}))

	// Health check.
	router.GET("/health", handlers.System.Health)

	// Login attempts are always limited per IP; uploads only when configured.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	submitChain := []gin.HandlerFunc{handlers.Submission.Submit}
	if cfg.SubmitRateLimit > 0 {
		submitLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
		submitChain = append([]gin.HandlerFunc{submitLimiter.Middleware()}, submitChain...)
	}

	requireAdmin := middleware.RequireAdminSession(authService)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/classes", middleware.CacheControl(10), handlers.Submission.ListPublicClasses)
	}
	router.POST("/api/v1/submissions", submitChain...)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", loginLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.POST("/admin/logout", requireAdmin, handlers.Auth.AdminLogout)
		auth.GET("/admin/me", requireAdmin, handlers.Auth.GetAdminSession)
	}

	// ─── 2. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireAdmin)
	{
		ws.GET("/admin/submissions/feed", handlers.Feed.SubmissionFeed)
	}

	// ─── 3. Admin Group (live session) ─────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAdmin, middleware.NoStore())
	{
		// Class registry
		if handlers.Class != nil {
			adminAPI.GET("/classes", handlers.Class.ListClasses)
			adminAPI.POST("/classes", handlers.Class.CreateClass)
			adminAPI.PATCH("/classes/:id", handlers.Class.SetClassActive)
		}

		// Submission review
		adminAPI.GET("/submissions", handlers.Review.ListSubmissions)
		adminAPI.GET("/submissions/summary", handlers.Review.GetSummary)
		adminAPI.GET("/submissions/summary/export", handlers.Review.ExportSummary)
		if handlers.Review.ArchiveEnabled() {
			adminAPI.GET("/submissions/archive", handlers.Review.DownloadArchive)
		}
		adminAPI.GET("/submissions/:id/download", handlers.Review.DownloadSubmission)

		// System Monitoring
		adminAPI.GET("/system/status", handlers.System.SystemStatus)
	}

	return router
}
