package app

import (
	"net/http"
	"time"

	"reservehub/internal/config"
	"reservehub/internal/events"
	"reservehub/internal/middleware"
	"reservehub/internal/modules/admin"
	"reservehub/internal/modules/auth"
	"reservehub/internal/modules/catalog"
	"reservehub/internal/modules/ledger"
	"reservehub/internal/modules/message"
	"reservehub/internal/modules/report"
	"reservehub/internal/modules/reservation"
	"reservehub/internal/modules/review"
	jwtsvc "reservehub/internal/pkg/jwt"
	"reservehub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-level resources the router is built from. Redis may be
// nil; Publisher and Mailer fall back to no-op implementations.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
	Mailer    auth.Mailer
}

// App is the assembled HTTP application.
type App struct {
	Router *gin.Engine
	Auth   *auth.Service
	Hub    *message.Hub
	JWT    *jwtsvc.Service
}

func New(d Deps) *App {
	cfg := d.Config
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}

	userRepo := repository.NewUserRepository(d.DB)
	tokenRepo := repository.NewUserTokenRepository(d.DB)
	catalogRepo := repository.NewCatalogRepository(d.DB)
	reservationRepo := repository.NewReservationRepository(d.DB)
	reviewRepo := repository.NewReviewRepository(d.DB)
	messageRepo := repository.NewMessageRepository(d.DB)
	reportRepo := repository.NewReportRepository(d.DB)

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	hub := message.NewHub()

	ledgerService := ledger.NewService(d.DB)
	authService := auth.NewService(userRepo, tokenRepo, j, d.Mailer, d.Publisher, cfg.Auth)
	catalogService := catalog.NewService(catalogRepo, reviewRepo, messageRepo)
	messageService := message.NewService(messageRepo, reservationRepo, userRepo, hub, d.Publisher)
	reservationService := reservation.NewService(d.DB, ledgerService, messageService, d.Publisher)
	reviewService := review.NewService(d.DB, ledgerService, d.Publisher, cfg.Auth.ReviewReward)
	reportService := report.NewService(reportRepo)
	adminService := admin.NewService(userRepo, ledgerService)

	authHandler := auth.NewHandler(authService)
	ledgerHandler := ledger.NewHandler(ledgerService)
	catalogHandler := catalog.NewHandler(catalogService)
	messageHandler := message.NewHandler(messageService)
	wsHandler := message.NewWSHandler(hub, j, cfg.CORSOrigins)
	reservationHandler := reservation.NewHandler(reservationService)
	reviewHandler := review.NewHandler(reviewService)
	reportHandler := report.NewHandler(reportService)
	adminHandler := admin.NewHandler(adminService)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var rateLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Redis.RateEnabled {
		rateLimit = middleware.RateLimit(d.Redis, middleware.RateLimitConfig{
			Capacity:       cfg.Redis.RateCapacity,
			RefillTokens:   1,
			RefillInterval: cfg.Redis.RateRefillEach,
		})
	}
	cacheTTL := time.Duration(0)
	if cfg.Redis.CacheEnabled {
		cacheTTL = cfg.Redis.CacheTTL
	}

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(j), rateLimit)
		{
			authHandler.RegisterPublicRoutes(public)

			cached := public.Group("")
			cached.Use(middleware.ResponseCache(d.Redis, cacheTTL))
			catalogHandler.RegisterPublicRoutes(cached)
		}

		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j), middleware.ActiveUser(userRepo), rateLimit, middleware.CacheBust(d.Redis))
		{
			authHandler.RegisterProtectedRoutes(protected)
			ledgerHandler.RegisterRoutes(protected)
			reservationHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
			messageHandler.RegisterProtectedRoutes(protected)
		}

		staff := v1.Group("/admin")
		staff.Use(middleware.JWTAuth(j), middleware.ActiveUser(userRepo), middleware.AdminOnly(), middleware.CacheBust(d.Redis))
		{
			catalogHandler.RegisterAdminRoutes(staff)
			reservationHandler.RegisterAdminRoutes(staff)
			messageHandler.RegisterAdminRoutes(staff)
			reportHandler.RegisterAdminRoutes(staff)
			adminHandler.RegisterRoutes(staff)
		}
	}

	return &App{Router: r, Auth: authService, Hub: hub, JWT: j}
}
