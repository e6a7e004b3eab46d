// Package api assembles the HTTP surface: middleware chain, service wiring
// and route registration.
package api

import (
	"context"
	"net/http"
	"time"

	"food-resolver/internal/api/handlers/food"
	"food-resolver/internal/api/handlers/health"
	"food-resolver/internal/api/middleware"
	"food-resolver/internal/core/catalog"
	"food-resolver/internal/core/nutrition"
	"food-resolver/internal/core/portion"
	"food-resolver/internal/core/resolve"
	"food-resolver/internal/core/search"
	"food-resolver/internal/infrastructure/cache"
	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Hard per-request deadline; individual pipeline stages carry their own
	// tighter budgets.
	timeoutDuration = 30 * time.Second
	// Request body size limit (1MB). Requests carry text, never images.
	maxBodySize = 1 << 20
)

// SetupRouter builds the gin engine with all services wired.
func SetupRouter(cfg *config.Config, c cache.Cache) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	// Service wiring.
	catalogClient := catalog.NewClient(cfg)
	searchSvc := search.NewService(cfg, catalogClient, c)
	portionEngine := portion.NewEngine(cfg)
	estimator := nutrition.NewRemoteEstimator(cfg)
	hydrator := nutrition.NewHydrator(cfg, nutrition.NewStaticCanonical(), estimator, c)
	resolveSvc := resolve.NewService(cfg, searchSvc, portionEngine, hydrator)

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("catalog_base_url", cfg.Catalog.BaseURL),
		zap.String("estimator_base_url", cfg.Estimator.BaseURL),
		zap.Duration("hydration_timeout", cfg.Hydration.Timeout),
	)

	// Per-request deadline plus config injection for the health handler.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeGatewayTimeout,
			})
			c.Abort()
			return
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/health/ready", health.ReadinessCheck)
	router.GET("/health/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		foodHandler := food.NewHandler(resolveSvc)

		foodGroup := api.Group("/food")
		{
			foodGroup.POST("/resolve", foodHandler.HandleResolve)
			foodGroup.POST("/candidates", foodHandler.HandleCandidates)
			foodGroup.POST("/portion", foodHandler.HandlePortion)
			foodGroup.POST("/hydrate", foodHandler.HandleHydrate)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
