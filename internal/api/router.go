package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/api/handlers"
	"github.com/akhilmk-dev/menahub/internal/api/middleware"
	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/metrics"
	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// Dependencies are the services the router exposes
type Dependencies struct {
	Orders  service.OrderLifecycle
	Queries service.OrderQueries
	Access  service.AccessControl
	Metrics *metrics.Metrics
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware(deps.Metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Shopify webhooks are authenticated by HMAC, not JWT
	webhooks := router.Group("/webhooks/shopify")
	{
		webhooks.POST("/orders/create", handlers.HandleShopifyOrderCreateWebhook(cfg.Shopify.WebhookSecret, deps.Orders, logger))
		webhooks.POST("/orders/paid", handlers.HandleShopifyOrderPaidWebhook(cfg.Shopify.WebhookSecret, deps.Orders, logger))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
	{
		read := v1.Group("")
		read.Use(middleware.RequirePermission(deps.Access, middleware.PermOrdersRead, logger))
		{
			read.GET("/orders", handlers.HandleListOrders(deps.Queries, logger))
			read.GET("/orders/:id", handlers.HandleGetOrder(deps.Queries, logger))
			read.GET("/orders/:id/timeline", handlers.HandleGetTimeline(deps.Queries, logger))
			read.GET("/orders/:id/removed-items", handlers.HandleGetRemovedItems(deps.Queries, logger))
		}

		write := v1.Group("")
		write.Use(middleware.RequirePermission(deps.Access, middleware.PermOrdersWrite, logger))
		{
			write.POST("/orders/import", handlers.HandleImportOrder(deps.Orders, logger))
			write.POST("/orders/edit", handlers.HandleEditOrder(deps.Orders, logger))
			write.POST("/orders/fulfill", handlers.HandleFulfill(deps.Orders, logger))
			write.POST("/orders/fulfill/single", handlers.HandleFulfillSingle(deps.Orders, logger))
			write.POST("/orders/:id/fulfill-remaining", handlers.HandleFulfillRemaining(deps.Orders, logger))
			write.POST("/orders/:id/cancel", handlers.HandleCancelOrder(deps.Orders, logger))
			write.POST("/orders/:id/mark-paid", handlers.HandleMarkPaid(deps.Orders, logger))
			write.DELETE("/orders/:id", handlers.HandleDeleteOrder(deps.Orders, logger))
		}

		vendors := v1.Group("/vendors")
		vendors.Use(middleware.RequirePermission(deps.Access, middleware.PermVendorItems, logger))
		{
			vendors.GET("/:vendor_id/line-items", handlers.HandleVendorLineItems(deps.Queries, logger))
		}

		// Any authenticated user with a role manages their own profile
		profile := v1.Group("/profile")
		profile.Use(middleware.RequirePermission(deps.Access, "", logger))
		{
			profile.GET("", handlers.HandleGetProfile(deps.Access, logger))
			profile.PUT("/changepassword", handlers.HandleChangePassword(deps.Access, logger))
		}

		access := v1.Group("")
		access.Use(middleware.RequirePermission(deps.Access, middleware.PermAccess, logger))
		{
			access.POST("/permissions", handlers.HandleCreatePermission(deps.Access, logger))
			access.GET("/permissions", handlers.HandleListPermissions(deps.Access, logger))
			access.GET("/permissions/:id", handlers.HandleGetPermission(deps.Access, logger))
			access.PUT("/permissions/:id", handlers.HandleUpdatePermission(deps.Access, logger))
			access.DELETE("/permissions/:id", handlers.HandleDeletePermission(deps.Access, logger))

			access.POST("/roles", handlers.HandleCreateRole(deps.Access, logger))
			access.GET("/roles", handlers.HandleListRoles(deps.Access, logger))
			access.GET("/roles/:id", handlers.HandleGetRole(deps.Access, logger))
			access.PUT("/roles/:id", handlers.HandleUpdateRole(deps.Access, logger))
			access.DELETE("/roles/:id", handlers.HandleDeleteRole(deps.Access, logger))

			access.POST("/users", handlers.HandleCreateUser(deps.Access, logger))
			access.GET("/users", handlers.HandleListUsers(deps.Access, logger))
			access.GET("/users/:id", handlers.HandleGetUser(deps.Access, logger))
			access.PUT("/users/:id", handlers.HandleUpdateUser(deps.Access, logger))
			access.DELETE("/users/:id", handlers.HandleDeleteUser(deps.Access, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Status:  "error",
			Kind:    errors.KindInternal,
			Message: "internal server error",
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// metricsMiddleware records request latency by route template
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
