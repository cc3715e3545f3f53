package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jar-backoffice/internal/api_gateway/handler"
	"github.com/jar-backoffice/internal/api_gateway/middleware"
	"github.com/jar-backoffice/internal/platform/metrics"
)

// Handlers groups every resource handler the router mounts
type Handlers struct {
	Customers *handler.CustomerHandler
	Products  *handler.ProductHandler
	Sales     *handler.SaleHandler
	Payments  *handler.PaymentHandler
	Jars      *handler.JarHandler
	Ledger    *handler.LedgerHandler
	Reports   *handler.ReportHandler
	Locations *handler.LocationHandler
	Expenses  *handler.ExpenseHandler
}

// RouterOptions carries the cross-cutting pieces of the HTTP stack
type RouterOptions struct {
	Tokens      middleware.TokenVerifier
	Limiter     *middleware.ClientLimiter
	Metrics     *metrics.Registry
	MetricsPath string
	// Readiness names the stores /ready pings, e.g. "postgres"
	Readiness map[string]func(ctx context.Context) error
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h Handlers, opts RouterOptions) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}

	// API v1 endpoints, all tenant scoped through the bearer token
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(opts.Limiter))
	v1.Use(middleware.Auth(opts.Tokens))
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", h.Customers.Create)
			customers.GET("", h.Customers.List)
			customers.GET("/active", h.Customers.Active)
			customers.GET("/:id", h.Customers.GetByID)
			customers.PUT("/:id", h.Customers.Update)
			customers.DELETE("/:id", h.Customers.Delete)

			customers.GET("/:id/ledger", h.Ledger.List)
			customers.POST("/:id/ledger", h.Ledger.Create)
			customers.GET("/:id/balance", h.Ledger.Balance)
			customers.GET("/:id/statement", h.Ledger.Statement)
		}

		v1.DELETE("/ledger/:entry_id", h.Ledger.Delete)

		products := v1.Group("/products")
		{
			products.POST("", h.Products.Create)
			products.GET("", h.Products.List)
			products.GET("/:id", h.Products.GetByID)
			products.PUT("/:id", h.Products.Update)
			products.DELETE("/:id", h.Products.Delete)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", h.Sales.Create)
			sales.GET("", h.Sales.List)
			sales.GET("/:id", h.Sales.GetByID)
			sales.DELETE("/:id", h.Sales.Delete)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", h.Payments.Create)
			payments.GET("", h.Payments.List)
		}

		jars := v1.Group("/jars")
		{
			jars.POST("", h.Jars.Create)
			jars.GET("", h.Jars.List)
		}

		locations := v1.Group("/locations")
		{
			locations.POST("", h.Locations.Create)
			locations.GET("", h.Locations.List)
			locations.GET("/:id", h.Locations.GetByID)
			locations.PUT("/:id", h.Locations.Update)
			locations.DELETE("/:id", h.Locations.Delete)
		}

		groups := v1.Group("/expense-groups")
		{
			groups.POST("", h.Expenses.CreateGroup)
			groups.GET("", h.Expenses.ListGroups)
			groups.PUT("/:id", h.Expenses.UpdateGroup)
			groups.DELETE("/:id", h.Expenses.DeleteGroup)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", h.Expenses.Create)
			expenses.GET("", h.Expenses.List)
			expenses.GET("/:id", h.Expenses.GetByID)
			expenses.PUT("/:id", h.Expenses.Update)
			expenses.DELETE("/:id", h.Expenses.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/summary", h.Reports.Summary)
			reports.GET("/outstanding", h.Reports.Outstanding)
		}
	}

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.GET("/ready", readiness(logger, opts.Readiness))
}

// readiness answers 503 when any store fails its ping
func readiness(logger *slog.Logger, checks map[string]func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("Readiness check failed",
					"store", name,
					"correlation_id", middleware.GetCorrelationID(c),
					"error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		c.JSON(status, gin.H{"ready": status == http.StatusOK, "checks": results})
	}
}
