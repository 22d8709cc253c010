package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supplycore/fulfillment/api-gateway/config"
	"github.com/supplycore/fulfillment/api-gateway/health"
	"github.com/supplycore/fulfillment/api-gateway/middleware"
	"github.com/supplycore/fulfillment/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix         string
	ServiceName    string
	Description    string
	RequireAuth    bool // Requires authentication
	RequireAdmin   bool // Requires admin role
	ThrottleWrites bool // Apply the stricter mutation rate limit
}

// Routes holds all route definitions
var Routes = []RouteDefinition{
	// Catalog routes (public reads)
	{
		Prefix:       "/api/products",
		ServiceName:  "catalog",
		Description:  "Product catalog (public reads)",
		RequireAuth:  false,
		RequireAdmin: false,
	},

	// Order routes
	{
		Prefix:         "/api/orders",
		ServiceName:    "fulfillment",
		Description:    "Order placement, transitions, invoices and audit",
		RequireAuth:    true,
		RequireAdmin:   false,
		ThrottleWrites: true,
	},

	// Inventory routes (seller/admin facing)
	{
		Prefix:         "/api/inventory",
		ServiceName:    "fulfillment",
		Description:    "Stock ledger management",
		RequireAuth:    true,
		RequireAdmin:   false,
		ThrottleWrites: true,
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, redisClient *redis.Client) {
	// Create reverse proxy
	reverseProxy := proxy.NewReverseProxy(cfg)

	// Create health checker
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks downstream services)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed service health checks
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)
		return c.JSON(healthStatus)
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Fulfillment API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all service routes
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy, redisClient)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy, redisClient *redis.Client) {
	handler := func(c *fiber.Ctx) error {
		return proxyHandler.ProxyRequest(c, route.ServiceName)
	}

	// Apply middleware based on route requirements
	var middlewares []fiber.Handler

	if route.RequireAdmin {
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.AdminMiddleware())
	} else if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	}

	if route.ThrottleWrites && redisClient != nil {
		middlewares = append(middlewares, middleware.TransitionRateLimiter(redisClient))
	}

	// Create a route group for this service
	group := app.Group(route.Prefix, middlewares...)

	// Handle all HTTP methods with wildcard path
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
