package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/supplycore/fulfillment/internal/inventory"
	inventoryHTTP "github.com/supplycore/fulfillment/internal/inventory/delivery/http"
	inventorydomain "github.com/supplycore/fulfillment/internal/inventory/domain"
	inventoryrepo "github.com/supplycore/fulfillment/internal/inventory/repository"
	"github.com/supplycore/fulfillment/internal/order"
	"github.com/supplycore/fulfillment/internal/order/client"
	httpDelivery "github.com/supplycore/fulfillment/internal/order/delivery/http"
	orderdomain "github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/internal/order/usecase/command"
	"github.com/supplycore/fulfillment/kafka"
	"github.com/supplycore/fulfillment/pkg/database"
	"github.com/supplycore/fulfillment/pkg/logger"
	"github.com/supplycore/fulfillment/pkg/tracing"
)

// @title Fulfillment Service API
// @version 1.0
// @description Order fulfillment and inventory reservation engine
// @BasePath /
func main() {
	// Load .env if present (development convenience)
	_ = godotenv.Load()

	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "fulfillment-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting fulfillment service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "fulfillmentdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderLine{},
		&orderdomain.AuditEntry{},
		&orderdomain.Invoice{},
		&inventorydomain.InventoryRecord{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Redis cache for inventory reads (optional). Transitions mutate the
	// ledger inside their own transaction, so they carry an evictor to drop
	// stale availability entries after commit.
	var redisClient *redis.Client
	var ledgerCache command.LedgerCacheInvalidator
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unavailable, inventory cache disabled")
			redisClient = nil
		} else {
			logger.Logger.Info().Str("addr", redisAddr).Msg("Redis cache enabled")
			ledgerCache = inventoryrepo.NewLedgerCacheEvictor(redisClient)
		}
	}

	// Kafka publisher for status change events (optional)
	var publisher command.EventPublisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		kafkaPublisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, events disabled")
		} else {
			defer kafkaPublisher.Close()
			publisher = kafka.NewOrderEventPublisher(kafkaPublisher)
		}
	}

	// Catalog service client for price snapshots
	catalogURL := getEnv("CATALOG_SERVICE_URL", "http://localhost:8081")
	catalogClient := client.NewCatalogServiceClient(catalogURL)

	// Invoice configuration
	invoiceCfg := loadInvoiceConfig()

	// Initialize handlers with Wire DI
	orderHandler, err := order.InitializeHTTPHandler(db, catalogClient, publisher, ledgerCache, invoiceCfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize order handler")
	}

	inventoryHandler, err := inventory.InitializeHTTPHandler(db, redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize inventory handler")
	}

	logger.Logger.Info().
		Str("catalog_service", catalogURL).
		Str("tax_rate", invoiceCfg.TaxRate.String()).
		Int("due_days", invoiceCfg.DueDays).
		Msg("Fulfillment handlers initialized")

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8084")
	go startHTTPServer(orderHandler, inventoryHandler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(orderHandler *httpDelivery.OrderHandler, inventoryHandler *inventoryHTTP.InventoryHandler, db *sql.DB, port string) {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares
	middlewareConfig := httpDelivery.DefaultMiddlewareConfig()
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	orderHandler.RegisterRoutes(router)
	inventoryHandler.RegisterRoutes(router)

	// Health check endpoint
	inventoryHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	router.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAPISpec))
	}).Methods("GET")
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// CORS middleware
	corsHandler := httpDelivery.SetupCORS(middlewareConfig)

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("swagger_endpoint", "/swagger/").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, corsHandler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func loadInvoiceConfig() command.InvoiceConfig {
	cfg := command.DefaultInvoiceConfig()

	if v := getEnv("INVOICE_TAX_RATE", ""); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil || rate.IsNegative() {
			logger.Logger.Warn().Str("value", v).Msg("Invalid INVOICE_TAX_RATE, using default")
		} else {
			cfg.TaxRate = rate
		}
	}

	if v := getEnv("INVOICE_DUE_DAYS", ""); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			logger.Logger.Warn().Str("value", v).Msg("Invalid INVOICE_DUE_DAYS, using default")
		} else {
			cfg.DueDays = days
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
