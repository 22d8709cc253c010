package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/supplycore/fulfillment/kafka"
	"github.com/supplycore/fulfillment/pkg/logger"
	"github.com/supplycore/fulfillment/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "notifier-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting notifier service")

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

	// Create Kafka consumer
	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	groupID := getEnv("KAFKA_GROUP_ID", "notifier-service")
	topics := []string{kafka.TopicOrderStatusChanged}

	consumer, err := kafka.NewConsumer(brokers, groupID, topics)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeOrderStatusChanged, handleStatusChanged)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start consumer")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down notifier...")
}

// handleStatusChanged fans a transition out to the interested parties. The
// delivery channel is a structured log line for now; a mail or push gateway
// would hang off this handler.
func handleStatusChanged(ctx context.Context, event kafka.OrderStatusChangedEvent) error {
	recipients := []uint{event.BuyerID}
	// Sellers care about the moves that need action on their side
	switch event.CurrentStatus {
	case "pending", "cancelled":
		recipients = append(recipients, event.SellerID)
	}

	for _, userID := range recipients {
		logger.Info(ctx).
			Uint("user_id", userID).
			Uint("order_id", event.OrderID).
			Str("order_number", event.OrderNumber).
			Str("previous_status", event.PreviousStatus).
			Str("current_status", event.CurrentStatus).
			Str("actor", event.Actor).
			Time("occurred_at", event.OccurredAt).
			Msg("Order status notification")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
