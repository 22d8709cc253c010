package config

import (
	"os"
	"strings"
	"time"
)

// ServiceConfig holds configuration for a backend service
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port     string
	Services map[string]ServiceConfig
}

// LoadConfig loads the gateway configuration. Multiple instances of a
// service can be listed comma-separated in <NAME>_SERVICE_URL.
func LoadConfig() *GatewayConfig {
	fulfillmentURLs := splitURLs(getEnv("FULFILLMENT_SERVICE_URL", "http://localhost:8084"))
	catalogURLs := splitURLs(getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"))

	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Services: map[string]ServiceConfig{
			"fulfillment": {
				Name:        "fulfillment-service",
				BaseURL:     fulfillmentURLs[0],
				Instances:   fulfillmentURLs,
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"catalog": {
				Name:        "catalog-service",
				BaseURL:     catalogURLs[0],
				Instances:   catalogURLs,
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

func splitURLs(raw string) []string {
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
