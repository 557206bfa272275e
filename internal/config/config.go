// internal/config/config.go

// Package config provides runtime configuration values for the bookstore.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, logging, tracing
// and the demo client.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	PurchaseRatePerSec float64
	PurchaseBurst      int
	ShutdownTimeout    time.Duration
	ServiceName        string
	OTLPEndpoint       string
	BookstoreURL       string
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func atoiEnv(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func floatEnv(key string, def float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

// Load collects configuration from the environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8081"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PurchaseRatePerSec: floatEnv("PURCHASE_RATE_PER_SEC", 50),
		PurchaseBurst:      atoiEnv("PURCHASE_BURST", 10),
		ShutdownTimeout:    time.Duration(atoiEnv("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "bookstore"),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		BookstoreURL:       getEnv("BOOKSTORE_URL", "http://localhost:8081"),
	}
}
