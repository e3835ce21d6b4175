//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/storage"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

var (
	port           int
	dbPath         string
	allowedOrigins string
	logLevel       string
)

func init() {
	flag.IntVar(&port, "port", getEnvIntOrDefault("EKGLAB_PORT", 8080), "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("EKGLAB_DB_PATH", storage.DefaultDBFile), "Path to SQLite database")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.StringVar(&logLevel, "log-level", getEnvOrDefault("EKGLAB_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	flag.Parse()

	level, ok := logger.ParseLevel(logLevel)
	if !ok {
		log.Fatalf("Unknown log level %q", logLevel)
	}
	logger.SetLevel(level)

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := ekglab.NewService(
		ekglab.WithDBPath(dbPath),
		ekglab.WithLogger(logger.GetLogger().WithPrefix("ekglab")),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
