package config

import (
	"os"
	"time"
)

// ModelCacheTTL bounds staleness of the process-wide model candidate cache.
const ModelCacheTTL = time.Hour

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Upstream configuration
	GeminiAPIKey string // read per request; absence is a clean 500, not a crash
	GeminiBaseURL string
	Provider     string // "gemini" (default) or "lorem" for offline dev

	// ServerURL is where the terminal client finds the gateway.
	ServerURL string

	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")

	return &Config{
		Port:          port,
		Environment:   env,
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Provider:      getEnv("PROVIDER", "gemini"),
		ServerURL:     getEnv("SERVER_URL", "http://localhost:"+port),
		Debug:         getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
