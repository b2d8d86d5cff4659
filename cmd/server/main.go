package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"codechat/internal/catalog"
	"codechat/internal/config"
	"codechat/internal/handler"
	"codechat/internal/middleware"
	"codechat/internal/service/relay"
	"codechat/internal/service/relay/providers/gemini"
	"codechat/internal/service/relay/providers/lorem"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.Provider,
	)

	// Model preference manifest (embedded YAML)
	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}

	// Select the upstream provider. The lorem provider streams generated
	// filler text for offline development.
	var provider relay.Provider
	switch cfg.Provider {
	case "lorem":
		provider = lorem.NewProvider()
		logger.Warn("MOCK MODE: lorem provider enabled, no upstream calls will be made")
	default:
		provider = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, logger)
	}

	manifest, err := registry.Manifest(provider.Name())
	if err != nil {
		log.Fatalf("No model manifest for provider %q: %v", provider.Name(), err)
	}

	relayService := relay.NewService(provider, manifest, config.ModelCacheTTL, logger)

	chatHandler := handler.NewChatHandler(relayService, logger)
	modelsHandler := handler.NewModelsHandler(relayService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", modelsHandler.HealthCheck)
	mux.HandleFunc("GET /api/models", modelsHandler.List)
	mux.HandleFunc("POST /api/chat", chatHandler.Completion)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Logging -> Routes
	var root http.Handler = mux
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived completion streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
