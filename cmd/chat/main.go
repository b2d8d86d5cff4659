package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"codechat/internal/client"
	"codechat/internal/config"
	"codechat/internal/tui"
)

const maxLogFiles = 5

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	// Logs go to a file; stdout belongs to the TUI.
	logDir := filepath.Join(os.TempDir(), "codechat-logs")
	logFile, err := config.SetupLogFile(logDir, maxLogFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("chat client starting", "server_url", cfg.ServerURL)

	gateway := client.NewClient(cfg.ServerURL)
	model := tui.New(gateway, logger)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
