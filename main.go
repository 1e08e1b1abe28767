package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clickmate/config"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	configPath, _ := config.ConfigPath()
	slog.Info("Configuration loaded", "path", configPath)

	// Create agent
	agent, err := NewAgent(cfg)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Quit from the tray menu shuts down the same way a signal does
	go func() {
		select {
		case <-agent.Tray().WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run agent; the tray owns the main goroutine
	go func() {
		if err := agent.Run(ctx); err != nil {
			slog.Error("Agent error", "error", err)
		}
		agent.Tray().Stop()
	}()

	agent.Tray().Run()

	slog.Info("ClickMate stopped")
}
