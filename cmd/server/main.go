package main

import (
	"log/slog"
	"os"

	"go-todo-api/internal/app"
	"go-todo-api/internal/logger"
)

func main() {
	// Replaced by app.New once LOG_LEVEL and LOG_FORMAT are loaded.
	slog.SetDefault(logger.New(os.Stdout, "info", "pretty"))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
