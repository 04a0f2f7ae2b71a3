package main

import (
	"context"
	"log/slog"
	"os"

	"relive-web/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .env はローカル開発用の任意ファイルです
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	if err := server.Run(context.Background()); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
