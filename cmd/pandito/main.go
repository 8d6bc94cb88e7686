package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/pandito-bot/pandito/common/environment"
	"github.com/pandito-bot/pandito/common/version"
	"github.com/pandito-bot/pandito/internal/pandito/app"
	"github.com/pandito-bot/pandito/internal/pandito/matrix"
)

func main() {
	fmt.Printf("Pandito — guía turístico de Mendoza\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	// A local .env is a convenience for development; in production the
	// variables come from the service manager.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	config := loadConfig()

	for name, value := range map[string]string{
		"MATRIX_HOMESERVER":   config.Matrix.Homeserver,
		"MATRIX_USER_ID":      config.Matrix.UserID,
		"MATRIX_ACCESS_TOKEN": config.Matrix.AccessToken,
	} {
		if value == "" {
			fmt.Fprintf(os.Stderr, "Error: %s is required\n", name)
			os.Exit(1)
		}
	}
	if len(config.Matrix.Rooms) == 0 {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_ROOMS is required\n")
		os.Exit(1)
	}

	ctx := context.Background()
	pandito, err := app.New(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize Pandito: %v\n", err)
		os.Exit(1)
	}

	if err := pandito.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error running Pandito: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the application configuration from the environment.
func loadConfig() app.Config {
	return app.Config{
		DatabasePath:  environment.StringOr("DATABASE_PATH", "./pandito.db"),
		PlacesFile:    environment.StringOr("PLACES_FILE", "./lugares.json"),
		WeatherAPIKey: environment.StringOr("WEATHER_API_KEY", ""),
		GeminiAPIKey:  environment.StringOr("GEMINI_API_KEY", ""),
		GeminiModel:   environment.StringOr("GEMINI_MODEL", ""),
		Matrix: matrix.Config{
			Homeserver:  environment.StringOr("MATRIX_HOMESERVER", ""),
			UserID:      environment.StringOr("MATRIX_USER_ID", ""),
			AccessToken: environment.StringOr("MATRIX_ACCESS_TOKEN", ""),
			Rooms:       environment.StringSliceOr("MATRIX_ROOMS", nil),
		},
	}
}
