package config

import (
	"log/slog"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docd/internal/logfields"
)

// envFiles are loaded in order before the configuration is expanded. Variables already in
// the process environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("Loaded environment file", logfields.File(f))
		}
	}
}
