package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnvForConfig loads .env from the config file's directory, then from
// the current directory. Variables already set in the environment are never
// overwritten, so the first file to define a variable wins.
func LoadDotEnvForConfig(configPath string) error {
	var paths []string
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(abs), ".env"))
		}
	}
	paths = append(paths, ".env")

	for _, path := range paths {
		if err := loadIfExists(path); err != nil {
			return err
		}
	}
	return nil
}

func loadIfExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	// .env files are optional; a broken one is logged, not fatal.
	if err := godotenv.Load(path); err != nil {
		slog.Debug("failed to load .env file", "path", path, "error", err)
		return nil
	}

	slog.Debug("loaded environment from .env", "path", path)
	return nil
}
