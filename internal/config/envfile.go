package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// so that Kong's env bindings can see them. Variables already present in the
// environment are left untouched. A missing file is not an error.
//
// It must run before kong.Parse.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load env file %s: %w", path, err)
	}
	return nil
}

// EnvFilePath returns the .env path to load: ENV_FILE when set, else ".env"
// in the working directory.
func EnvFilePath(getenv func(string) string) string {
	if p := getenv("ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}
