package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/muurk/stylegen/internal/logging"
)

// Environment variables that override the settings file
const (
	EnvEndpoint  = "STYLEGEN_ENDPOINT"
	EnvLogLevel  = logging.LogLevelEnvVar
	EnvOutputDir = "STYLEGEN_OUTPUT_DIR"
)

// DotEnvFile is the optional file of environment overrides in the working directory
const DotEnvFile = ".env"

// LoadDotEnv loads variables from the given files (default: .env) into the
// process environment. Missing files are ignored and variables that are
// already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DotEnvFile}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s file: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings with any STYLEGEN_* variables that are set.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		s.Endpoint = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		s.OutputDir = v
	}
}
