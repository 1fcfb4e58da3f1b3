package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings of the server binary.
// Execution limits (prompt length, timeout defaults, concurrency ceiling)
// are fixed constants of the engine, not configuration.
type Config struct {
	// Binary is the model runtime executable.
	Binary string `env:"MODELEXEC_BINARY" envDefault:"ollama"`

	// TelemetryDB, if set, persists telemetry records to a SQLite
	// database at this path.
	TelemetryDB string `env:"MODELEXEC_TELEMETRY_DB"`

	// TelemetryLog, if set, appends telemetry records as JSON lines to
	// this file.
	TelemetryLog string `env:"MODELEXEC_TELEMETRY_LOG"`
}

// LoadConfig reads Config from the environment, consulting a .env file in
// the working directory when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("server: parse environment: %w", err)
	}
	return cfg, nil
}
