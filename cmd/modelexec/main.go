// Command modelexec serves the model execution engine over MCP on stdio.
//
// Configuration comes from the environment (or a .env file):
//
//	MODELEXEC_BINARY        model runtime executable (default "ollama")
//	MODELEXEC_TELEMETRY_DB  optional SQLite path for telemetry records
//	MODELEXEC_TELEMETRY_LOG optional JSONL path for telemetry records
package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/modelexec/run"
	"github.com/jonwraymond/modelexec/server"
	"github.com/jonwraymond/modelexec/telemetry"
)

const version = "0.1.0"

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var recorders []telemetry.Recorder

	if cfg.TelemetryDB != "" {
		db, err := telemetry.OpenSQLite(cfg.TelemetryDB)
		if err != nil {
			log.Fatalf("open telemetry db: %v", err)
		}
		defer db.Close()
		recorders = append(recorders, db)
	}

	if cfg.TelemetryLog != "" {
		f, err := os.OpenFile(cfg.TelemetryLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open telemetry log: %v", err)
		}
		defer f.Close()
		recorders = append(recorders, telemetry.NewWriterRecorder(f))
	}

	recorder := telemetry.Nop()
	if len(recorders) > 0 {
		recorder = telemetry.Multi(recorders...)
	}

	runner := run.NewRunner(
		run.WithBinary(cfg.Binary),
		run.WithRecorder(recorder),
	)

	m := mcp.NewServer(&mcp.Implementation{Name: "modelexec", Version: version}, nil)
	server.New(runner).Register(m)

	if err := m.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
