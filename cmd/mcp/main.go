// Command mcp serves image generation to MCP clients over stdio.
//
// Tools:
//
//	generate_image - generate one image from a prompt
//	list_models    - list the configured image models
//
// Configuration is read from the same environment variables as cmd/serve.
// Logs go to stderr; stdout carries the protocol.
//
// Configuration for Claude Desktop (~/Library/Application Support/Claude/claude_desktop_config.json):
//
//	{
//	    "mcpServers": {
//	        "mediagen": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/mediagen",
//	            "env": {"GEMINI_API_KEY": "..."}
//	        }
//	    }
//	}
package main

import (
	"log/slog"
	"os"

	"github.com/spetersoncode/mediagen/client"
	"github.com/spetersoncode/mediagen/internal/config"
	"github.com/spetersoncode/mediagen/mcp"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logger())

	registry, err := cfg.NewRegistry()
	if err != nil {
		slog.Error("failed to build model registry", "error", err)
		os.Exit(1)
	}

	events := make(chan client.Event, 100)
	go func() {
		for e := range events {
			if e.Type == client.EventRequestError {
				slog.Warn("generation failed", "request_id", e.RequestID, "model", e.Model, "error", e.Error)
			}
		}
	}()

	c := client.New(cfg.ClientConfig(registry, events))

	// Serve the tools over MCP stdio
	if err := mcp.ServeStdio(c, registry,
		mcp.WithName("mediagen"),
		mcp.WithVersion(version),
	); err != nil {
		slog.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
