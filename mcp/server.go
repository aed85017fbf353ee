// Package mcp exposes image generation as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/client"
)

// Tool names.
const (
	ToolGenerateImage = "generate_image"
	ToolListModels    = "list_models"
)

// Generator produces one image per request. *client.Client implements it.
type Generator interface {
	GenerateImage(ctx context.Context, req mediagen.GenerationRequest, opts ...client.GenerateOption) (string, error)
}

// Catalog lists the models a caller may pick. *model.Registry implements it.
type Catalog interface {
	Models() []*mediagen.ResolvedModel
	Model(id string) (*mediagen.ResolvedModel, bool)
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

var ratioValues = []string{
	mediagen.AspectRatio16x9.String(), mediagen.AspectRatio9x16.String(), mediagen.AspectRatio1x1.String(),
	mediagen.AspectRatio4x3.String(), mediagen.AspectRatio3x4.String(), mediagen.AspectRatio21x9.String(),
}

// NewServer creates an MCP server with the generate_image tool and, when
// catalog is non-nil, the list_models tool.
//
// Example:
//
//	s := mcp.NewServer(c, reg, mcp.WithName("storyboard-images"))
//	server.ServeStdio(s)
func NewServer(gen Generator, catalog Catalog, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "mediagen-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(mcp.NewTool(ToolGenerateImage,
		mcp.WithDescription("Generate one image from a text prompt, optionally keeping scenes and characters consistent with reference images."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Description of the image to generate")),
		mcp.WithString("aspect_ratio", mcp.Enum(ratioValues...), mcp.Description("Width:height ratio, default 16:9")),
		mcp.WithArray("reference_images",
			mcp.Description("Data URIs; the first is the scene reference, the rest are character references"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("model", mcp.Description("Model identifier; the active model is used when omitted")),
	), generateImageHandler(gen, catalog))

	if catalog != nil {
		s.AddTool(mcp.NewTool(ToolListModels,
			mcp.WithDescription("List the available image models and their supported aspect ratios."),
		), listModelsHandler(catalog))
	}

	return s
}

// generateImageHandler returns the image as MCP image content. Failures
// are reported as tool errors, not protocol errors.
func generateImageHandler(gen Generator, catalog Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		genReq := mediagen.NewGenerationRequest(prompt,
			mediagen.WithReferenceImages(req.GetStringSlice("reference_images", nil)...),
			mediagen.WithAspectRatio(mediagen.AspectRatio(req.GetString("aspect_ratio", ""))),
		)

		var opts []client.GenerateOption
		if id := req.GetString("model", ""); id != "" {
			if catalog == nil {
				return mcp.NewToolResultError("model selection is not available"), nil
			}
			m, ok := catalog.Model(id)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown model %q", id)), nil
			}
			opts = append(opts, client.WithModel(m))
		}

		uri, err := gen.GenerateImage(ctx, genReq, opts...)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		parsed, err := mediagen.ParseDataURI(uri)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultImage("Generated image for: "+prompt, parsed.Data, parsed.MIMEType), nil
	}
}

// modelInfo is the list_models entry.
type modelInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	API          string   `json:"api"`
	AspectRatios []string `json:"aspect_ratios"`
}

func listModelsHandler(catalog Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		models := catalog.Models()
		infos := make([]modelInfo, 0, len(models))
		for _, m := range models {
			ratios := make([]string, len(m.SupportedAspectRatios))
			for i, r := range m.SupportedAspectRatios {
				ratios[i] = r.String()
			}
			infos = append(infos, modelInfo{ID: m.ID, Name: m.Name, API: m.APIOrDefault().String(), AspectRatios: ratios})
		}

		data, err := json.Marshal(infos)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode models: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(gen Generator, catalog Catalog, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(gen, catalog, opts...))
}
