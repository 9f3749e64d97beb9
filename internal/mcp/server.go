// Package mcp exposes rendering and item resolution as MCP tools.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/fetch"
	"github.com/jcdickinson/ferrisdoc/internal/render"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/singleflight"
)

//go:embed instructions.md
var instructions string

// Fetcher downloads rustdoc JSON for a crate version.
type Fetcher interface {
	Fetch(ctx context.Context, name, version string) ([]byte, error)
}

type Server struct {
	mcpServer *server.MCPServer
	cfg       *config.Config
	fetcher   Fetcher

	crateMu   sync.RWMutex
	crates    map[string]*rustdoc.Crate
	loadGroup singleflight.Group
}

func NewServer(cfg *config.Config, fetcher Fetcher) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		crates:  make(map[string]*rustdoc.Crate),
	}

	mcpServer := server.NewMCPServer(
		"ferrisdoc",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.mcpServer = mcpServer
	return s
}

func crateArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("input",
			mcp.Description("Path to a local rustdoc JSON file (.json or .json.zst)"),
		),
		mcp.WithString("crate",
			mcp.Description("Crate name to download from docs.rs when no input is given"),
		),
		mcp.WithString("version",
			mcp.Description("Crate version (default \"latest\")"),
		),
	}
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	renderOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Render a crate's rustdoc JSON to a static HTML site. Returns the render summary."),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: configured output_dir/<crate>)"),
		),
		mcp.WithBoolean("include_private",
			mcp.Description("Also document private items"),
		),
	}, crateArgs()...)
	mcpServer.AddTool(mcp.NewTool("render_docs", renderOpts...), s.handleRenderDocs)

	resolveOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Find the documentation page for a Rust item path, e.g. \"Point::new\" or \"struct@Point\"."),
		mcp.WithString("path",
			mcp.Description("Item path, optionally with a rustdoc disambiguator"),
			mcp.Required(),
		),
	}, crateArgs()...)
	mcpServer.AddTool(mcp.NewTool("resolve_item", resolveOpts...), s.handleResolveItem)
}

// loadCrate returns the crate named by the tool arguments, loading it at
// most once per key even under concurrent calls.
func (s *Server) loadCrate(ctx context.Context, args map[string]any) (*rustdoc.Crate, error) {
	input, _ := args["input"].(string)
	name, _ := args["crate"].(string)
	version, _ := args["version"].(string)
	if input == "" && name == "" {
		return nil, fmt.Errorf("one of input or crate is required")
	}
	if version == "" {
		version = "latest"
	}

	key := "file:" + input
	if input == "" {
		key = name + "@" + version
	}

	s.crateMu.RLock()
	crate, ok := s.crates[key]
	s.crateMu.RUnlock()
	if ok {
		return crate, nil
	}

	v, err, _ := s.loadGroup.Do(key, func() (any, error) {
		s.crateMu.RLock()
		crate, ok := s.crates[key]
		s.crateMu.RUnlock()
		if ok {
			return crate, nil
		}

		var err error
		if input != "" {
			crate, err = rustdoc.LoadFile(input)
		} else {
			var data []byte
			data, err = s.fetcher.Fetch(ctx, name, version)
			if err == nil {
				crate, err = rustdoc.Load(data)
			}
		}
		if err != nil {
			return nil, err
		}
		s.crateMu.Lock()
		s.crates[key] = crate
		s.crateMu.Unlock()
		return crate, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rustdoc.Crate), nil
}

type renderResult struct {
	Status    string   `json:"status"`
	OutputDir string   `json:"output_dir"`
	Pages     int      `json:"pages"`
	Written   int      `json:"written"`
	Skipped   int      `json:"skipped,omitempty"`
	Failures  []string `json:"failures,omitempty"`
}

func (s *Server) handleRenderDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	crate, err := s.loadCrate(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading crate: %v", err)), nil
	}

	cfg := *s.cfg
	if dir, _ := args["output_dir"].(string); dir != "" {
		cfg.OutputDir = dir
	} else {
		cfg.OutputDir = filepath.Join(s.cfg.OutputDir, crate.Name())
	}
	if private, ok := args["include_private"].(bool); ok {
		cfg.IncludePrivate = private
	}

	summary, err := render.Generate(ctx, crate, &cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}

	result := renderResult{
		Status:    summary.Status().String(),
		OutputDir: cfg.OutputDir,
		Pages:     summary.Pages,
		Written:   summary.Written,
		Skipped:   summary.Skipped,
	}
	for _, f := range summary.Failures {
		result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", f.File, f.Err))
	}
	resultJSON, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleResolveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	crate, err := s.loadCrate(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading crate: %v", err)), nil
	}
	rc, err := render.NewContext(crate, s.cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing crate: %v", err)), nil
	}

	res, ok := rc.Resolve(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no documented item matches %q", path)), nil
	}
	resultJSON, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

var _ Fetcher = (*fetch.Client)(nil)
