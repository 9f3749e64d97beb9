package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
)

const demoPath = "../rustdoc/testdata/demo.json"

type fakeFetcher struct {
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, name, version string) ([]byte, error) {
	f.calls.Add(1)
	return os.ReadFile(demoPath)
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func invoke(handler toolHandler, args map[string]any) (string, bool, error) {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		return "", false, err
	}
	if len(res.Content) == 0 {
		return "", false, errors.New("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		return "", false, fmt.Errorf("unexpected content %T", res.Content[0])
	}
	return text.Text, res.IsError, nil
}

func call(t *testing.T, handler toolHandler, args map[string]any) (string, bool) {
	t.Helper()
	text, isErr, err := invoke(handler, args)
	if err != nil {
		t.Fatal(err)
	}
	return text, isErr
}

func newTestServer(t *testing.T) (*Server, *fakeFetcher) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	f := &fakeFetcher{}
	return NewServer(cfg, f), f
}

func TestRenderDocs(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	text, isErr := call(t, s.handleRenderDocs, map[string]any{"input": demoPath})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	var res renderResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "success" || res.Written != res.Pages || res.Pages == 0 {
		t.Errorf("result = %+v", res)
	}
	if res.OutputDir != filepath.Join(s.cfg.OutputDir, "demo") {
		t.Errorf("output dir = %s", res.OutputDir)
	}
	if _, err := os.Stat(filepath.Join(res.OutputDir, "demo", "index.html")); err != nil {
		t.Error(err)
	}
}

func TestRenderDocs_IncludePrivate(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	out := filepath.Join(t.TempDir(), "private")
	text, isErr := call(t, s.handleRenderDocs, map[string]any{
		"input":           demoPath,
		"output_dir":      out,
		"include_private": true,
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if _, err := os.Stat(filepath.Join(out, "demo", "fn.helper.html")); err != nil {
		t.Error(err)
	}
	if s.cfg.IncludePrivate {
		t.Error("tool arguments must not change the server config")
	}
}

func TestResolveItem(t *testing.T) {
	t.Parallel()

	s, fetcher := newTestServer(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, isErr, err := invoke(s.handleResolveItem, map[string]any{"crate": "demo", "version": "0.3.1", "path": "Point::new"})
			if err != nil {
				t.Error(err)
				return
			}
			if isErr {
				t.Errorf("tool error: %s", text)
				return
			}
			var res render.Resolution
			if err := json.Unmarshal([]byte(text), &res); err != nil {
				t.Error(err)
				return
			}
			if res.URL != "demo/struct.Point.html#method.new" {
				t.Errorf("url = %s", res.URL)
			}
		}()
	}
	wg.Wait()

	if n := fetcher.calls.Load(); n != 1 {
		t.Errorf("fetched %d times, want 1", n)
	}
}

func TestToolErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	tests := []struct {
		name    string
		handler toolHandler
		args    map[string]any
		want    string
	}{
		{"no source", s.handleRenderDocs, map[string]any{}, "one of input or crate is required"},
		{"missing file", s.handleRenderDocs, map[string]any{"input": "does-not-exist.json"}, "loading crate"},
		{"missing path", s.handleResolveItem, map[string]any{"input": demoPath}, "missing required parameter: path"},
		{"unknown item", s.handleResolveItem, map[string]any{"input": demoPath, "path": "Nope"}, "no documented item"},
	}
	for _, tt := range tests {
		text, isErr := call(t, tt.handler, tt.args)
		if !isErr || !strings.Contains(text, tt.want) {
			t.Errorf("%s: got %q (error %v), want %q", tt.name, text, isErr, tt.want)
		}
	}
}
