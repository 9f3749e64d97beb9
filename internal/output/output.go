// Package output writes the rendered site to disk.
package output

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed assets/theme.css
var themeCSS []byte

const (
	ThemeFile       = "theme.css"
	SyntaxFile      = "syntax.css"
	SearchIndexFile = "search-index.json"
)

// Writer writes files below a root directory. Writes to distinct paths
// are safe to run concurrently; nothing is rolled back on failure.
type Writer struct {
	root string
}

// New creates dir if needed and returns a Writer rooted there.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Path: dir, Err: err}
	}
	return &Writer{root: dir}, nil
}

// Root returns the output directory.
func (w *Writer) Root() string {
	return w.root
}

// WritePage writes data to relPath below the root, creating parent
// directories. relPath must stay inside the root.
func (w *Writer) WritePage(relPath string, data []byte) error {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &IOError{Path: relPath, Err: errors.New("path escapes output directory")}
	}
	full := filepath.Join(w.root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return &IOError{Path: relPath, Err: err}
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return &IOError{Path: relPath, Err: err}
	}
	return nil
}

// WriteAssets writes the theme stylesheet and the given syntax stylesheet
// to the root.
func (w *Writer) WriteAssets(syntaxCSS string) error {
	if err := w.WritePage(ThemeFile, themeCSS); err != nil {
		return err
	}
	return w.WritePage(SyntaxFile, []byte(syntaxCSS))
}

// SearchEntry is one item in search-index.json.
type SearchEntry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// WriteSearchIndex writes entries as search-index.json.
func (w *Writer) WriteSearchIndex(entries []SearchEntry) error {
	if entries == nil {
		entries = []SearchEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding search index: %w", err)
	}
	return w.WritePage(SearchIndexFile, data)
}
