// Package preview serves a rendered site over HTTP for local browsing.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type Server struct {
	dir        string
	addr       string
	httpServer *http.Server
	listener   net.Listener
}

func NewServer(dir, addr string) *Server {
	return &Server{dir: dir, addr: addr}
}

// Handler serves the output directory. Requests for "/" redirect to the
// crate directory when there is exactly one crate directory.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(filepath.Join(s.dir, "index.html")); err == nil {
			files.ServeHTTP(w, r)
			return
		}
		if crate := s.singleCrate(); crate != "" {
			http.Redirect(w, r, "/"+crate+"/", http.StatusFound)
			return
		}
		files.ServeHTTP(w, r)
	})
	mux.Handle("GET /", files)
	return logRequests(mux)
}

func (s *Server) singleCrate() string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return ""
	}
	var crate string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if crate != "" {
			return ""
		}
		crate = e.Name()
	}
	return crate
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Listen binds the address; Addr reports the bound address afterwards.
func (s *Server) Listen() error {
	if fi, err := os.Stat(s.dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("output directory %s does not exist; run render first", s.dir)
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	return nil
}

// Addr returns the listening address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Serve serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving docs", "dir", s.dir, "url", "http://"+s.Addr()+"/")
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
