package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// PageWriter stores rendered pages. Implementations must accept
// concurrent calls for distinct paths.
type PageWriter interface {
	WritePage(relPath string, html []byte) error
}

// Status summarizes how a render went.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartial
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	default:
		return "failure"
	}
}

// PageFailure records a page that could not be rendered or written.
type PageFailure struct {
	File string
	Err  error
}

// Summary reports the outcome of rendering every page.
type Summary struct {
	Pages    int
	Written  int
	Skipped  int
	Failures []PageFailure
}

// Status reports success when every page was written, failure when none
// was, and partial otherwise.
func (s *Summary) Status() Status {
	switch {
	case len(s.Failures) == 0 && s.Skipped == 0:
		return StatusSuccess
	case s.Written == 0:
		return StatusFailure
	default:
		return StatusPartial
	}
}

// Err joins every page failure, or returns nil.
func (s *Summary) Err() error {
	errs := make([]error, 0, len(s.Failures))
	for _, f := range s.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.File, f.Err))
	}
	return errors.Join(errs...)
}

type pageResult struct {
	done bool
	err  error
}

// RenderPages renders every page on a bounded worker pool and hands each
// result to w. A failing page does not stop the others. Cancelling ctx
// stops scheduling new pages; the returned error is then ctx.Err().
func (c *Context) RenderPages(ctx context.Context, w PageWriter) (*Summary, error) {
	pages := c.pages
	results := make([]pageResult, len(pages))

	var g errgroup.Group
	g.SetLimit(c.Config.Workers())

	for i := range pages {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = pageResult{done: true, err: c.renderOne(pages[i], w)}
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{Pages: len(pages)}
	for i, res := range results {
		switch {
		case !res.done:
			summary.Skipped++
		case res.err != nil:
			summary.Failures = append(summary.Failures, PageFailure{File: pages[i].File, Err: res.err})
		default:
			summary.Written++
		}
	}
	return summary, ctx.Err()
}

func (c *Context) renderOne(p Page, w PageWriter) error {
	html, err := c.RenderPage(p)
	if err != nil {
		slog.Warn("rendering page failed", "file", p.File, "error", err)
		return err
	}
	if err := w.WritePage(p.File, []byte(html)); err != nil {
		slog.Warn("writing page failed", "file", p.File, "error", err)
		return err
	}
	slog.Debug("wrote page", "file", p.File)
	return nil
}
