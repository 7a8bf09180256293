package extractor

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Static writes fixed content to the output path and reports fixed metadata.
// It stands in for yt-dlp in tests and local smoke runs.
type Static struct {
	Content []byte
	Meta    Metadata
	// Err, when set, is returned after Content has been written so callers can
	// exercise cleanup of a partially written artifact.
	Err     error

	mu    sync.Mutex
	calls int
	last  Options
}

// NewStatic returns a Static extractor.
func NewStatic(content []byte, title, ext string) *Static {
	return &Static{Content: content, Meta: Metadata{Title: title, Extension: ext}}
}

var (
	_ Extractor = (*Static)(nil)
	_ Pinger    = (*Static)(nil)
)

func (s *Static) Extract(ctx context.Context, url string, opts Options) (*Metadata, error) {
	s.mu.Lock()
	s.calls++
	s.last = opts
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Content != nil {
		if err := os.WriteFile(opts.Output, s.Content, 0o644); err != nil {
			return nil, fmt.Errorf("static: %w", err)
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	m := s.Meta
	return &m, nil
}

func (s *Static) Ping(ctx context.Context) error { return nil }

// Calls reports how many times Extract ran.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastOptions returns the options of the most recent Extract call.
func (s *Static) LastOptions() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
