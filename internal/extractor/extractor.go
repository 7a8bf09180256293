package extractor

import (
	"context"
	"errors"
)

// FormatBest selects the single best rendition that already carries both
// audio and video.
const FormatBest = "best"

// ErrNoOutput is returned when extraction finished but nothing was written to
// the requested output path.
var ErrNoOutput = errors.New("extractor produced no output")

// Options configures a single extraction.
type Options struct {
	// Format is a yt-dlp format selector; empty means FormatBest.
	Format string
	// NoPlaylist restricts a playlist URL to the single item it points at.
	NoPlaylist bool
	// Output is the exact file path the media is written to.
	Output string
}

// Metadata is what the extractor learned about the media it downloaded. Empty
// fields mean the extractor did not report them.
type Metadata struct {
	Title     string
	Extension string
}

// Extractor resolves a URL to a media file written at Options.Output.
type Extractor interface {
	Extract(ctx context.Context, url string, opts Options) (*Metadata, error)
}

// Pinger is implemented by extractors that can report whether their backing
// tool is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}
