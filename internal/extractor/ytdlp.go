package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// YTDLP extracts media by running yt-dlp through go-ytdlp.
type YTDLP struct {
	log *slog.Logger
}

// NewYTDLP returns a yt-dlp backed extractor.
func NewYTDLP(log *slog.Logger) *YTDLP {
	if log == nil {
		log = slog.Default()
	}
	return &YTDLP{log: log}
}

var (
	_ Extractor = (*YTDLP)(nil)
	_ Pinger    = (*YTDLP)(nil)
)

// Install downloads a yt-dlp binary into go-ytdlp's cache when none is
// available on PATH.
func (y *YTDLP) Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	return nil
}

// Ping runs `yt-dlp --version`.
func (y *YTDLP) Ping(ctx context.Context) error {
	if _, err := ytdlp.New().Version(ctx); err != nil {
		return fmt.Errorf("yt-dlp unavailable: %w", err)
	}
	return nil
}

func (y *YTDLP) Extract(ctx context.Context, url string, opts Options) (*Metadata, error) {
	if opts.Output == "" {
		return nil, errors.New("output path is required")
	}
	format := opts.Format
	if format == "" {
		format = FormatBest
	}

	cmd := ytdlp.New().
		Format(format).
		Output(opts.Output).
		ForceOverwrites().
		NoProgress().
		PrintJSON()
	if opts.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	if _, err := os.Stat(opts.Output); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoOutput, opts.Output)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		y.log.Debug("no info dict in yt-dlp output", "url", url, "err", err)
	}
	meta := metadataFrom(infos)
	y.log.Debug("extracted", "url", url, "title", meta.Title, "ext", meta.Extension, "output", opts.Output)
	return meta, nil
}

// metadataFrom reads title and extension from the last info dict yt-dlp
// printed. Missing dicts or fields leave the corresponding Metadata field empty.
func metadataFrom(infos []*ytdlp.ExtractedInfo) *Metadata {
	meta := &Metadata{}
	if len(infos) == 0 {
		return meta
	}
	info := infos[len(infos)-1]
	if info == nil {
		return meta
	}
	if info.Title != nil {
		meta.Title = *info.Title
	}
	meta.Extension = info.Extension
	return meta
}
