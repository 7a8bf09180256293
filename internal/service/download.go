package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tinoosan/fetchr/internal/data"
	"github.com/tinoosan/fetchr/internal/extractor"
	"github.com/tinoosan/fetchr/internal/metrics"
	"github.com/tinoosan/fetchr/internal/reqid"
	"github.com/tinoosan/fetchr/internal/scratch"
)

// Download fetches media for a URL into memory and releases the on-disk
// artifact afterwards.
type Download interface {
	Fetch(ctx context.Context, url string) (*data.Result, error)
	Release(ctx context.Context, path string) error
}

// Options tunes how the extractor is driven.
type Options struct {
	// Format is passed to the extractor; empty means extractor.FormatBest.
	Format string
	// Timeout bounds a single extraction. Zero means no limit beyond the
	// request context.
	Timeout time.Duration
}

type download struct {
	log  *slog.Logger
	dir  *scratch.Dir
	ext  extractor.Extractor
	opts Options
}

// NewDownload returns the download orchestrator. dir is where artifacts are
// written; it is created by the caller at startup and shared by all requests.
func NewDownload(log *slog.Logger, dir *scratch.Dir, ext extractor.Extractor, opts Options) Download {
	if log == nil {
		log = slog.Default()
	}
	if opts.Format == "" {
		opts.Format = extractor.FormatBest
	}
	return &download{log: log, dir: dir, ext: ext, opts: opts}
}

func (ds *download) Fetch(ctx context.Context, url string) (*data.Result, error) {
	log := reqid.Logger(ctx, ds.log)
	path := ds.dir.NewPath()

	if ds.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ds.opts.Timeout)
		defer cancel()
	}

	// A panic never returns the path to the caller; remove it before re-panicking.
	defer func() {
		if v := recover(); v != nil {
			if err := ds.dir.Remove(path); err != nil {
				metrics.CleanupFailures.Inc()
				log.Warn("cleanup after panic failed", "temp_path", path, "err", err)
			}
			panic(v)
		}
	}()

	start := time.Now()
	meta, err := ds.extract(ctx, url, path)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, ds.fail(log, url, path, err)
	}
	if meta == nil {
		meta = &extractor.Metadata{}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ds.fail(log, url, path, fmt.Errorf("read artifact: %w", err))
	}

	res := data.NewResult(content, meta.Title, meta.Extension, path)
	metrics.DownloadBytes.Add(float64(res.Size()))
	log.Info("download extracted",
		"url", url,
		"title", meta.Title,
		"ext", meta.Extension,
		"filename", res.Filename,
		"bytes", res.Size(),
		"dur_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (ds *download) extract(ctx context.Context, url, path string) (*extractor.Metadata, error) {
	metrics.InflightDownloads.Inc()
	defer metrics.InflightDownloads.Dec()
	return ds.ext.Extract(ctx, url, extractor.Options{
		Format:     ds.opts.Format,
		NoPlaylist: true,
		Output:     path,
	})
}

func (ds *download) fail(log *slog.Logger, url, path string, err error) error {
	log.Error("download failed", "url", url, "temp_path", path, "err", err)
	return &ExtractionError{URL: url, TempPath: path, Err: err}
}

// Release removes the artifact at path. A path that was never written is not
// an error.
func (ds *download) Release(ctx context.Context, path string) error {
	if err := ds.dir.Remove(path); err != nil {
		metrics.CleanupFailures.Inc()
		reqid.Logger(ctx, ds.log).Warn("cleanup failed", "temp_path", path, "err", err)
		return &CleanupError{Path: path, Err: err}
	}
	return nil
}
