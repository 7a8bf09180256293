package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinoosan/fetchr/internal/config"
	"github.com/tinoosan/fetchr/internal/extractor"
	"github.com/tinoosan/fetchr/internal/logging"
	"github.com/tinoosan/fetchr/internal/metrics"
	"github.com/tinoosan/fetchr/internal/router"
	"github.com/tinoosan/fetchr/internal/scratch"
	"github.com/tinoosan/fetchr/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	l, logCloser := logging.New(cfg.Log)
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(l)

	dir, err := scratch.New(cfg.TempDir)
	if err != nil {
		l.Error("prepare temp dir", "dir", cfg.TempDir, "err", err)
		os.Exit(1)
	}
	if cfg.SweepOnStart {
		n, err := dir.Sweep(0)
		if err != nil {
			l.Warn("sweep temp dir", "dir", dir.Root(), "err", err)
		}
		if n > 0 {
			l.Info("removed leftover artifacts", "dir", dir.Root(), "count", n)
		}
	}

	ext, err := newExtractor(l, cfg)
	if err != nil {
		l.Error("init extractor", "extractor", cfg.Extractor, "err", err)
		os.Exit(1)
	}

	metrics.Register()
	svc := service.NewDownload(l, dir, ext, service.Options{
		Format:  cfg.Format,
		Timeout: cfg.ExtractTimeout,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.New(l, svc),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	servers := []*http.Server{server}

	if cfg.AdminAddr != "" {
		var pinger router.Pinger
		if p, ok := ext.(extractor.Pinger); ok {
			pinger = p
		}
		servers = append(servers, &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           router.NewAdmin(l, pinger),
			ReadHeaderTimeout: cfg.ReadTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			l.Info("listening", "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(s)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		l.Info("received terminate, graceful shutdown", "signal", sig.String())
	case err := <-errCh:
		l.Error("server error", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			l.Error("shutdown", "addr", s.Addr, "err", err)
		}
	}
}

func newExtractor(l *slog.Logger, cfg *config.Config) (extractor.Extractor, error) {
	switch cfg.Extractor {
	case config.ExtractorStatic:
		l.Warn("using static extractor, responses are canned")
		return extractor.NewStatic([]byte("fetchr static payload\n"), "fetchr", "txt"), nil
	default:
		y := extractor.NewYTDLP(l)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if cfg.YTDLPAutoInstall {
			if err := y.Install(ctx); err != nil {
				return nil, err
			}
		}
		if err := y.Ping(ctx); err != nil {
			l.Warn("yt-dlp not ready, downloads will fail until it is installed", "err", err)
		}
		return y, nil
	}
}
