package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tinoosan/fetchr/internal/data"
	"github.com/tinoosan/fetchr/internal/extractor"
	"github.com/tinoosan/fetchr/internal/router"
	"github.com/tinoosan/fetchr/internal/scratch"
	"github.com/tinoosan/fetchr/internal/service"
)

func setup(t *testing.T, ext extractor.Extractor) (http.Handler, *scratch.Dir) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir, err := scratch.New(filepath.Join(t.TempDir(), "temp_downloads"))
	if err != nil {
		t.Fatalf("scratch: %v", err)
	}
	svc := service.NewDownload(logger, dir, ext, service.Options{})
	return router.New(logger, svc), dir
}

func post(h http.Handler, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func assertEmpty(t *testing.T, dir *scratch.Dir) {
	t.Helper()
	n, err := dir.Len()
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty temp dir, found %d artifacts", n)
	}
}

func assertErrorBody(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d got %d", status, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type got %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != msg {
		t.Fatalf("expected error %q got %q", msg, body["error"])
	}
}

func TestDownloadSuccess(t *testing.T) {
	ext := extractor.NewStatic([]byte("fake mp4 payload"), "My Video", "mp4")
	h, dir := setup(t, ext)

	rr := post(h, `{"url":"https://example.com/watch?v=abc"}`, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("content type: %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="My Video.mp4"` {
		t.Fatalf("content disposition: %q", got)
	}
	if got := rr.Header().Get("Content-Length"); got != "16" {
		t.Fatalf("content length: %q", got)
	}
	if rr.Body.String() != "fake mp4 payload" {
		t.Fatalf("body: %q", rr.Body.String())
	}

	opts := ext.LastOptions()
	if !opts.NoPlaylist || opts.Format != extractor.FormatBest {
		t.Fatalf("unexpected extractor options: %+v", opts)
	}
	assertEmpty(t, dir)
}

func TestDownloadWithoutMetadata(t *testing.T) {
	h, dir := setup(t, extractor.NewStatic([]byte("bytes"), "", ""))

	rr := post(h, `{"url":"https://example.com/file"}`, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("content type: %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); got != "attachment; filename=download.tmp" {
		t.Fatalf("content disposition: %q", got)
	}
	assertEmpty(t, dir)
}

func TestDownloadNonASCIITitle(t *testing.T) {
	h, _ := setup(t, extractor.NewStatic([]byte("x"), "Café", "webm"))

	rr := post(h, `{"url":"https://example.com/v"}`, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != "attachment; filename*=utf-8''Caf%C3%A9.webm" {
		t.Fatalf("content disposition: %q", got)
	}
	if got := rr.Header().Get("Content-Type"); got != "video/webm" {
		t.Fatalf("content type: %q", got)
	}
}

func TestDownloadMissingURL(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty url", `{"url":""}`},
		{"blank url", `{"url":"   "}`},
		{"null url", `{"url":null}`},
		{"malformed json", `{"url":`},
		{"empty body", ``},
		{"wrong type", `{"url":42}`},
		{"body too large", `{"url":"` + strings.Repeat("a", 1<<20) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := extractor.NewStatic([]byte("x"), "t", "mp4")
			h, dir := setup(t, ext)

			rr := post(h, tt.body, "application/json")
			assertErrorBody(t, rr, http.StatusBadRequest, "URL not provided")
			if ext.Calls() != 0 {
				t.Fatalf("extractor should not run, ran %d times", ext.Calls())
			}
			assertEmpty(t, dir)
		})
	}
}

func TestDownloadUnknownFieldsTolerated(t *testing.T) {
	h, _ := setup(t, extractor.NewStatic([]byte("x"), "t", "mp4"))
	rr := post(h, `{"url":"https://example.com/v","quality":"720p"}`, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rr.Code)
	}
}

func TestDownloadWrongContentType(t *testing.T) {
	ext := extractor.NewStatic([]byte("x"), "t", "mp4")
	h, dir := setup(t, ext)

	rr := post(h, `{"url":"https://example.com/v"}`, "text/plain")
	assertErrorBody(t, rr, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	if ext.Calls() != 0 {
		t.Fatalf("extractor should not run")
	}
	assertEmpty(t, dir)
}

func TestDownloadExtractionFailure(t *testing.T) {
	ext := &extractor.Static{Content: []byte("partial"), Err: errors.New("HTTP Error 404: secret detail")}
	h, dir := setup(t, ext)

	rr := post(h, `{"url":"https://unreachable.invalid/v"}`, "application/json")
	assertErrorBody(t, rr, http.StatusInternalServerError, "Internal Server Error")
	if bytes.Contains(rr.Body.Bytes(), []byte("secret")) {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
	assertEmpty(t, dir)
}

func TestDownloadFailureBeforeAnyFileWritten(t *testing.T) {
	ext := &extractor.Static{Err: errors.New("unsupported URL")}
	h, dir := setup(t, ext)

	rr := post(h, `{"url":"notaurl"}`, "application/json")
	assertErrorBody(t, rr, http.StatusInternalServerError, "Internal Server Error")
	assertEmpty(t, dir)
}

// panicExtractor writes the artifact and then panics.
type panicExtractor struct{}

func (panicExtractor) Extract(ctx context.Context, url string, opts extractor.Options) (*extractor.Metadata, error) {
	if err := os.WriteFile(opts.Output, []byte("half"), 0o644); err != nil {
		return nil, err
	}
	panic("extractor exploded")
}

func TestDownloadPanicIsNormalized(t *testing.T) {
	h, dir := setup(t, panicExtractor{})

	rr := post(h, `{"url":"https://example.com/v"}`, "application/json")
	assertErrorBody(t, rr, http.StatusInternalServerError, "Internal Server Error")
	assertEmpty(t, dir)
}

// failingRelease wraps the real service but reports every cleanup as failed.
type failingRelease struct {
	service.Download
	released []string
}

func (f *failingRelease) Release(ctx context.Context, path string) error {
	f.released = append(f.released, path)
	return &service.CleanupError{Path: path, Err: errors.New("permission denied")}
}

func TestCleanupFailureDoesNotAffectResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir, err := scratch.New(filepath.Join(t.TempDir(), "temp_downloads"))
	if err != nil {
		t.Fatalf("scratch: %v", err)
	}
	svc := &failingRelease{Download: service.NewDownload(logger, dir, extractor.NewStatic([]byte("ok"), "t", "mp3"), service.Options{})}
	h := router.New(logger, svc)

	rr := post(h, `{"url":"https://example.com/a"}`, "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("content type: %q", got)
	}
	if len(svc.released) != 1 {
		t.Fatalf("expected one release attempt, got %d", len(svc.released))
	}
}

func TestConcurrentDownloadsUseDistinctArtifacts(t *testing.T) {
	ext := extractor.NewStatic([]byte("payload"), "t", "mp4")
	h, dir := setup(t, ext)

	var wg sync.WaitGroup
	codes := make([]int, 16)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = post(h, `{"url":"https://example.com/v"}`, "application/json").Code
		}(i)
	}
	wg.Wait()

	for i, c := range codes {
		if c != http.StatusOK {
			t.Fatalf("request %d: status %d", i, c)
		}
	}
	if ext.Calls() != len(codes) {
		t.Fatalf("expected %d extractions got %d", len(codes), ext.Calls())
	}
	assertEmpty(t, dir)
}

func TestErrorBodyShape(t *testing.T) {
	var b bytes.Buffer
	_ = data.ErrorBody{Error: data.ErrInternal.Error()}.ToJSON(&b)
	if strings.TrimSpace(b.String()) != `{"error":"Internal Server Error"}` {
		t.Fatalf("unexpected body %s", b.String())
	}
}
