package v1

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/tinoosan/fetchr/internal/data"
	"github.com/tinoosan/fetchr/internal/mediatype"
	"github.com/tinoosan/fetchr/internal/metrics"
	"github.com/tinoosan/fetchr/internal/reqid"
	"github.com/tinoosan/fetchr/internal/service"
)

// DownloadHandler serves POST /download.
type DownloadHandler struct {
	l   *slog.Logger
	svc service.Download
}

type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
	err    error
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) SetErr(err error) {
	w.err = err
}

func (w *rwLogger) Status() int { return w.status }

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

type errorSetter interface {
	SetErr(error)
}

func markErr(w http.ResponseWriter, err error) {
	if es, ok := w.(errorSetter); ok {
		es.SetErr(err)
	}
}

type statusReporter interface {
	Status() int
}

// wroteHeader reports whether a status has already gone out on w. Writers
// that cannot tell are assumed untouched.
func wroteHeader(w http.ResponseWriter) bool {
	if sr, ok := w.(statusReporter); ok {
		return sr.Status() != 0
	}
	return false
}

// context keys
type ctxKeyDownload struct{}

func NewDownloadHandler(l *slog.Logger, svc service.Download) *DownloadHandler {
	if l == nil {
		l = slog.Default()
	}
	return &DownloadHandler{l: l, svc: svc}
}

// Download fetches the requested media and returns it as an attachment. The
// temporary artifact is released on every path once the handler returns.
func (dh *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyDownload{}).(*data.DownloadRequest)
	if !ok || req == nil {
		markErr(w, ErrDownloadCtx)
		writeError(w, http.StatusInternalServerError, data.ErrInternal.Error())
		return
	}

	res, err := dh.svc.Fetch(r.Context(), req.URL)
	if err != nil {
		var xerr *service.ExtractionError
		if errors.As(err, &xerr) {
			defer dh.release(r, xerr.TempPath)
		}
		metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeExtractionError).Inc()
		markErr(w, err)
		writeError(w, http.StatusInternalServerError, data.ErrInternal.Error())
		return
	}
	defer dh.release(r, res.TempPath)

	if !mediatype.Known(res.Extension) {
		reqid.Logger(r.Context(), dh.l).Debug("extension not in media table, serving as octet-stream", "ext", res.Extension)
	}
	h := w.Header()
	h.Set("Content-Type", mediatype.ContentType(res.Extension))
	h.Set("Content-Disposition", contentDisposition(res.Filename, res.Extension))
	h.Set("Content-Length", strconv.FormatInt(res.Size(), 10))
	w.WriteHeader(http.StatusOK)
	metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	if _, err := io.Copy(w, res.Content); err != nil {
		// Headers are out; all that is left is to record why the body stopped.
		markErr(w, err)
		reqid.Logger(r.Context(), dh.l).Warn("stream interrupted", "filename", res.Filename, "err", err)
	}
}

// release removes the artifact. Failures are logged by the service and never
// change the response.
func (dh *DownloadHandler) release(r *http.Request, path string) {
	_ = dh.svc.Release(r.Context(), path)
}

// contentDisposition renders an attachment header for name. Names that cannot
// be encoded fall back to a generic one with the same extension.
func contentDisposition(name, ext string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": data.DefaultTitle + "." + ext})
}
