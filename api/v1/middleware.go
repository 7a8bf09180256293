package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tinoosan/fetchr/internal/data"
	"github.com/tinoosan/fetchr/internal/metrics"
	"github.com/tinoosan/fetchr/internal/reqid"
)

// MiddlewareDownloadValidation decodes the download request and rejects it
// before any extraction when the URL is missing.
func MiddlewareDownloadValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &data.DownloadRequest{}
		err := decodeJSON(w, r, req, maxBodyBytes, "application/json")
		if errors.Is(err, ErrContentType) {
			metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeClientError).Inc()
			markErr(w, err)
			writeError(w, http.StatusUnsupportedMediaType, ErrContentType.Error())
			return
		}
		if err != nil {
			err = fmt.Errorf("%w: %v", data.ErrMissingURL, err)
		} else if strings.TrimSpace(req.URL) == "" {
			err = data.ErrMissingURL
		}
		if err != nil {
			metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeClientError).Inc()
			markErr(w, err)
			writeError(w, http.StatusBadRequest, data.ErrMissingURL.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyDownload{}, req)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recover turns a panic further down the chain into the generic 500 response.
func (dh *DownloadHandler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				err := fmt.Errorf("%w: %v", ErrPanic, v)
				reqid.Logger(r.Context(), dh.l).Error("panic", "err", err, "url", r.URL.Path)
				markErr(w, err)
				if !wroteHeader(w) {
					writeError(w, http.StatusInternalServerError, data.ErrInternal.Error())
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (dh *DownloadHandler) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rw := &rwLogger{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
		timeElapsed := time.Since(startTime)
		l := reqid.Logger(r.Context(), dh.l)
		if rw.err != nil {
			l.Error(rw.err.Error(),
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.status,
				"remote", r.RemoteAddr,
				"ua", r.UserAgent(),
				"dur_ms", timeElapsed.Milliseconds(),
				"bytes", rw.bytes)
			return
		}

		l.Info("", "method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"remote", r.RemoteAddr,
			"ua", r.UserAgent(),
			"dur_ms", timeElapsed.Milliseconds(),
			"bytes", rw.bytes)
	})
}
