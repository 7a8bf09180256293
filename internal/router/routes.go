package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/tinoosan/fetchr/api/v1"
	"github.com/tinoosan/fetchr/internal/data"
	"github.com/tinoosan/fetchr/internal/service"
)

// Pinger reports whether the extraction backend is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New sets up the public routes: POST /download and nothing else.
func New(logger *slog.Logger, downloadSvc service.Download) *mux.Router {
	r := mux.NewRouter()
	downloadHandler := v1.NewDownloadHandler(logger, downloadSvc)

	r.Use(v1.RequestID)
	r.Use(downloadHandler.Log)
	r.Use(downloadHandler.Recover)

	post := r.Methods(http.MethodPost).Subrouter()
	post.HandleFunc("/download", downloadHandler.Download)
	post.Use(v1.MiddlewareDownloadValidation)

	r.NotFoundHandler = jsonError(http.StatusNotFound, "Not Found")
	r.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "Method Not Allowed")
	return r
}

// NewAdmin sets up the operational routes served on the admin listener.
func NewAdmin(logger *slog.Logger, pinger Pinger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write healthz response", "err", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				logger.Warn("readiness check failed", "err", err)
				http.Error(w, "extractor unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func jsonError(status int, msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = data.ErrorBody{Error: msg}.ToJSON(w)
	})
}
