// Package httpapi serves sorting and import selection over HTTP/JSON.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
)

// Router wires the handlers to a chi router.
type Router struct {
	source     metadata.Snapshotter
	recorder   *metrics.Recorder
	gatherer   prometheus.Gatherer
	logger     logr.Logger
	defaultEnv condition.Environment
}

// NewRouter creates a router over source. Each request works on one snapshot of
// it. A nil gatherer disables /metrics.
func NewRouter(source metadata.Snapshotter, recorder *metrics.Recorder, gatherer prometheus.Gatherer, logger logr.Logger) *Router {
	return &Router{
		source:   source,
		recorder: recorder,
		gatherer: gatherer,
		logger:   logger,
	}
}

// WithDefaultEnvironment sets the environment used by select requests that do
// not carry one.
func (rt *Router) WithDefaultEnvironment(env condition.Environment) *Router {
	rt.defaultEnv = env
	return rt
}

func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if rt.gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	h := &handler{source: rt.source, recorder: rt.recorder, defaultEnv: rt.defaultEnv}
	router.Route("/v1", func(r chi.Router) {
		r.Post("/sort", h.sort)
		r.Post("/select", h.selectImports)
	})
	return router
}

// requestLogger logs one line per request and puts a request-scoped logger in
// the context.
func requestLogger(logger logr.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.WithValues("requestID", chimiddleware.GetReqID(r.Context()))
			r = r.WithContext(log.IntoContext(r.Context(), reqLogger))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			reqLogger.V(1).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remoteAddr", r.RemoteAddr,
			)
		})
	}
}
