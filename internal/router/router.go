package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pedtrack/internal/telemetry"
)

// Handler registers its routes on the shared router.
type Handler interface {
	RegisterRoutes(router *mux.Router, logger *zap.Logger)
}

type requestIDKey struct{}

// Router wires handlers, middleware and the metrics endpoint into one
// http.Handler.
type Router struct {
	mux      *mux.Router
	limiter  *rate.Limiter
	logger   *zap.Logger
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func NewRouter(limiter *rate.Limiter, tel *telemetry.Telemetry, logger *zap.Logger, handlers []Handler) *Router {
	r := &Router{
		mux:     mux.NewRouter(),
		limiter: limiter,
		logger:  logger.Named("router"),
	}

	if tel != nil {
		var err error
		r.requests, err = tel.Meter.Int64Counter("http_requests_total",
			metric.WithDescription("Total HTTP requests served"))
		if err != nil {
			r.logger.Warn("failed to create request counter", zap.Error(err))
		}
		r.latency, err = tel.Meter.Float64Histogram("http_request_duration_seconds",
			metric.WithDescription("HTTP request latency in seconds"))
		if err != nil {
			r.logger.Warn("failed to create latency histogram", zap.Error(err))
		}
		r.mux.Handle("/metrics", tel.Handler()).Methods("GET")
	}

	r.mux.HandleFunc("/", r.handleRoot).Methods("GET")
	for _, h := range handlers {
		h.RegisterRoutes(r.mux, r.logger)
	}

	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Route not found"})
	})

	r.mux.Use(r.requestIDMiddleware, r.rateLimitMiddleware, r.observeMiddleware)
	return r
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "PED API is running"})
}

// requestIDMiddleware stamps every request with an id for log correlation.
func (r *Router) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(req.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (r *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Too many requests"})
			return
		}
		next.ServeHTTP(w, req)
	})
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		elapsed := time.Since(start)

		requestID, _ := req.Context().Value(requestIDKey{}).(string)
		r.logger.Info("request handled",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", requestID),
		)

		attrs := metric.WithAttributes(
			attribute.String("method", req.Method),
			attribute.Int("status", rec.status),
		)
		if r.requests != nil {
			r.requests.Add(req.Context(), 1, attrs)
		}
		if r.latency != nil {
			r.latency.Record(req.Context(), elapsed.Seconds(), attrs)
		}
	})
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// CreateServer builds an http.Server with sane timeouts for this router.
func (r *Router) CreateServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
