package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackmichael/discuit-rss/internal/config"
	"github.com/blackmichael/discuit-rss/internal/domain"
	"github.com/blackmichael/discuit-rss/internal/metrics"
	"github.com/blackmichael/discuit-rss/internal/rss"
)

const (
	rssContentType  = "application/rss+xml"
	textContentType = "text/plain; charset=utf-8"
	requestIDHeader = "X-Request-ID"
)

// Server is the HTTP server that serves RSS feeds.
type Server struct {
	cfg         *config.Config
	feedService *domain.FeedService
	translator  *rss.Translator
	logger      *slog.Logger
	httpServer  *http.Server
}

// NewServer creates a new HTTP server with the given feed service.
func NewServer(cfg *config.Config, feedService *domain.FeedService, translator *rss.Translator, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		feedService: feedService,
		translator:  translator,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", s.handleFeed)
	mux.HandleFunc("GET /{scope}", s.handleFeed)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, withMetrics(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	scope, err := domain.ParseScope(r.PathValue("scope"))
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}

	query := r.URL.Query()
	sort, err := domain.ParseSort(query.Get("sort"))
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}

	limit := domain.DefaultLimit
	if l := query.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			s.logger.Warn("ignoring invalid limit parameter", "limit", l, "error", err)
		} else {
			limit = parsed
		}
	}
	limit = domain.ClampLimit(limit)

	req := domain.FeedRequest{Scope: scope, Sort: sort, Limit: limit}
	posts, err := s.feedService.Feed(r.Context(), req)
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}

	doc, err := s.translator.Build(posts, scope.Name())
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}
	metrics.FeedItemsRendered.WithLabelValues(scope.Kind.String()).Add(float64(len(posts)))

	s.logger.Info("feed served", "scope", scope.Name(), "sort", sort, "limit", limit, "items", len(posts))

	w.Header().Set("Content-Type", rssContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// writeFeedError forwards upstream responses verbatim and hides everything
// else behind a generic 500.
func (s *Server) writeFeedError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &upstream):
		s.logger.Warn("upstream error", "path", r.URL.Path, "status", upstream.StatusCode, "error", err)
		contentType := upstream.ContentType
		if contentType == "" {
			contentType = textContentType
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(upstream.StatusCode)
		_, _ = w.Write(upstream.Body)

	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn("feed not found", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))

	case errors.Is(err, domain.ErrInvalidSort), errors.Is(err, domain.ErrInvalidScope):
		s.logger.Warn("invalid feed request", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusBadRequest, err.Error())

	default:
		s.logger.Error("failed to build feed", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", textContentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", wrapped.status,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}

func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// Pattern is filled in by the mux; label by route, not by path, so
		// community names do not become label values.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
