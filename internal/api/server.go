// Package api is the HTTP boundary: /news/list, /news/detail plus the
// health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsgate/internal/extract"
	"github.com/deusflow/newsgate/internal/metrics"
	"github.com/deusflow/newsgate/internal/news"
	"github.com/deusflow/newsgate/internal/provider"
	"github.com/deusflow/newsgate/internal/region"
)

// Config contains server configuration.
type Config struct {
	Addr           string
	DefaultKeyword string
	CORSEnabled    bool
}

// Server wires the aggregator and the extractor behind an http.ServeMux.
type Server struct {
	aggregator     *news.Aggregator
	extractor      *extract.Extractor
	metrics        *metrics.Metrics
	log            *slog.Logger
	addr           string
	defaultKeyword string
	corsEnabled    bool
	mux            *http.ServeMux
	server         *http.Server
}

// New creates the API server.
func New(cfg Config, aggregator *news.Aggregator, extractor *extract.Extractor, m *metrics.Metrics, log *slog.Logger) *Server {
	s := &Server{
		aggregator:     aggregator,
		extractor:      extractor,
		metrics:        m,
		log:            log,
		addr:           cfg.Addr,
		defaultKeyword: cfg.DefaultKeyword,
		corsEnabled:    cfg.CORSEnabled,
		mux:            http.NewServeMux(),
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.middleware(s.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/news/list", s.handleList)
	s.mux.HandleFunc("/news/detail", s.handleDetail)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("starting API server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// middleware applies CORS headers and request logging to all routes.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		start := time.Now()
		next.ServeHTTP(w, r)
		if r.URL.Path != "/health" {
			s.log.Info("request completed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}
	})
}

// handleList serves GET /news/list: aggregate one provider's results for a
// keyword and region, sampled down for display.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.IncrementListRequests()

	q := r.URL.Query()
	// tag carries the keyword; q is accepted for older clients.
	keyword := strings.TrimSpace(q.Get("tag"))
	if keyword == "" {
		keyword = strings.TrimSpace(q.Get("q"))
	}
	if keyword == "" {
		keyword = s.defaultKeyword
	}
	reg := region.Normalize(q.Get("region"))
	source := strings.TrimSpace(q.Get("source"))

	start := time.Now()
	envelope, err := s.aggregator.Aggregate(r.Context(), keyword, source, reg)
	if err != nil {
		var upstream *provider.UpstreamError
		if errors.As(err, &upstream) {
			s.log.Error("provider fetch failed", "provider", upstream.Provider, "keyword", keyword, "error", upstream.Err)
		} else {
			s.log.Error("aggregation failed", "keyword", keyword, "error", err)
		}
		s.metrics.IncrementUpstreamFailures()
		s.metrics.SetError(err.Error())
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.RecordFetchTime(time.Since(start))
	s.metrics.AddArticlesReturned(len(envelope.List))
	respondJSON(w, http.StatusOK, envelope)
}

// handleDetail serves GET /news/detail: fetch one article URL and return its
// readable text.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.IncrementDetailRequests()

	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		respondError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	content, err := s.extractor.Extract(r.Context(), rawURL)
	if err != nil {
		s.log.Error("content extraction failed", "url", rawURL, "error", err)
		s.metrics.IncrementExtractFailures()
		if errors.Is(err, extract.ErrInvalidURL) || errors.Is(err, extract.ErrBlockedHost) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, content)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := "ok"
	code := http.StatusOK
	if !s.metrics.Healthy() {
		status = "error"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.GetStats())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers already went out; nothing left to do but note it.
		slog.Default().Error("encoding response failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
