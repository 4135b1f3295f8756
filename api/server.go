// Package api provides the HTTP server for sharesrange.
//
// It serves the bound shares-outstanding page at /, the same data as JSON at
// /api/v1/shares, and health checks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/sharesrange/internal/config"
	"github.com/seenimoa/sharesrange/internal/display"
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 15 * time.Second

// SharesFetcher retrieves the shares-outstanding range for a CIK.
type SharesFetcher interface {
	FetchAndExtract(ctx context.Context, identifier string, cutoffYear int) (*models.ExtractionResult, error)
	Info() provider.ProviderInfo
}

// Server is the HTTP server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	fetcher SharesFetcher
	log     zerolog.Logger
	version string
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(cfg *config.Config, fetcher SharesFetcher, log zerolog.Logger, version string) *Server {
	srv := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log,
		version: version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.log))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Page
	r.Get("/", s.handlePage)

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		r.Get("/shares", s.handleShares)
	})

	return r
}

// requestLogger tags the request logger with the chi request id and logs
// one access line per request.
func requestLogger(next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http request")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			log := zerolog.Ctx(r.Context()).With().Str("req_id", id).Logger()
			r = r.WithContext(log.WithContext(r.Context()))
		}
		access.ServeHTTP(w, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SharesResponse is the data of GET /api/v1/shares.
type SharesResponse struct {
	Result *models.ExtractionResult  `json:"result,omitempty"`
	Slots  map[display.SlotID]string `json:"slots"`
	Title  string                    `json:"title,omitempty"`
	Kind   provider.Kind             `json:"kind,omitempty"` // failure kind
}

// sharesRequest holds the parsed query of a shares request.
type sharesRequest struct {
	CIK    string
	Cutoff int
}

// cutoffError reports an unparseable cutoff query parameter.
type cutoffError struct {
	Value string
}

func (e *cutoffError) Error() string {
	return fmt.Sprintf("cutoff %q is not a year.", e.Value)
}

// parseSharesRequest reads the CIK (parameter name matched
// case-insensitively) and optional cutoff from the query string, falling
// back to configured defaults.
func (s *Server) parseSharesRequest(r *http.Request) (sharesRequest, error) {
	req := sharesRequest{CIK: s.cfg.SEC.DefaultCIK, Cutoff: s.cfg.SEC.CutoffYear}

	q := r.URL.Query()
	if v := queryParam(q, "cik"); v != "" {
		req.CIK = v
	}
	if v := queryParam(q, "cutoff"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return req, &cutoffError{Value: v}
		}
		req.Cutoff = year
	}
	return req, nil
}

// queryParam returns the first non-empty value of name. The upper-case and
// lower-case spellings are tried first, then any other casing in sorted key
// order.
func queryParam(q url.Values, name string) string {
	for _, key := range []string{strings.ToUpper(name), strings.ToLower(name)} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	for _, key := range slices.Sorted(maps.Keys(q)) {
		if !strings.EqualFold(key, name) {
			continue
		}
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  s.version,
			"provider": s.fetcher.Info(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := display.NewDefaultPage()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load page")
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	result, err := s.fetch(r)
	if err != nil {
		status = statusFor(err)
		display.BindError(page, err)
	} else {
		display.Bind(page, result)
	}

	out, err := page.Render()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write page")
	}
}

func (s *Server) handleShares(w http.ResponseWriter, r *http.Request) {
	slots := display.NewSlots()

	result, err := s.fetch(r)
	if err != nil {
		display.BindError(slots, err)
		writeJSON(w, r, statusFor(err), APIResponse{
			Success: false,
			Error:   slots.Values[display.SlotErrorMessage],
			Data: SharesResponse{
				Slots: slots.Values,
				Kind:  provider.KindOf(err),
			},
		})
		return
	}

	display.Bind(slots, result)
	writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data: SharesResponse{
			Result: result,
			Slots:  slots.Values,
			Title:  slots.Title,
		},
	})
}

// fetch parses the request and runs one retrieval. Failures are logged here,
// at the request boundary.
func (s *Server) fetch(r *http.Request) (*models.ExtractionResult, error) {
	log := hlog.FromRequest(r)

	req, err := s.parseSharesRequest(r)
	if err != nil {
		log.Warn().Err(err).Msg("bad shares request")
		return nil, err
	}

	result, err := s.fetcher.FetchAndExtract(r.Context(), req.CIK, req.Cutoff)
	if err != nil {
		log.Error().Err(err).
			Str("cik", req.CIK).
			Int("cutoff", req.Cutoff).
			Str("kind", string(provider.KindOf(err))).
			Msg("shares outstanding retrieval failed")
		return nil, err
	}
	return result, nil
}

// statusFor maps a retrieval error to an HTTP status.
func statusFor(err error) int {
	var ce *cutoffError
	if errors.As(err, &ce) {
		return http.StatusBadRequest
	}
	return provider.HTTPStatus(err)
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write JSON response")
	}
}
