package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/client"
	"github.com/Sternrassler/vaultre-client/pkg/listing"
	"github.com/Sternrassler/vaultre-client/pkg/metrics"
)

// bypassParam forces a live upstream fetch when present in the query string.
const bypassParam = "nocache"

type listFunc func(ctx context.Context, params listing.Params) ([]*listing.Property, error)
type getFunc func(ctx context.Context, id string) (*listing.Property, error)

type server struct {
	repo   *listing.Repository
	ping   func(ctx context.Context) error
	logger zerolog.Logger
}

type listResponse struct {
	Items      []listing.View `json:"items"`
	DetailKeys []string       `json:"detailKeys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// newRouter wires the listing endpoints, health and metrics.
func newRouter(s *server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/properties", func(r chi.Router) {
		r.Use(bypassFromQuery)

		r.Get("/residential/sale", s.handleList(s.repo.Residential))
		r.Get("/residential/sale/{id}", s.handleGet(s.repo.ResidentialProperty))
		r.Get("/residential/lease", s.handleList(s.repo.ResidentialsForLease))
		r.Get("/residential/lease/{id}", s.handleGet(s.repo.ResidentialForLease))
		r.Get("/rural/sale", s.handleList(s.repo.Rural))
		r.Get("/rural/sale/sold", s.handleList(s.repo.RuralSold))
		r.Get("/rural/sale/{id}", s.handleGet(s.repo.RuralProperty))
	})

	return r
}

// bypassFromQuery marks the request context for a cache bypass when the
// query string carries the nocache key, whatever its value.
func bypassFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()[bypassParam]; ok {
			r = r.WithContext(cache.WithBypass(r.Context(), true))
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("Request handled")
		})
	}
}

// queryParams converts the query string to listing params, keeping the first
// value of each key and dropping the bypass flag.
func queryParams(r *http.Request) listing.Params {
	params := listing.Params{}
	for key, values := range r.URL.Query() {
		if key == bypassParam || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	return params
}

func (s *server) handleList(list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := list(r.Context(), queryParams(r))
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}

		keys := s.repo.DetailKeys()
		resp := listResponse{Items: make([]listing.View, 0, len(properties)), DetailKeys: keys}
		for _, p := range properties {
			resp.Items = append(resp.Items, p.View(r.Context(), keys))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *server) handleGet(get getFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p.View(r.Context(), s.repo.DetailKeys()))
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "cache unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeUpstreamError maps an upstream failure to a gateway response. The
// page render decides how to degrade; the server never exits on it.
func (s *server) writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	msg := "upstream request failed"

	switch {
	case client.IsAuthError(err):
		msg = "upstream authentication failed"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		msg = "upstream request timed out"
	}

	s.logger.Error().Err(err).Int("status", status).Msg(msg)
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
