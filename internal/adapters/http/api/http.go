// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"

	"github.com/okian/dormscore/internal/adapters/repository"
)

const defaultNoticeLimitMax = 50

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	EligibilityDependencies
	CatalogDependencies
	NoticeDependencies
	RevalidateDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	eligibilityHandler *EligibilityHandler
	catalogHandler     *CatalogHandler
	noticesHandler     *NoticesHandler
	revalidateHandler  *RevalidateHandler

	limiter *ClientLimiter
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	secret         string
	rps            float64
	burst          int
	noticeLimitMax int
	trusted        []netip.Prefix
}

// WithRevalidationSecret sets the bearer token accepted by /api/revalidate.
// An empty secret rejects every revalidation request.
func WithRevalidationSecret(secret string) Option {
	return func(o *serverOptions) {
		o.secret = secret
	}
}

// WithRateLimit limits each client to rps requests per second with burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *serverOptions) {
		o.rps = rps
		o.burst = burst
	}
}

// WithTrustedProxies trusts X-Forwarded-For only from peers inside prefixes.
// Without it clients are keyed on their socket address.
func WithTrustedProxies(prefixes ...netip.Prefix) Option {
	return func(o *serverOptions) {
		o.trusted = append(o.trusted, prefixes...)
	}
}

// WithNoticeLimitMax caps the notice page size accepted by /v1/notices.
func WithNoticeLimitMax(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.noticeLimitMax = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{noticeLimitMax: defaultNoticeLimitMax}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoreHandler:       NewScoreHandler(deps),
		eligibilityHandler: NewEligibilityHandler(deps),
		catalogHandler:     NewCatalogHandler(deps),
		noticesHandler:     NewNoticesHandler(deps, o.noticeLimitMax),
		revalidateHandler:  NewRevalidateHandler(deps, o.secret),
		limiter:            NewClientLimiter(o.rps, o.burst, WithLimiterTrustedProxies(o.trusted...)),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	limited := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(RateLimitMiddleware(h, s.limiter, endpoint), endpoint)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", NewMetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/v1/score", limited(s.scoreHandler.HandlePostScore, "score"))
	mux.HandleFunc("/v1/score/level", limited(s.scoreHandler.HandleGetLevel, "score_level"))
	mux.HandleFunc("/v1/eligibility", limited(s.eligibilityHandler.HandleGetEligibility, "eligibility"))
	mux.HandleFunc("/v1/criteria", limited(s.catalogHandler.HandleGetCriteria, "criteria"))
	mux.HandleFunc("/v1/regions", limited(s.catalogHandler.HandleGetRegions, "regions"))
	mux.HandleFunc("/v1/dormitories", limited(s.catalogHandler.HandleListDormitories, "dormitories"))
	mux.HandleFunc("/v1/dormitories/", limited(s.catalogHandler.HandleGetDormitory, "dormitory"))
	mux.HandleFunc("/v1/notices", limited(s.noticesHandler.HandleGetNotices, "notices"))
	mux.HandleFunc("/api/revalidate", limited(s.revalidateHandler.HandlePostRevalidate, "revalidate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound)
}
