// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"
	"golang.org/x/time/rate"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		metrics.RecordHTTPRequest(endpoint, r.Method, wrapped.statusCode, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			metrics.RecordError(endpoint, r.Method, getErrorType(wrapped.statusCode), getErrorSeverity(wrapped.statusCode))
		}
	}
}

// RequestIDMiddleware attaches a request ID to the context and the response.
// A well-formed incoming X-Request-ID is reused; otherwise a UUID is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// Client table bounds used when no LimiterOption overrides them.
const (
	DefaultMaxClients = 10000
	DefaultClientIdle = 10 * time.Minute
)

type clientEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// ClientLimiter rate-limits requests per client address. Clients idle for
// longer than the idle window are swept on insert. The table never holds more
// entries than the client cap.
type ClientLimiter struct {
	mu        sync.Mutex
	m         map[string]*clientEntry
	r         rate.Limit
	b         int
	max       int
	idle      time.Duration
	lastSweep time.Time
	trusted   []netip.Prefix
}

// LimiterOption configures a ClientLimiter.
type LimiterOption func(*ClientLimiter)

// WithMaxClients caps the number of tracked clients. Non-positive values are ignored.
func WithMaxClients(n int) LimiterOption {
	return func(cl *ClientLimiter) {
		if n > 0 {
			cl.max = n
		}
	}
}

// WithClientIdle sets how long an unseen client keeps its bucket.
func WithClientIdle(d time.Duration) LimiterOption {
	return func(cl *ClientLimiter) {
		if d > 0 {
			cl.idle = d
		}
	}
}

// WithLimiterTrustedProxies lets peers inside prefixes name the client
// through X-Forwarded-For.
func WithLimiterTrustedProxies(prefixes ...netip.Prefix) LimiterOption {
	return func(cl *ClientLimiter) {
		cl.trusted = append(cl.trusted, prefixes...)
	}
}

// NewClientLimiter allows rps requests per second per client with the given
// burst. A non-positive rps disables limiting.
func NewClientLimiter(rps float64, burst int, opts ...LimiterOption) *ClientLimiter {
	cl := &ClientLimiter{
		m:         make(map[string]*clientEntry),
		r:         rate.Limit(rps),
		b:         max(burst, 1),
		max:       DefaultMaxClients,
		idle:      DefaultClientIdle,
		lastSweep: time.Now(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (cl *ClientLimiter) limiterFor(client string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	if e, ok := cl.m[client]; ok {
		e.seen = now
		return e.lim
	}
	if len(cl.m) >= cl.max || now.Sub(cl.lastSweep) >= cl.idle {
		cl.sweepLocked(now)
	}
	lim := rate.NewLimiter(cl.r, cl.b)
	cl.m[client] = &clientEntry{lim: lim, seen: now}
	return lim
}

// sweepLocked drops idle clients, then the least recently seen ones until a
// slot is free.
func (cl *ClientLimiter) sweepLocked(now time.Time) {
	cl.lastSweep = now
	for k, e := range cl.m {
		if now.Sub(e.seen) >= cl.idle {
			delete(cl.m, k)
		}
	}
	for len(cl.m) >= cl.max {
		var oldest string
		var at time.Time
		for k, e := range cl.m {
			if oldest == "" || e.seen.Before(at) {
				oldest, at = k, e.seen
			}
		}
		delete(cl.m, oldest)
	}
}

// Allow reports whether the client may make a request now.
func (cl *ClientLimiter) Allow(client string) bool {
	if cl == nil || cl.r <= 0 {
		return true
	}
	return cl.limiterFor(client).Allow()
}

// Clients returns the number of tracked clients.
func (cl *ClientLimiter) Clients() int {
	if cl == nil {
		return 0
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.m)
}

// ClientKey identifies the caller of r. The peer address is used unless the
// peer is a trusted proxy, in which case X-Forwarded-For is walked from the
// right and the first untrusted hop wins.
func (cl *ClientLimiter) ClientKey(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if cl == nil || len(cl.trusted) == 0 || !cl.isTrusted(peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !cl.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (cl *ClientLimiter) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range cl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware rejects requests beyond the client's budget with 429.
func RateLimitMiddleware(next http.HandlerFunc, cl *ClientLimiter, endpoint string) http.HandlerFunc {
	const op = "api.rate_limit"
	return func(w http.ResponseWriter, r *http.Request) {
		if !cl.Allow(cl.ClientKey(r)) {
			metrics.RecordRateLimited(endpoint)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
			return
		}
		next(w, r)
	}
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
