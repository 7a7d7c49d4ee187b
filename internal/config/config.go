// Package config defines service configuration and its loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers file and env on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Semester is the quota semester key used against the store, e.g. "2026-1".
	Semester string `koanf:"semester"`

	// PolicyFile optionally points at a YAML region policy.
	PolicyFile string `koanf:"policy_file"`

	// PostgresDSN enables the Postgres catalog when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// Redis enables the catalog cache when RedisAddr is set.
	RedisAddr        string `koanf:"redis_addr"`
	RedisPassword    string `koanf:"redis_password"`
	RedisDB          int    `koanf:"redis_db"`
	CatalogCacheTTLS int    `koanf:"catalog_cache_ttl_s"`

	// RevalidationSecret guards POST /api/revalidate. Empty disables the route.
	RevalidationSecret string `koanf:"revalidation_secret"`

	// RateLimitRPS and RateLimitBurst bound requests per client. Zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
	// TrustedProxies lists comma-separated proxy addresses or CIDRs whose
	// X-Forwarded-For header identifies the client. Empty keys on the peer address.
	TrustedProxies string `koanf:"trusted_proxies"`

	// NoticeLimitMax caps GET /v1/notices?limit.
	NoticeLimitMax int `koanf:"notice_limit_max"`

	// CompletionDate is the replacement residence completion date (YYYY-MM-DD).
	CompletionDate string `koanf:"completion_date"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Semester:         "2026-1",
		RedisDB:          0,
		CatalogCacheTTLS: 300,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		NoticeLimitMax:   50,
		CompletionDate:   "2027-06-30",
	}
}

// CatalogCacheTTL returns the cache TTL as a duration.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLS) * time.Second
}

// Completion parses CompletionDate.
func (c *Config) Completion() (time.Time, error) {
	t, err := time.Parse(dateLayout, c.CompletionDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: completion_date: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

// TrustedProxyPrefixes parses TrustedProxies. Bare addresses become
// single-host prefixes.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range strings.Split(c.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted_proxies: %q", ErrInvalidConfig, raw)
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.Semester == "" {
		return fmt.Errorf("%w: semester must not be empty", ErrInvalidConfig)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting", ErrInvalidConfig)
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.NoticeLimitMax <= 0 {
		return fmt.Errorf("%w: notice_limit_max must be positive", ErrInvalidConfig)
	}
	if c.CatalogCacheTTLS < 0 {
		return fmt.Errorf("%w: catalog_cache_ttl_s must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.Completion(); err != nil {
		return err
	}
	return nil
}
