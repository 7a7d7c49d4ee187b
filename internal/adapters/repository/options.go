package repository

import (
	"time"

	"github.com/okian/dormscore/pkg/logger"
)

const (
	defaultSemester  = "2026-1"
	defaultCacheTTL  = 5 * time.Minute
	defaultKeyPrefix = "dormscore"
)

// PostgresOption configures a PostgresProvider.
type PostgresOption func(*PostgresProvider)

// WithSemester selects which semester's quota rows are merged.
func WithSemester(semester string) PostgresOption {
	return func(p *PostgresProvider) {
		if semester != "" {
			p.semester = semester
		}
	}
}

// WithBase replaces the structural catalog that quota rows are merged onto.
func WithBase(base Provider) PostgresOption {
	return func(p *PostgresProvider) {
		if base != nil {
			p.base = base
		}
	}
}

// CacheOption configures a CachedProvider.
type CacheOption func(*CachedProvider)

// WithTTL sets how long cached payloads live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedProvider) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces every cache key.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedProvider) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger used for degraded cache operations.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedProvider) {
		if l != nil {
			c.log = l
		}
	}
}

// FallbackOption configures a FallbackProvider.
type FallbackOption func(*FallbackProvider)

// WithFallbackLogger sets the logger used when the primary store fails.
func WithFallbackLogger(l logger.Logger) FallbackOption {
	return func(f *FallbackProvider) {
		if l != nil {
			f.log = l
		}
	}
}
