// Package repository serves the dormitory catalog and notices from the
// bundled tables or an optional external store.
package repository

import (
	"context"

	"github.com/okian/dormscore/internal/domain/model"
)

// Resource names used for cache tags and metrics labels.
const (
	ResourceDormitories = "dormitories"
	ResourceNotices     = "notices"
)

// Provider returns catalog data. Implementations must be safe for concurrent use.
type Provider interface {
	// Dormitories returns the full catalog in display order.
	Dormitories(ctx context.Context) ([]model.Dormitory, error)
	// Notices returns up to limit notices, pinned first then newest first.
	// An empty category means every category.
	Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error)
}

// CriteriaSource reads per-semester score criteria.
type CriteriaSource interface {
	ScoreCriteria(ctx context.Context, semester string) (model.ScoreCriteria, error)
}

// Invalidator drops cached data by tag.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}
