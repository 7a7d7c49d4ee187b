package repository

import (
	"context"

	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"
)

// FallbackProvider serves the bundled catalog whenever the primary store
// errors or returns nothing. Notices degrade to an empty list.
type FallbackProvider struct {
	primary  Provider
	fallback *StaticProvider
	log      logger.Logger
}

// NewFallbackProvider wraps primary. A nil primary always serves static data.
func NewFallbackProvider(primary Provider, opts ...FallbackOption) *FallbackProvider {
	f := &FallbackProvider{
		primary:  primary,
		fallback: NewStaticProvider(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dormitories returns the primary catalog or the bundled one.
func (f *FallbackProvider) Dormitories(ctx context.Context) ([]model.Dormitory, error) {
	if f.primary != nil {
		out, err := f.primary.Dormitories(ctx)
		if err == nil && len(out) > 0 {
			metrics.RecordCatalogRead(ResourceDormitories, "primary")
			return out, nil
		}
		f.log.Warn(ctx, "dormitory store unavailable, serving bundled catalog", logger.Any("error", err))
		metrics.RecordCatalogFallback(ResourceDormitories)
	}
	metrics.RecordCatalogRead(ResourceDormitories, "static")
	return f.fallback.Dormitories(ctx)
}

// Notices returns primary notices or an empty list. Invalid limits are still
// reported to the caller.
func (f *FallbackProvider) Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if f.primary != nil {
		out, err := f.primary.Notices(ctx, limit, category)
		if err == nil {
			metrics.RecordCatalogRead(ResourceNotices, "primary")
			return out, nil
		}
		f.log.Warn(ctx, "notice store unavailable, serving no notices", logger.Error(err))
		metrics.RecordCatalogFallback(ResourceNotices)
	}
	metrics.RecordCatalogRead(ResourceNotices, "static")
	return f.fallback.Notices(ctx, limit, category)
}
