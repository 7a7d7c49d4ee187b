// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/dormscore/internal/adapters/repository"
	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"
)

const (
	defaultSemester       = "2026-1"
	defaultNoticeLimitMax = 50
	hoursPerDay           = 24
)

// ErrNoRevalidationTarget is returned when neither a path nor a tag is given.
var ErrNoRevalidationTarget = errors.New("provide path or tag")

// Service implements the API dependencies for the dormitory calculator.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine      *scoring.Engine
	provider    repository.Provider
	invalidator repository.Invalidator
	criteria    repository.CriteriaSource

	// Configuration
	semester       string
	completion     time.Time
	noticeLimitMax int
	now            func() time.Time

	// State
	started bool

	// Counters reported by GetStats.
	scores        atomic.Int64
	lookups       atomic.Int64
	catalogReads  atomic.Int64
	catalogErrors atomic.Int64
	revalidations atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngine sets the scoring engine, e.g. one built from a region policy file.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithProvider sets the catalog provider.
func WithProvider(p repository.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithInvalidator sets the cache invalidator used by Revalidate.
func WithInvalidator(inv repository.Invalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

// WithCriteriaSource sets where per-semester score criteria are read from.
func WithCriteriaSource(src repository.CriteriaSource) Option {
	return func(s *Service) {
		s.criteria = src
	}
}

// WithSemester sets the semester reported by Criteria.
func WithSemester(semester string) Option {
	return func(s *Service) {
		if semester != "" {
			s.semester = semester
		}
	}
}

// WithCompletionDate sets the replacement-building completion date.
func WithCompletionDate(t time.Time) Option {
	return func(s *Service) {
		s.completion = t
	}
}

// WithNoticeLimitMax caps the notice page size.
func WithNoticeLimitMax(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.noticeLimitMax = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:         scoring.Default(),
		provider:       repository.NewStaticProvider(),
		semester:       defaultSemester,
		noticeLimitMax: defaultNoticeLimitMax,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.started = true
	s.logger.Info(ctx, "dormitory service started",
		logger.String("semester", s.semester),
		logger.Bool("cache", s.invalidator != nil),
		logger.Int("noticeLimitMax", s.noticeLimitMax),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "dormitory service stopped")
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Nop()
	}
	return l
}

// Score computes the breakdown for one applicant.
func (s *Service) Score(ctx context.Context, in scoring.Input) types.ScoreResult {
	b := s.engine.Compute(in)
	lvl := s.Level(b.TotalScore)
	mode := in.Mode
	if mode != scoring.ModeFinancialHardship {
		mode = scoring.ModeGeneral
	}

	s.scores.Add(1)
	metrics.RecordScoreComputation(string(mode), string(lvl.Level), b.TotalScore)
	s.log().Debug(ctx, "score computed",
		logger.String("mode", string(mode)),
		logger.Int("total", b.TotalScore),
		logger.String("level", string(lvl.Level)),
	)
	return types.ScoreResult{Mode: mode, Breakdown: b, LevelInfo: lvl}
}

// Level classifies a total score.
func (s *Service) Level(total int) types.LevelInfo {
	return types.NewLevelInfo(total)
}

// Dormitories returns the catalog in display order.
func (s *Service) Dormitories(ctx context.Context) ([]types.DormitoryView, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.DormitoryView, len(catalog))
	for i, d := range catalog {
		out[i] = types.NewDormitoryView(d)
	}
	return out, nil
}

// Dormitory returns one catalog entry by id.
func (s *Service) Dormitory(ctx context.Context, id string) (types.DormitoryView, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return types.DormitoryView{}, err
	}
	d, err := repository.Dormitory(catalog, id)
	if err != nil {
		return types.DormitoryView{}, err
	}
	return types.NewDormitoryView(d), nil
}

func (s *Service) catalog(ctx context.Context) ([]model.Dormitory, error) {
	s.catalogReads.Add(1)
	catalog, err := s.provider.Dormitories(ctx)
	if err != nil {
		s.catalogErrors.Add(1)
		s.log().Error(ctx, "catalog read failed", logger.Error(err))
		return nil, fmt.Errorf("read dormitories: %w", err)
	}
	return catalog, nil
}

// Eligibility resolves the eligible set and annotates the catalog with it,
// eligible entries first.
func (s *Service) Eligibility(ctx context.Context, g eligibility.Gender, t eligibility.StudentType) (types.EligibilityView, error) {
	eligible := eligibility.Resolve(g, t)
	s.lookups.Add(1)
	metrics.RecordEligibilityLookup(string(g), string(t), len(eligible))

	catalog, err := s.Dormitories(ctx)
	if err != nil {
		return types.EligibilityView{}, err
	}

	byID := make(map[eligibility.DormitoryID]types.DormitoryView, len(catalog))
	ids := make([]eligibility.DormitoryID, 0, len(catalog))
	for _, d := range catalog {
		id := eligibility.DormitoryID(d.ID)
		byID[id] = d
		ids = append(ids, id)
	}

	in := make(map[eligibility.DormitoryID]bool, len(eligible))
	for _, id := range eligible {
		in[id] = true
	}

	sorted := eligibility.Sort(ids, eligible)
	annotated := make([]types.EligibleDormitory, 0, len(sorted))
	for _, id := range sorted {
		annotated = append(annotated, types.EligibleDormitory{DormitoryView: byID[id], Eligible: in[id]})
	}

	return types.EligibilityView{
		Gender:           g,
		StudentType:      t,
		StudentTypeLabel: t.Label(),
		Eligible:         eligible,
		Dormitories:      annotated,
	}, nil
}

// Criteria returns the score tables and maxima. Store criteria are used when
// available; otherwise the bundled maxima apply.
func (s *Service) Criteria(ctx context.Context) types.CriteriaView {
	c := model.DefaultScoreCriteria(s.semester)
	if s.criteria != nil {
		stored, err := s.criteria.ScoreCriteria(ctx, s.semester)
		switch {
		case err == nil:
			c = stored
		case errors.Is(err, repository.ErrNotFound):
			s.log().Debug(ctx, "no stored criteria for semester", logger.String("semester", s.semester))
		default:
			s.log().Warn(ctx, "criteria read failed, using bundled maxima", logger.Error(err))
		}
	}

	v := types.CriteriaView{
		ScoreCriteria:   c,
		GeneralMaxTotal: c.GeneralMax(),
		GeneralGrades:   s.engine.GradeTiers(scoring.ModeGeneral),
		FinancialGrades: s.engine.GradeTiers(scoring.ModeFinancialHardship),
		RegionBuckets:   s.engine.Policy().Buckets,
	}
	if !s.completion.IsZero() {
		days := daysUntil(s.now(), s.completion)
		v.CompletionDate = s.completion.Format(time.DateOnly)
		v.DaysUntilCompletion = &days
	}
	return v
}

// daysUntil counts whole days remaining, rounding up partial days. Past dates
// yield zero.
func daysUntil(now, target time.Time) int {
	d := target.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / hoursPerDay))
}

// Regions returns the active region policy.
func (s *Service) Regions() scoring.RegionPolicy {
	return s.engine.Policy()
}

// Notices returns up to limit notices. Limits above the configured maximum
// are clamped.
func (s *Service) Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	limit = min(limit, s.noticeLimitMax)
	notices, err := s.provider.Notices(ctx, limit, category)
	if err != nil {
		s.log().Error(ctx, "notice read failed", logger.Error(err))
		return nil, fmt.Errorf("read notices: %w", err)
	}
	return notices, nil
}

// NoticeLimitMax is the largest page size Notices serves.
func (s *Service) NoticeLimitMax() int {
	return s.noticeLimitMax
}

// pathTags maps a rendered path prefix to the cache tags it reads.
var pathTags = []struct {
	prefix string
	tags   []string
}{
	{"/dorms", []string{repository.ResourceDormitories}},
	{"/v1/dormitories", []string{repository.ResourceDormitories}},
	{"/v1/eligibility", []string{repository.ResourceDormitories}},
	{"/v1/notices", []string{repository.ResourceNotices}},
}

// tagsForPath returns the tags behind a path. The root page and unknown paths
// depend on everything.
func tagsForPath(path string) []string {
	for _, pt := range pathTags {
		if path == pt.prefix || strings.HasPrefix(path, pt.prefix+"/") {
			return pt.tags
		}
	}
	return []string{repository.ResourceDormitories, repository.ResourceNotices}
}

// Revalidate drops cached catalog data behind a path and/or a tag and
// returns what was revalidated as "path:<p>" and "tag:<t>" entries.
func (s *Service) Revalidate(ctx context.Context, path, tag string) ([]string, error) {
	path, tag = strings.TrimSpace(path), strings.TrimSpace(tag)
	if path == "" && tag == "" {
		metrics.RecordRevalidation("rejected")
		return nil, ErrNoRevalidationTarget
	}

	var tags, revalidated []string
	if path != "" {
		tags = append(tags, tagsForPath(path)...)
		revalidated = append(revalidated, "path:"+path)
	}
	if tag != "" {
		if tag != repository.ResourceDormitories && tag != repository.ResourceNotices {
			metrics.RecordRevalidation("rejected")
			return nil, fmt.Errorf("%w: %q", repository.ErrUnknownTag, tag)
		}
		tags = append(tags, tag)
		revalidated = append(revalidated, "tag:"+tag)
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, tags...); err != nil {
			metrics.RecordRevalidation("error")
			return nil, fmt.Errorf("revalidate: %w", err)
		}
	}

	s.revalidations.Add(1)
	metrics.RecordRevalidation("ok")
	s.log().Info(ctx, "catalog revalidated", logger.Any("targets", revalidated))
	return revalidated, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"started":            s.started,
		"semester":           s.semester,
		"cacheEnabled":       s.invalidator != nil,
		"scoreComputations":  s.scores.Load(),
		"eligibilityLookups": s.lookups.Load(),
		"catalogReads":       s.catalogReads.Load(),
		"catalogErrors":      s.catalogErrors.Load(),
		"revalidations":      s.revalidations.Load(),
	}
}
