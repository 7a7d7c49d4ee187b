package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/dormscore/internal/domain/model"

	_ "github.com/lib/pq"
)

const (
	selectQuotas = `SELECT id, capacity, quota_general, quota_financial FROM dormitories WHERE semester = $1 ORDER BY id`

	selectNotices = `SELECT id, title, content, source_url, category, is_pinned, published_at FROM notices ORDER BY is_pinned DESC, published_at DESC NULLS LAST LIMIT $1`

	selectNoticesByCategory = `SELECT id, title, content, source_url, category, is_pinned, published_at FROM notices WHERE category = $2 ORDER BY is_pinned DESC, published_at DESC NULLS LAST LIMIT $1`

	selectCriteria = `SELECT semester, max_grade, max_distance, max_volunteer, max_education, max_financial FROM score_criteria WHERE semester = $1`

	insertNotice = `INSERT INTO notices (title, content, source_url, category, is_pinned, published_at)
SELECT $1, $2, $3, $4, $5, $6
WHERE NOT EXISTS (SELECT 1 FROM notices WHERE source_url = $3)`
)

// OpenPostgres opens a pooled connection to dsn using the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresProvider reads quota overrides and notices from Postgres.
// Structural dormitory data always comes from the base provider.
type PostgresProvider struct {
	db       *sql.DB
	base     Provider
	semester string
}

// NewPostgresProvider wraps an open database handle.
func NewPostgresProvider(db *sql.DB, opts ...PostgresOption) *PostgresProvider {
	p := &PostgresProvider{
		db:       db,
		base:     NewStaticProvider(),
		semester: defaultSemester,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type quotaRow struct {
	capacity  int
	general   sql.NullInt64
	financial sql.NullInt64
}

// Dormitories merges the semester's quota rows onto the base catalog.
// It returns ErrNoData when the semester has no rows.
func (p *PostgresProvider) Dormitories(ctx context.Context) ([]model.Dormitory, error) {
	rows, err := p.db.QueryContext(ctx, selectQuotas, p.semester)
	if err != nil {
		return nil, fmt.Errorf("query dormitories: %w", err)
	}
	defer rows.Close()

	quotas := make(map[string]quotaRow)
	for rows.Next() {
		var id string
		var q quotaRow
		if err := rows.Scan(&id, &q.capacity, &q.general, &q.financial); err != nil {
			return nil, fmt.Errorf("scan dormitory: %w", err)
		}
		quotas[id] = q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dormitories: %w", err)
	}
	if len(quotas) == 0 {
		return nil, ErrNoData
	}

	catalog, err := p.base.Dormitories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range catalog {
		q, ok := quotas[catalog[i].ID]
		if !ok {
			continue
		}
		catalog[i].Capacity = fmt.Sprintf("총 %d명", q.capacity)
		catalog[i].TotalPeople = q.capacity
		catalog[i].CapacityNote = fmt.Sprintf("(%s학기 공식 공고 기준)", p.semester)
		if q.general.Valid {
			v := int(q.general.Int64)
			catalog[i].QuotaGeneral = &v
		}
		if q.financial.Valid {
			v := int(q.financial.Int64)
			catalog[i].QuotaFinancial = &v
		}
	}
	return catalog, nil
}

// Notices returns up to limit notices, pinned first then newest first.
func (p *PostgresProvider) Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if category == "" {
		rows, err = p.db.QueryContext(ctx, selectNotices, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, selectNoticesByCategory, limit, string(category))
	}
	if err != nil {
		return nil, fmt.Errorf("query notices: %w", err)
	}
	defer rows.Close()

	out := make([]model.Notice, 0, limit)
	for rows.Next() {
		var (
			n         model.Notice
			content   sql.NullString
			sourceURL sql.NullString
			cat       string
			published sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Title, &content, &sourceURL, &cat, &n.Pinned, &published); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		n.Content = content.String
		n.SourceURL = sourceURL.String
		n.Category = model.NoticeCategory(cat)
		if published.Valid {
			t := published.Time
			n.PublishedAt = &t
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notices: %w", err)
	}
	return out, nil
}

// ScoreCriteria reads the maxima row for semester.
func (p *PostgresProvider) ScoreCriteria(ctx context.Context, semester string) (model.ScoreCriteria, error) {
	var c model.ScoreCriteria
	err := p.db.QueryRowContext(ctx, selectCriteria, semester).
		Scan(&c.Semester, &c.MaxGrade, &c.MaxDistance, &c.MaxVolunteer, &c.MaxEducation, &c.MaxFinancial)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScoreCriteria{}, ErrNotFound
	}
	if err != nil {
		return model.ScoreCriteria{}, fmt.Errorf("query score criteria: %w", err)
	}
	return c, nil
}

// InsertNotices stores notices in one transaction, skipping any whose source
// URL is already present. It returns the number of rows inserted.
func (p *PostgresProvider) InsertNotices(ctx context.Context, notices []model.Notice) (int, error) {
	if len(notices) == 0 {
		return 0, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin notice insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, n := range notices {
		category := n.Category
		if category == "" {
			category = model.CategoryGeneral
		}
		var published any
		if n.PublishedAt != nil {
			published = *n.PublishedAt
		}
		res, err := tx.ExecContext(ctx, insertNotice,
			n.Title, nullString(n.Content), nullString(n.SourceURL), string(category), n.Pinned, published)
		if err != nil {
			return 0, fmt.Errorf("insert notice %q: %w", n.Title, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert notice %q: %w", n.Title, err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit notice insert: %w", err)
	}
	return inserted, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
