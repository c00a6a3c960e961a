// Package search implements the Search repository using PostgreSQL.
// Fixed queries use raw SQL; the dedup lookup builds its WHERE clause
// dynamically with squirrel.
package search

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/painradar/painradar-backend/internal/adapter/postgres"
	"github.com/painradar/painradar-backend/internal/domain"
)

// Repo provides search persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// New creates a new search repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, tx: postgres.NewTxManager(pool)}
}

// ---------------------------------------------------------------------------
// Raw SQL for fixed queries
// ---------------------------------------------------------------------------

const insertSearchSQL = `
INSERT INTO searches (topic, search_key, tags, time_range, min_upvotes, sort_by, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`

const getByIDSQL = `
SELECT id, status, topic, tags, time_range, min_upvotes, sort_by, error_message, created_at
FROM searches
WHERE id = $1`

const getStatusSQL = `
SELECT id, status, error_message
FROM searches
WHERE id = $1`

const markProcessingSQL = `
UPDATE searches
SET status = 'processing', updated_at = now()
WHERE id = $1 AND status = 'pending'`

const deleteTerminalBeforeSQL = `
DELETE FROM searches
WHERE status IN ('completed', 'failed') AND created_at < $1`

const getPainPointsSQL = `
SELECT id, search_id, title, tag, mentions, severity
FROM pain_points
WHERE search_id = $1
ORDER BY mentions DESC, id`

const getQuotesSQL = `
SELECT q.id, q.pain_point_id, q.text, q.author, q.upvotes, q.permalink
FROM quotes q
JOIN pain_points p ON q.pain_point_id = p.id
WHERE p.search_id = $1
ORDER BY q.upvotes DESC, q.id`

const getAnalysisSQL = `
SELECT summary, problems, product_ideas, model, tokens_used
FROM analyses
WHERE search_id = $1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert creates a new search row in the pending state from a normalized
// request and its canonical key.
func (r *Repo) Insert(ctx context.Context, req domain.SearchRequest, key string) (*domain.Search, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	s := &domain.Search{
		Status:     domain.SearchStatusPending,
		Topic:      req.Topic,
		Tags:       req.Tags,
		TimeRange:  req.TimeRange,
		MinUpvotes: req.MinUpvotes,
		SortBy:     req.SortBy,
	}

	err := q.QueryRow(ctx, insertSearchSQL,
		req.Topic, key, tagsToStrings(req.Tags), string(req.TimeRange),
		req.MinUpvotes, string(req.SortBy), string(domain.SearchStatusPending),
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "search", uuid.Nil)
	}

	return s, nil
}

// MarkProcessing promotes a pending search to processing. Promoting a row
// that already left pending is a no-op, not an error.
func (r *Repo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, markProcessingSQL, id); err != nil {
		return mapError(err, "search", id)
	}
	return nil
}

// DeleteTerminalBefore removes completed/failed searches created before the
// threshold. Result rows cascade via foreign keys.
func (r *Repo) DeleteTerminalBefore(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteTerminalBeforeSQL, threshold)
	if err != nil {
		return 0, mapError(err, "search", uuid.Nil)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns the narrow search slice for one row.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Search, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanSearch(q.QueryRow(ctx, getByIDSQL, id), id)
}

// GetStatus returns the status projection of one row.
func (r *Repo) GetStatus(ctx context.Context, id uuid.UUID) (*domain.StatusRow, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		row    domain.StatusRow
		status string
	)
	err := q.QueryRow(ctx, getStatusSQL, id).Scan(&row.ID, &status, &row.ErrorMessage)
	if err != nil {
		return nil, mapError(err, "search", id)
	}
	row.Status = domain.SearchStatus(status)

	return &row, nil
}

// FindRecent returns the most recent search with the given canonical key,
// restricted to the given statuses and to rows created at or after since.
// Returns domain.ErrNotFound when no row qualifies.
func (r *Repo) FindRecent(ctx context.Context, key string, statuses []domain.SearchStatus, since time.Time) (*domain.Search, error) {
	sql, args, err := findRecentQuery(key, statuses, since).ToSql()
	if err != nil {
		return nil, fmt.Errorf("search: build dedup query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	return scanSearch(q.QueryRow(ctx, sql, args...), uuid.Nil)
}

// findRecentQuery builds the dedup lookup. Split out for testability.
func findRecentQuery(key string, statuses []domain.SearchStatus, since time.Time) sq.SelectBuilder {
	st := make([]string, len(statuses))
	for i, s := range statuses {
		st[i] = string(s)
	}

	return sq.Select("id", "status", "topic", "tags", "time_range", "min_upvotes", "sort_by", "error_message", "created_at").
		From("searches").
		Where(sq.Eq{"search_key": key}).
		Where(sq.Eq{"status": st}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar)
}

// AssembleResult reconstructs the full result payload for a completed search
// from the normalized tables, inside one transaction so the projections are
// mutually consistent. The assembled result passes the shape contract before
// being returned.
func (r *Repo) AssembleResult(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error) {
	var result *domain.SearchResult

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		assembled := domain.NewPendingResult(s)
		assembled.Status = s.Status
		if s.Status == domain.SearchStatusFailed && s.ErrorMessage != nil {
			assembled.ErrorMessage = *s.ErrorMessage
		}

		if s.Status == domain.SearchStatusCompleted {
			if err := r.loadPainPoints(ctx, id, assembled); err != nil {
				return err
			}
			if err := r.loadQuotes(ctx, id, assembled); err != nil {
				return err
			}
			if err := r.loadAnalysis(ctx, id, assembled); err != nil {
				return err
			}
			assembled.TotalPainPoints = len(assembled.PainPoints)
			assembled.TotalQuotes = len(assembled.Quotes)
		}

		result = assembled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("search %s: assembled result invalid: %w", id, err)
	}
	return result, nil
}

func (r *Repo) loadPainPoints(ctx context.Context, id uuid.UUID, result *domain.SearchResult) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getPainPointsSQL, id)
	if err != nil {
		return mapError(err, "pain points for search", id)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p   domain.PainPoint
			tag string
		)
		if err := rows.Scan(&p.ID, &p.SearchID, &p.Title, &tag, &p.Mentions, &p.Severity); err != nil {
			return mapError(err, "pain points for search", id)
		}
		p.Tag = domain.SourceTag(tag)
		result.PainPoints = append(result.PainPoints, p)
	}
	return rows.Err()
}

func (r *Repo) loadQuotes(ctx context.Context, id uuid.UUID, result *domain.SearchResult) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getQuotesSQL, id)
	if err != nil {
		return mapError(err, "quotes for search", id)
	}
	defer rows.Close()

	for rows.Next() {
		var quote domain.Quote
		if err := rows.Scan(&quote.ID, &quote.PainPointID, &quote.Text, &quote.Author, &quote.Upvotes, &quote.Permalink); err != nil {
			return mapError(err, "quotes for search", id)
		}
		result.Quotes = append(result.Quotes, quote)
	}
	return rows.Err()
}

func (r *Repo) loadAnalysis(ctx context.Context, id uuid.UUID, result *domain.SearchResult) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var a domain.Analysis
	err := q.QueryRow(ctx, getAnalysisSQL, id).Scan(&a.Summary, &a.Problems, &a.ProductIdeas, &a.Model, &a.TokensUsed)
	if err != nil {
		// Analysis is optional: a completed search may have none.
		if mapped := mapError(err, "analysis for search", id); isNotFound(mapped) {
			return nil
		}
		return mapError(err, "analysis for search", id)
	}

	result.Analysis = &a
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearch(row rowScanner, id uuid.UUID) (*domain.Search, error) {
	var (
		s         domain.Search
		status    string
		tags      []string
		timeRange string
		sortBy    string
	)
	err := row.Scan(&s.ID, &status, &s.Topic, &tags, &timeRange, &s.MinUpvotes, &sortBy, &s.ErrorMessage, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "search", id)
	}

	s.Status = domain.SearchStatus(status)
	s.TimeRange = domain.TimeRange(timeRange)
	s.SortBy = domain.SortBy(sortBy)
	s.Tags = stringsToTags(tags)

	return &s, nil
}

func tagsToStrings(tags []domain.SourceTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func stringsToTags(ss []string) []domain.SourceTag {
	if len(ss) == 0 {
		return nil
	}
	out := make([]domain.SourceTag, len(ss))
	for i, s := range ss {
		out[i] = domain.SourceTag(s)
	}
	return out
}
