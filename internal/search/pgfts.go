package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search runs plainto_tsquery over the suggestion text of the club's
// selected movies, ranked with ts_rank and snippeted with ts_headline.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	const baseFrom = `
		FROM selected_movies sm
		JOIN suggestions sg ON sg.id = sm.suggestion_id
		WHERE sm.club_id = $2 AND sg.fts @@ plainto_tsquery('english', $1)
	`

	ctx := context.Background()
	args := []any{q.Text, q.ClubID}

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*)`+baseFrom, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	dataSQL := fmt.Sprintf(`
		SELECT sm.id, sm.club_id, sg.title,
			ts_headline('english', sg.summary, plainto_tsquery('english', $1), 'MaxFragments=1,MaxWords=30') AS snippet,
			COALESCE(sg.release_year, 0), sm.watched,
			ts_rank(sg.fts, plainto_tsquery('english', $1)) AS rank
		%s
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`, baseFrom, limit, offset)

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var rank float64
		if err := rows.Scan(&r.SelectionID, &r.ClubID, &r.Title, &r.Snippet, &r.ReleaseYear, &r.Watched, &rank); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns every selected movie for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]SelectionRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT sm.id, sm.club_id, sg.title, sg.summary, COALESCE(sg.release_year, 0), sm.watched
		FROM selected_movies sm
		JOIN suggestions sg ON sg.id = sm.suggestion_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load selections: %w", err)
	}
	defer rows.Close()

	records := make([]SelectionRecord, 0)
	for rows.Next() {
		var record SelectionRecord
		if err := rows.Scan(&record.ID, &record.ClubID, &record.Title, &record.Summary, &record.ReleaseYear, &record.Watched); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return records, nil
}
