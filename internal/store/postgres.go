package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Clubs and membership

func (s *PostgresStore) InsertClub(ctx context.Context, club Club) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clubs (id, name, suggestion_count, invite_code_hash)
		VALUES ($1, $2, $3, $4)
	`, club.ID, club.Name, club.SuggestionCount, club.InviteCodeHash)
	if err != nil {
		return fmt.Errorf("insert club: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetClub(ctx context.Context, clubID string) (Club, error) {
	var club Club
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, suggestion_count, invite_code_hash, created_at
		FROM clubs
		WHERE id=$1
	`, clubID).Scan(&club.ID, &club.Name, &club.SuggestionCount, &club.InviteCodeHash, &club.CreatedAt)
	if err != nil {
		return Club{}, err
	}
	return club, nil
}

// InsertMember reports false when the member already belongs to the club.
func (s *PostgresStore) InsertMember(ctx context.Context, member ClubMember) (bool, error) {
	role := member.Role
	if role == "" {
		role = RoleMember
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO club_members (club_id, member_id, display_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (club_id, member_id) DO NOTHING
	`, member.ClubID, member.MemberID, member.DisplayName, role)
	if err != nil {
		return false, fmt.Errorf("insert member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert member rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) DeleteMember(ctx context.Context, clubID, memberID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM club_members WHERE club_id=$1 AND member_id=$2
	`, clubID, memberID)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete member rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) GetMember(ctx context.Context, clubID, memberID string) (ClubMember, error) {
	var member ClubMember
	err := s.db.QueryRowContext(ctx, `
		SELECT club_id, member_id, display_name, role, joined_at
		FROM club_members
		WHERE club_id=$1 AND member_id=$2
	`, clubID, memberID).Scan(&member.ClubID, &member.MemberID, &member.DisplayName, &member.Role, &member.JoinedAt)
	if err != nil {
		return ClubMember{}, err
	}
	return member, nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, clubID string) ([]ClubMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT club_id, member_id, display_name, role, joined_at
		FROM club_members
		WHERE club_id=$1
		ORDER BY joined_at ASC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	items := make([]ClubMember, 0)
	for rows.Next() {
		var item ClubMember
		if err := rows.Scan(&item.ClubID, &item.MemberID, &item.DisplayName, &item.Role, &item.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateMemberRole(ctx context.Context, clubID, memberID, role string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE club_members SET role=$3 WHERE club_id=$1 AND member_id=$2
	`, clubID, memberID, role)
	if err != nil {
		return false, fmt.Errorf("update member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update member role rows: %w", err)
	}
	return affected > 0, nil
}

// Rotation

func (s *PostgresStore) ListRotation(ctx context.Context, clubID string) ([]RotationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT club_id, member_id, position
		FROM rotation_entries
		WHERE club_id=$1
		ORDER BY position ASC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("list rotation: %w", err)
	}
	defer rows.Close()

	items := make([]RotationEntry, 0)
	for rows.Next() {
		var item RotationEntry
		if err := rows.Scan(&item.ClubID, &item.MemberID, &item.Position); err != nil {
			return nil, fmt.Errorf("scan rotation entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rotation: %w", err)
	}
	return items, nil
}

// ReplaceRotation swaps out the club's entire rotation in one transaction,
// assigning dense 0-based positions in the order given.
func (s *PostgresStore) ReplaceRotation(ctx context.Context, clubID string, memberIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace rotation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rotation_entries WHERE club_id=$1`, clubID); err != nil {
		return fmt.Errorf("clear rotation: %w", err)
	}
	for position, memberID := range memberIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rotation_entries (club_id, member_id, position)
			VALUES ($1, $2, $3)
		`, clubID, memberID, position); err != nil {
			return fmt.Errorf("insert rotation entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace rotation: %w", err)
	}
	return nil
}

// AppendRotationEntry places a member at the end of the rotation, keeping
// whatever position they already hold if present.
func (s *PostgresStore) AppendRotationEntry(ctx context.Context, clubID, memberID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rotation_entries (club_id, member_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		FROM rotation_entries
		WHERE club_id=$1
		ON CONFLICT (club_id, member_id) DO NOTHING
	`, clubID, memberID)
	if err != nil {
		return fmt.Errorf("append rotation entry: %w", err)
	}
	return nil
}

// Rounds

func (s *PostgresStore) InsertRound(ctx context.Context, round Round) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (id, club_id, suggester_id, status)
		VALUES ($1, $2, $3, $4)
	`, round.ID, round.ClubID, round.SuggesterID, round.Status)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRound(ctx context.Context, roundID string) (Round, error) {
	var round Round
	err := s.db.QueryRowContext(ctx, `
		SELECT id, club_id, suggester_id, status, winner_suggestion_id, created_at, revealed_at, completed_at
		FROM rounds
		WHERE id=$1
	`, roundID).Scan(
		&round.ID,
		&round.ClubID,
		&round.SuggesterID,
		&round.Status,
		&round.WinnerSuggestionID,
		&round.CreatedAt,
		&round.RevealedAt,
		&round.CompletedAt,
	)
	if err != nil {
		return Round{}, err
	}
	return round, nil
}

// GetOpenRound returns the club's non-completed round, or nil when the club
// has none in flight.
func (s *PostgresStore) GetOpenRound(ctx context.Context, clubID string) (*Round, error) {
	var round Round
	err := s.db.QueryRowContext(ctx, `
		SELECT id, club_id, suggester_id, status, winner_suggestion_id, created_at, revealed_at, completed_at
		FROM rounds
		WHERE club_id=$1 AND status <> 'COMPLETED'
		LIMIT 1
	`, clubID).Scan(
		&round.ID,
		&round.ClubID,
		&round.SuggesterID,
		&round.Status,
		&round.WinnerSuggestionID,
		&round.CreatedAt,
		&round.RevealedAt,
		&round.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open round: %w", err)
	}
	return &round, nil
}

// LatestCompletedSuggester returns the suggester of the club's most recently
// completed round, or "" when no round has completed yet.
func (s *PostgresStore) LatestCompletedSuggester(ctx context.Context, clubID string) (string, error) {
	var suggesterID string
	err := s.db.QueryRowContext(ctx, `
		SELECT suggester_id
		FROM rounds
		WHERE club_id=$1 AND status='COMPLETED'
		ORDER BY completed_at DESC
		LIMIT 1
	`, clubID).Scan(&suggesterID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest completed suggester: %w", err)
	}
	return suggesterID, nil
}

// AttachSuggestions inserts the round's suggestion batch and flips the round
// to VOTING in one transaction. The status precondition doubles as the
// idempotency guard: a second call finds the round already past SUGGESTING
// and reports false without touching the first batch.
func (s *PostgresStore) AttachSuggestions(ctx context.Context, roundID string, items []Suggestion) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin attach suggestions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE rounds SET status='VOTING' WHERE id=$1 AND status='SUGGESTING'
	`, roundID)
	if err != nil {
		return false, fmt.Errorf("open voting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("open voting rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO suggestions (id, round_id, external_ref, title, release_year, poster_key, summary)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, roundID, item.ExternalRef, item.Title, item.ReleaseYear, item.PosterKey, item.Summary); err != nil {
			return false, fmt.Errorf("insert suggestion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit attach suggestions: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, roundID string) ([]Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, round_id, external_ref, title, release_year, poster_key, summary
		FROM suggestions
		WHERE round_id=$1
		ORDER BY id ASC
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	items := make([]Suggestion, 0)
	for rows.Next() {
		var item Suggestion
		if err := rows.Scan(&item.ID, &item.RoundID, &item.ExternalRef, &item.Title, &item.ReleaseYear, &item.PosterKey, &item.Summary); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetSuggestion(ctx context.Context, suggestionID string) (Suggestion, error) {
	var item Suggestion
	err := s.db.QueryRowContext(ctx, `
		SELECT id, round_id, external_ref, title, release_year, poster_key, summary
		FROM suggestions
		WHERE id=$1
	`, suggestionID).Scan(&item.ID, &item.RoundID, &item.ExternalRef, &item.Title, &item.ReleaseYear, &item.PosterKey, &item.Summary)
	if err != nil {
		return Suggestion{}, err
	}
	return item, nil
}

func (s *PostgresStore) SetSuggestionPoster(ctx context.Context, suggestionID, posterKey string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE suggestions SET poster_key=$2 WHERE id=$1
	`, suggestionID, posterKey)
	if err != nil {
		return false, fmt.Errorf("set suggestion poster: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set suggestion poster rows: %w", err)
	}
	return affected > 0, nil
}

// Votes

// UpsertVote replaces the voter's full ballot in one transaction: any
// previous rankings are deleted and the new set inserted, so resubmission can
// never leave a partial or duplicated ballot behind.
func (s *PostgresStore) UpsertVote(ctx context.Context, roundID, voterID string, rankings map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert vote: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vote_rankings WHERE round_id=$1 AND voter_id=$2
	`, roundID, voterID); err != nil {
		return fmt.Errorf("clear vote: %w", err)
	}
	for suggestionID, rank := range rankings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vote_rankings (round_id, voter_id, suggestion_id, rank)
			VALUES ($1, $2, $3, $4)
		`, roundID, voterID, suggestionID, rank); err != nil {
			return fmt.Errorf("insert ranking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListVotes(ctx context.Context, roundID string) ([]VoteRanking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round_id, voter_id, suggestion_id, rank
		FROM vote_rankings
		WHERE round_id=$1
		ORDER BY voter_id ASC, rank ASC
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	items := make([]VoteRanking, 0)
	for rows.Next() {
		var item VoteRanking
		if err := rows.Scan(&item.RoundID, &item.VoterID, &item.SuggestionID, &item.Rank); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return items, nil
}

// Lifecycle flips. Each carries a required-current-status precondition and
// reports whether it applied, so concurrent transitions lose cleanly instead
// of double-processing.

func (s *PostgresStore) SetRoundRevealed(ctx context.Context, roundID, status string, winnerSuggestionID *string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rounds
		SET status=$2, winner_suggestion_id=$3, revealed_at=NOW()
		WHERE id=$1 AND status='VOTING'
	`, roundID, status, winnerSuggestionID)
	if err != nil {
		return false, fmt.Errorf("reveal round: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reveal round rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) SetTieBreakWinner(ctx context.Context, roundID, suggestionID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rounds
		SET status='REVEALED', winner_suggestion_id=$2
		WHERE id=$1 AND status='TIE_BREAKING'
	`, roundID, suggestionID)
	if err != nil {
		return false, fmt.Errorf("break tie: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("break tie rows: %w", err)
	}
	return affected > 0, nil
}

// CompleteRound moves the round to COMPLETED and creates its selected movie
// in one transaction.
func (s *PostgresStore) CompleteRound(ctx context.Context, selection SelectedMovie) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin complete round: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE rounds
		SET status='COMPLETED', completed_at=NOW()
		WHERE id=$1 AND status='REVEALED'
	`, selection.RoundID)
	if err != nil {
		return false, fmt.Errorf("complete round: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete round rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO selected_movies (id, round_id, club_id, suggestion_id, watch_by)
		VALUES ($1, $2, $3, $4, $5)
	`, selection.ID, selection.RoundID, selection.ClubID, selection.SuggestionID, selection.WatchBy); err != nil {
		return false, fmt.Errorf("insert selected movie: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit complete round: %w", err)
	}
	return true, nil
}

// Selections and ratings

func (s *PostgresStore) GetSelectedMovie(ctx context.Context, selectionID string) (SelectedMovie, error) {
	var item SelectedMovie
	err := s.db.QueryRowContext(ctx, `
		SELECT id, round_id, club_id, suggestion_id, watch_by, watched, watched_at, created_at
		FROM selected_movies
		WHERE id=$1
	`, selectionID).Scan(
		&item.ID,
		&item.RoundID,
		&item.ClubID,
		&item.SuggestionID,
		&item.WatchBy,
		&item.Watched,
		&item.WatchedAt,
		&item.CreatedAt,
	)
	if err != nil {
		return SelectedMovie{}, err
	}
	return item, nil
}

func (s *PostgresStore) MarkWatched(ctx context.Context, selectionID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE selected_movies
		SET watched=TRUE, watched_at=COALESCE(watched_at, NOW())
		WHERE id=$1
	`, selectionID)
	if err != nil {
		return false, fmt.Errorf("mark watched: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark watched rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) UpsertRating(ctx context.Context, rating Rating) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (selected_movie_id, member_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (selected_movie_id, member_id) DO UPDATE SET value=EXCLUDED.value, rated_at=NOW()
	`, rating.SelectedMovieID, rating.MemberID, rating.Value)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// RatingSummary returns the derived average and count; the average is never
// stored.
func (s *PostgresStore) RatingSummary(ctx context.Context, selectionID string) (float64, int, error) {
	var average float64
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(value), 0)::float8, COUNT(*)
		FROM ratings
		WHERE selected_movie_id=$1
	`, selectionID).Scan(&average, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating summary: %w", err)
	}
	return average, count, nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, clubID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sm.id, sm.round_id, sm.suggestion_id, sg.title, sg.release_year, sg.poster_key,
			sm.watch_by, sm.watched, sm.watched_at, sm.created_at,
			COALESCE(AVG(r.value), 0)::float8, COUNT(r.value)
		FROM selected_movies sm
		JOIN suggestions sg ON sg.id = sm.suggestion_id
		LEFT JOIN ratings r ON r.selected_movie_id = sm.id
		WHERE sm.club_id=$1
		GROUP BY sm.id, sg.id
		ORDER BY sm.created_at DESC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	items := make([]HistoryEntry, 0)
	for rows.Next() {
		var item HistoryEntry
		if err := rows.Scan(
			&item.SelectionID,
			&item.RoundID,
			&item.SuggestionID,
			&item.Title,
			&item.ReleaseYear,
			&item.PosterKey,
			&item.WatchBy,
			&item.Watched,
			&item.WatchedAt,
			&item.SelectedAt,
			&item.AverageRating,
			&item.RatingCount,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return items, nil
}
