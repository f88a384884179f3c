package store

import "time"

// Round lifecycle statuses. Transitions only ever move forward; the SQL
// preconditions in postgres.go enforce this a second time under concurrency.
const (
	RoundSuggesting  = "SUGGESTING"
	RoundVoting      = "VOTING"
	RoundRevealed    = "REVEALED"
	RoundTieBreaking = "TIE_BREAKING"
	RoundCompleted   = "COMPLETED"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type Club struct {
	ID              string
	Name            string
	SuggestionCount int
	InviteCodeHash  string
	CreatedAt       time.Time
}

type ClubMember struct {
	ClubID      string
	MemberID    string
	DisplayName string
	Role        string
	JoinedAt    time.Time
}

type RotationEntry struct {
	ClubID   string
	MemberID string
	Position int
}

type Round struct {
	ID                 string
	ClubID             string
	SuggesterID        string
	Status             string
	WinnerSuggestionID *string
	CreatedAt          time.Time
	RevealedAt         *time.Time
	CompletedAt        *time.Time
}

type Suggestion struct {
	ID          string
	RoundID     string
	ExternalRef string
	Title       string
	ReleaseYear *int
	PosterKey   string
	Summary     string
}

type VoteRanking struct {
	RoundID      string
	VoterID      string
	SuggestionID string
	Rank         int
}

type SelectedMovie struct {
	ID           string
	RoundID      string
	ClubID       string
	SuggestionID string
	WatchBy      time.Time
	Watched      bool
	WatchedAt    *time.Time
	CreatedAt    time.Time
}

type Rating struct {
	SelectedMovieID string
	MemberID        string
	Value           float64
}

// HistoryEntry is a selected movie joined with its suggestion metadata and
// aggregated ratings, for the club history views.
type HistoryEntry struct {
	SelectionID   string
	RoundID       string
	SuggestionID  string
	Title         string
	ReleaseYear   *int
	PosterKey     string
	WatchBy       time.Time
	Watched       bool
	WatchedAt     *time.Time
	SelectedAt    time.Time
	AverageRating float64
	RatingCount   int
}
