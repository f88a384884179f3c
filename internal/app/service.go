package app

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"matinee/api/internal/club"
	"matinee/api/internal/config"
	"matinee/api/internal/store"
	"matinee/api/internal/tally"
	"matinee/api/internal/util"
)

// SuggestionInput is the pre-resolved movie metadata attached to a round.
// Catalog lookup happens upstream; the engine only stores what it is given.
type SuggestionInput struct {
	ExternalRef string `json:"externalRef"`
	Title       string `json:"title"`
	ReleaseYear *int   `json:"releaseYear"`
	PosterKey   string `json:"posterKey"`
	Summary     string `json:"summary"`
}

type dataStore interface {
	GetClub(context.Context, string) (store.Club, error)
	ListRotation(context.Context, string) ([]store.RotationEntry, error)
	ReplaceRotation(context.Context, string, []string) error
	LatestCompletedSuggester(context.Context, string) (string, error)
	GetOpenRound(context.Context, string) (*store.Round, error)
	InsertRound(context.Context, store.Round) error
	GetRound(context.Context, string) (store.Round, error)
	AttachSuggestions(context.Context, string, []store.Suggestion) (bool, error)
	ListSuggestions(context.Context, string) ([]store.Suggestion, error)
	GetSuggestion(context.Context, string) (store.Suggestion, error)
	SetSuggestionPoster(context.Context, string, string) (bool, error)
	UpsertVote(context.Context, string, string, map[string]int) error
	ListVotes(context.Context, string) ([]store.VoteRanking, error)
	SetRoundRevealed(context.Context, string, string, *string) (bool, error)
	SetTieBreakWinner(context.Context, string, string) (bool, error)
	CompleteRound(context.Context, store.SelectedMovie) (bool, error)
	GetSelectedMovie(context.Context, string) (store.SelectedMovie, error)
	MarkWatched(context.Context, string) (bool, error)
	UpsertRating(context.Context, store.Rating) error
	RatingSummary(context.Context, string) (float64, int, error)
	ListHistory(context.Context, string) ([]store.HistoryEntry, error)
	Ping(ctx context.Context) error
}

// membershipService resolves who is currently in a club and with what role.
type membershipService interface {
	IsMember(ctx context.Context, clubID, memberID string) (bool, error)
	IsAdmin(ctx context.Context, clubID, memberID string) (bool, error)
	CurrentMembers(ctx context.Context, clubID string) ([]string, error)
}

type Service struct {
	cfg     config.Config
	store   dataStore
	members membershipService
	now     func() time.Time
}

func New(cfg config.Config, dataStore *store.PostgresStore, members *club.Service) *Service {
	return &Service{
		cfg:     cfg,
		store:   dataStore,
		members: members,
		now:     time.Now,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Rotation

func (s *Service) Rotation(ctx context.Context, clubID, actorID string) (map[string]any, error) {
	if err := s.requireMember(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListRotation(ctx, clubID)
	if err != nil {
		return nil, err
	}
	active, err := s.memberSet(ctx, clubID)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		_, isActive := active[entry.MemberID]
		items = append(items, map[string]any{
			"memberId": entry.MemberID,
			"position": entry.Position,
			"active":   isActive,
		})
	}
	return map[string]any{"rotation": items}, nil
}

// UpdateRotation replaces the whole rotation. The new order must be exactly
// the current membership as a set.
func (s *Service) UpdateRotation(ctx context.Context, clubID, actorID string, order []string) (map[string]any, error) {
	if err := s.requireAdmin(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	members, err := s.members.CurrentMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !sameSet(order, members) {
		return nil, domainError(http.StatusUnprocessableEntity, "ROTATION_NOT_ALL_MEMBERS",
			"New order must contain every current member exactly once", map[string]any{"members": members})
	}
	if err := s.store.ReplaceRotation(ctx, clubID, order); err != nil {
		return nil, err
	}
	return s.Rotation(ctx, clubID, actorID)
}

// RandomizeRotation shuffles the stored entries and replaces them with dense
// positions. An empty rotation is seeded from the current membership first.
func (s *Service) RandomizeRotation(ctx context.Context, clubID, actorID string) (map[string]any, error) {
	if err := s.requireAdmin(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListRotation(ctx, clubID)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		order = append(order, entry.MemberID)
	}
	if len(order) == 0 {
		order, err = s.members.CurrentMembers(ctx, clubID)
		if err != nil {
			return nil, err
		}
	}

	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	if err := s.store.ReplaceRotation(ctx, clubID, order); err != nil {
		return nil, err
	}
	return s.Rotation(ctx, clubID, actorID)
}

func (s *Service) CurrentTurn(ctx context.Context, clubID, actorID string) (map[string]any, error) {
	if err := s.requireMember(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	memberID, err := s.currentTurnMember(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if memberID == "" {
		return map[string]any{"memberId": nil}, nil
	}
	return map[string]any{"memberId": memberID}, nil
}

// currentTurnMember computes whose turn it is to suggest. Departed members
// stay in the stored rotation but are invisible here; their slots are
// skipped, never deleted. Returns "" when no active entry exists.
func (s *Service) currentTurnMember(ctx context.Context, clubID string) (string, error) {
	entries, err := s.store.ListRotation(ctx, clubID)
	if err != nil {
		return "", err
	}
	activeSet, err := s.memberSet(ctx, clubID)
	if err != nil {
		return "", err
	}

	active := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, ok := activeSet[entry.MemberID]; ok {
			active = append(active, entry.MemberID)
		}
	}
	if len(active) == 0 {
		return "", nil
	}

	last, err := s.store.LatestCompletedSuggester(ctx, clubID)
	if err != nil {
		return "", err
	}
	if last == "" {
		return active[0], nil
	}
	for i, memberID := range active {
		if memberID == last {
			return active[(i+1)%len(active)], nil
		}
	}
	// Last suggester has departed; the turn resets to the head.
	return active[0], nil
}

// Round lifecycle

func (s *Service) StartRound(ctx context.Context, clubID, actorID string) (map[string]any, error) {
	if err := s.requireMember(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetClub(ctx, clubID); err != nil {
		return nil, err
	}

	open, err := s.store.GetOpenRound(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domainError(http.StatusConflict, "ROUND_ALREADY_ACTIVE",
			"Club already has a round in progress", map[string]any{"roundId": open.ID})
	}

	turn, err := s.currentTurnMember(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if turn != actorID {
		admin, err := s.members.IsAdmin(ctx, clubID, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, domainError(http.StatusForbidden, "TURN_VIOLATION",
				"It is not your turn to suggest", map[string]any{"memberId": turn})
		}
	}

	round := store.Round{
		ID:          util.NewID("rnd"),
		ClubID:      clubID,
		SuggesterID: actorID,
		Status:      store.RoundSuggesting,
	}
	if err := s.store.InsertRound(ctx, round); err != nil {
		return nil, err
	}
	return map[string]any{
		"roundId":     round.ID,
		"clubId":      clubID,
		"suggesterId": actorID,
		"status":      round.Status,
	}, nil
}

func (s *Service) RoundDetail(ctx context.Context, roundID, actorID string) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, round.ClubID, actorID); err != nil {
		return nil, err
	}
	suggestions, err := s.store.ListSuggestions(ctx, roundID)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"roundId":     round.ID,
		"clubId":      round.ClubID,
		"suggesterId": round.SuggesterID,
		"status":      round.Status,
		"winnerId":    round.WinnerSuggestionID,
		"createdAt":   round.CreatedAt,
		"revealedAt":  round.RevealedAt,
		"completedAt": round.CompletedAt,
		"suggestions": suggestionPayloads(suggestions),
	}

	// Ballots stay sealed until the round leaves VOTING.
	if round.Status == store.RoundRevealed || round.Status == store.RoundTieBreaking || round.Status == store.RoundCompleted {
		votes, err := s.store.ListVotes(ctx, roundID)
		if err != nil {
			return nil, err
		}
		votePayloads := make([]map[string]any, 0, len(votes))
		for _, vote := range votes {
			votePayloads = append(votePayloads, map[string]any{
				"voterId":      vote.VoterID,
				"suggestionId": vote.SuggestionID,
				"rank":         vote.Rank,
			})
		}
		payload["votes"] = votePayloads
	}
	return payload, nil
}

func (s *Service) AddSuggestions(ctx context.Context, roundID, actorID string, inputs []SuggestionInput) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.SuggesterID != actorID {
		return nil, errForbidden()
	}
	if round.Status != store.RoundSuggesting {
		if round.Status == store.RoundVoting {
			return nil, domainError(http.StatusConflict, "SUGGESTIONS_EXIST",
				"Suggestions were already attached to this round", nil)
		}
		return nil, errWrongState(round.Status)
	}

	clubRecord, err := s.store.GetClub(ctx, round.ClubID)
	if err != nil {
		return nil, err
	}
	if len(inputs) != clubRecord.SuggestionCount {
		return nil, domainError(http.StatusUnprocessableEntity, "WRONG_SUGGESTION_COUNT",
			"Wrong number of suggestions", map[string]any{"expected": clubRecord.SuggestionCount, "got": len(inputs)})
	}
	for _, input := range inputs {
		if input.Title == "" || input.ExternalRef == "" {
			return nil, errValidation("Each suggestion needs a title and an external reference", nil)
		}
	}

	items := make([]store.Suggestion, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, store.Suggestion{
			ID:          util.NewID("sug"),
			RoundID:     roundID,
			ExternalRef: input.ExternalRef,
			Title:       input.Title,
			ReleaseYear: input.ReleaseYear,
			PosterKey:   input.PosterKey,
			Summary:     input.Summary,
		})
	}

	applied, err := s.store.AttachSuggestions(ctx, roundID, items)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another attach; the first batch stands.
		return nil, domainError(http.StatusConflict, "SUGGESTIONS_EXIST",
			"Suggestions were already attached to this round", nil)
	}

	return map[string]any{
		"roundId":     roundID,
		"clubId":      round.ClubID,
		"status":      store.RoundVoting,
		"suggestions": suggestionPayloads(items),
	}, nil
}

func (s *Service) SubmitVote(ctx context.Context, roundID, actorID string, rankings map[string]int) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != store.RoundVoting {
		return nil, errWrongState(round.Status)
	}
	if round.SuggesterID == actorID {
		return nil, domainError(http.StatusForbidden, "SUGGESTER_CANNOT_VOTE",
			"The suggester does not vote on their own round", nil)
	}
	if err := s.requireMember(ctx, round.ClubID, actorID); err != nil {
		return nil, err
	}

	suggestions, err := s.store.ListSuggestions(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if err := validateRankings(suggestions, rankings); err != nil {
		return nil, err
	}

	if err := s.store.UpsertVote(ctx, roundID, actorID, rankings); err != nil {
		return nil, err
	}
	return map[string]any{"roundId": roundID, "clubId": round.ClubID, "voterId": actorID}, nil
}

// Reveal tallies the ballots and moves the round to REVEALED on a single
// winner or TIE_BREAKING on an unresolved tie. Completeness is judged
// against membership at reveal time: joiners owe a ballot, leavers are
// excused (though their recorded rankings still count).
func (s *Service) Reveal(ctx context.Context, roundID, actorID string) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != store.RoundVoting {
		return nil, errWrongState(round.Status)
	}
	if round.SuggesterID != actorID {
		admin, err := s.members.IsAdmin(ctx, round.ClubID, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, errForbidden()
		}
	}

	members, err := s.members.CurrentMembers(ctx, round.ClubID)
	if err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, roundID)
	if err != nil {
		return nil, err
	}

	voted := make(map[string]bool)
	for _, vote := range votes {
		voted[vote.VoterID] = true
	}
	var missing []string
	for _, memberID := range members {
		if memberID == round.SuggesterID {
			continue
		}
		if !voted[memberID] {
			missing = append(missing, memberID)
		}
	}
	if len(missing) > 0 {
		return nil, domainError(http.StatusConflict, "INCOMPLETE_VOTING",
			"Not every member has voted yet", map[string]any{"missing": missing})
	}

	outcome, err := s.tallyRound(ctx, roundID, votes)
	if err != nil {
		return nil, err
	}

	if outcome.Resolved() {
		winnerID := outcome.WinnerID
		applied, err := s.store.SetRoundRevealed(ctx, roundID, store.RoundRevealed, &winnerID)
		if err != nil {
			return nil, err
		}
		if !applied {
			// A concurrent reveal won; this caller observes the flip.
			return nil, errWrongState(store.RoundRevealed)
		}
		return map[string]any{
			"roundId":  roundID,
			"clubId":   round.ClubID,
			"status":   store.RoundRevealed,
			"winnerId": winnerID,
			"scores":   outcome.Scores,
		}, nil
	}

	applied, err := s.store.SetRoundRevealed(ctx, roundID, store.RoundTieBreaking, nil)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errWrongState(store.RoundTieBreaking)
	}
	return map[string]any{
		"roundId":           roundID,
		"clubId":            round.ClubID,
		"status":            store.RoundTieBreaking,
		"tiedSuggestionIds": outcome.TiedIDs,
		"scores":            outcome.Scores,
	}, nil
}

// BreakTie resolves a TIE_BREAKING round manually. The chosen suggestion
// must belong to the tied set, which is recomputed from the recorded
// ballots; the tally is deterministic, so this matches what reveal returned.
func (s *Service) BreakTie(ctx context.Context, roundID, actorID, suggestionID string) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != store.RoundTieBreaking {
		return nil, errWrongState(round.Status)
	}
	if round.SuggesterID != actorID {
		return nil, errForbidden()
	}

	votes, err := s.store.ListVotes(ctx, roundID)
	if err != nil {
		return nil, err
	}
	outcome, err := s.tallyRound(ctx, roundID, votes)
	if err != nil {
		return nil, err
	}
	valid := false
	for _, tiedID := range outcome.TiedIDs {
		if tiedID == suggestionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_TIE_CHOICE",
			"Chosen suggestion is not part of the tied set", map[string]any{"tiedSuggestionIds": outcome.TiedIDs})
	}

	applied, err := s.store.SetTieBreakWinner(ctx, roundID, suggestionID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errWrongState(store.RoundRevealed)
	}
	return map[string]any{
		"roundId":  roundID,
		"clubId":   round.ClubID,
		"status":   store.RoundRevealed,
		"winnerId": suggestionID,
	}, nil
}

func (s *Service) SelectMovie(ctx context.Context, roundID, actorID string, watchBy time.Time) (map[string]any, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, round.ClubID, actorID); err != nil {
		return nil, err
	}
	if round.Status != store.RoundRevealed {
		return nil, errWrongState(round.Status)
	}
	if round.WinnerSuggestionID == nil {
		return nil, domainError(http.StatusConflict, "NO_WINNER", "Round has no winner to select", nil)
	}
	// Instants compared in UTC, no calendar-day rounding.
	if !watchBy.After(s.now().UTC()) {
		return nil, domainError(http.StatusUnprocessableEntity, "PAST_WATCH_DATE",
			"Watch-by date must be in the future", nil)
	}

	selection := store.SelectedMovie{
		ID:           util.NewID("sel"),
		RoundID:      roundID,
		ClubID:       round.ClubID,
		SuggestionID: *round.WinnerSuggestionID,
		WatchBy:      watchBy,
	}
	applied, err := s.store.CompleteRound(ctx, selection)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errWrongState(store.RoundCompleted)
	}

	winner, err := s.store.GetSuggestion(ctx, selection.SuggestionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"selectionId":  selection.ID,
		"roundId":      roundID,
		"clubId":       round.ClubID,
		"suggestionId": selection.SuggestionID,
		"title":        winner.Title,
		"releaseYear":  winner.ReleaseYear,
		"summary":      winner.Summary,
		"watchBy":      watchBy,
		"status":       store.RoundCompleted,
	}, nil
}

// Selections

func (s *Service) MarkWatched(ctx context.Context, selectionID, actorID string) (map[string]any, error) {
	selection, err := s.store.GetSelectedMovie(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, selection.ClubID, actorID); err != nil {
		return nil, err
	}
	if _, err := s.store.MarkWatched(ctx, selectionID); err != nil {
		return nil, err
	}
	return map[string]any{
		"selectionId": selectionID,
		"clubId":      selection.ClubID,
		"roundId":     selection.RoundID,
		"watched":     true,
	}, nil
}

func (s *Service) SubmitRating(ctx context.Context, selectionID, actorID string, value float64) (map[string]any, error) {
	selection, err := s.store.GetSelectedMovie(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	member, err := s.members.IsMember(ctx, selection.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errNotMember()
	}
	if !validRating(value) {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_RATING",
			"Rating must be a half-point value between 0.5 and 5.0", map[string]any{"value": value})
	}

	if err := s.store.UpsertRating(ctx, store.Rating{
		SelectedMovieID: selectionID,
		MemberID:        actorID,
		Value:           value,
	}); err != nil {
		return nil, err
	}

	average, count, err := s.store.RatingSummary(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"selectionId":   selectionID,
		"clubId":        selection.ClubID,
		"averageRating": average,
		"ratingCount":   count,
	}, nil
}

// ClubInfo returns the club record for members.
func (s *Service) ClubInfo(ctx context.Context, clubID, actorID string) (store.Club, error) {
	if err := s.requireMember(ctx, clubID, actorID); err != nil {
		return store.Club{}, err
	}
	return s.store.GetClub(ctx, clubID)
}

// History

func (s *Service) HistoryEntries(ctx context.Context, clubID, actorID string) ([]store.HistoryEntry, error) {
	if err := s.requireMember(ctx, clubID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, clubID)
}

func (s *Service) History(ctx context.Context, clubID, actorID string) (map[string]any, error) {
	entries, err := s.HistoryEntries(ctx, clubID, actorID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]any{
			"selectionId":   entry.SelectionID,
			"roundId":       entry.RoundID,
			"suggestionId":  entry.SuggestionID,
			"title":         entry.Title,
			"releaseYear":   entry.ReleaseYear,
			"posterKey":     entry.PosterKey,
			"watchBy":       entry.WatchBy,
			"watched":       entry.Watched,
			"watchedAt":     entry.WatchedAt,
			"selectedAt":    entry.SelectedAt,
			"averageRating": entry.AverageRating,
			"ratingCount":   entry.RatingCount,
		})
	}
	return map[string]any{"history": items}, nil
}

// Posters

// PosterUploadTarget authorizes a poster upload: only the round's suggester
// may attach artwork to a suggestion.
func (s *Service) PosterUploadTarget(ctx context.Context, suggestionID, actorID string) (store.Suggestion, error) {
	suggestion, err := s.store.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return store.Suggestion{}, err
	}
	round, err := s.store.GetRound(ctx, suggestion.RoundID)
	if err != nil {
		return store.Suggestion{}, err
	}
	if round.SuggesterID != actorID {
		return store.Suggestion{}, errForbidden()
	}
	return suggestion, nil
}

func (s *Service) SetPosterKey(ctx context.Context, suggestionID, key string) error {
	updated, err := s.store.SetSuggestionPoster(ctx, suggestionID, key)
	if err != nil {
		return err
	}
	if !updated {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
	return nil
}

// PosterViewTarget authorizes poster display for any club member.
func (s *Service) PosterViewTarget(ctx context.Context, suggestionID, actorID string) (store.Suggestion, error) {
	suggestion, err := s.store.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return store.Suggestion{}, err
	}
	round, err := s.store.GetRound(ctx, suggestion.RoundID)
	if err != nil {
		return store.Suggestion{}, err
	}
	if err := s.requireMember(ctx, round.ClubID, actorID); err != nil {
		return store.Suggestion{}, err
	}
	if suggestion.PosterKey == "" {
		return store.Suggestion{}, domainError(http.StatusNotFound, "NOT_FOUND", "Suggestion has no poster", nil)
	}
	return suggestion, nil
}

// Helpers

func (s *Service) tallyRound(ctx context.Context, roundID string, votes []store.VoteRanking) (tally.Outcome, error) {
	suggestions, err := s.store.ListSuggestions(ctx, roundID)
	if err != nil {
		return tally.Outcome{}, err
	}
	ids := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		ids = append(ids, suggestion.ID)
	}

	byVoter := make(map[string]map[string]int)
	var order []string
	for _, vote := range votes {
		if byVoter[vote.VoterID] == nil {
			byVoter[vote.VoterID] = make(map[string]int)
			order = append(order, vote.VoterID)
		}
		byVoter[vote.VoterID][vote.SuggestionID] = vote.Rank
	}
	ballots := make([]tally.Ballot, 0, len(order))
	for _, voterID := range order {
		ballots = append(ballots, tally.Ballot{VoterID: voterID, Rankings: byVoter[voterID]})
	}

	return tally.Count(ids, ballots), nil
}

func (s *Service) requireMember(ctx context.Context, clubID, actorID string) error {
	member, err := s.members.IsMember(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !member {
		return errNotMember()
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, clubID, actorID string) error {
	admin, err := s.members.IsAdmin(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return errForbidden()
	}
	return nil
}

func (s *Service) memberSet(ctx context.Context, clubID string) (map[string]struct{}, error) {
	members, err := s.members.CurrentMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(members))
	for _, memberID := range members {
		set[memberID] = struct{}{}
	}
	return set, nil
}

// validateRankings checks that rankings form a bijection onto the suggestion
// set with contiguous ranks 1..S.
func validateRankings(suggestions []store.Suggestion, rankings map[string]int) error {
	count := len(suggestions)
	if len(rankings) != count {
		return domainError(http.StatusUnprocessableEntity, "INVALID_RANKINGS",
			"Every suggestion must be ranked exactly once", map[string]any{"expected": count, "got": len(rankings)})
	}

	known := make(map[string]struct{}, count)
	for _, suggestion := range suggestions {
		known[suggestion.ID] = struct{}{}
	}
	seenRanks := make(map[int]struct{}, count)
	for suggestionID, rank := range rankings {
		if _, ok := known[suggestionID]; !ok {
			return domainError(http.StatusUnprocessableEntity, "INVALID_RANKINGS",
				"Ranking references an unknown suggestion", map[string]any{"suggestionId": suggestionID})
		}
		if rank < 1 || rank > count {
			return domainError(http.StatusUnprocessableEntity, "INVALID_RANKINGS",
				"Ranks must run from 1 to the suggestion count", map[string]any{"rank": rank})
		}
		if _, dup := seenRanks[rank]; dup {
			return domainError(http.StatusUnprocessableEntity, "INVALID_RANKINGS",
				"Each rank may be used only once", map[string]any{"rank": rank})
		}
		seenRanks[rank] = struct{}{}
	}
	return nil
}

func validRating(value float64) bool {
	if value < 0.5 || value > 5.0 {
		return false
	}
	scaled := value * 2
	return scaled == math.Trunc(scaled)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
		if seen[id] > 1 {
			return false
		}
	}
	for _, id := range b {
		if seen[id] != 1 {
			return false
		}
	}
	return true
}

func suggestionPayloads(items []store.Suggestion) []map[string]any {
	payloads := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, map[string]any{
			"suggestionId": item.ID,
			"externalRef":  item.ExternalRef,
			"title":        item.Title,
			"releaseYear":  item.ReleaseYear,
			"posterKey":    item.PosterKey,
			"summary":      item.Summary,
		})
	}
	return payloads
}
