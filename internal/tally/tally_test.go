package tally

import (
	"math/rand"
	"testing"
)

func ballot(voter string, rankings map[string]int) Ballot {
	return Ballot{VoterID: voter, Rankings: rankings}
}

func TestCountSingleMinimumWins(t *testing.T) {
	outcome := Count([]string{"a", "b", "c"}, []Ballot{
		ballot("v1", map[string]int{"a": 1, "b": 2, "c": 3}),
		ballot("v2", map[string]int{"a": 1, "b": 3, "c": 2}),
	})
	if !outcome.Resolved() || outcome.WinnerID != "a" {
		t.Fatalf("expected winner a, got %+v", outcome)
	}
	if outcome.Scores["a"] != 2 || outcome.Scores["b"] != 5 || outcome.Scores["c"] != 5 {
		t.Fatalf("unexpected scores: %v", outcome.Scores)
	}
}

func TestCountNeverDeadLastFilterPicksWinner(t *testing.T) {
	// All three tie at 4, but only c was never ranked last.
	outcome := Count([]string{"a", "b", "c"}, []Ballot{
		ballot("v1", map[string]int{"a": 1, "b": 3, "c": 2}),
		ballot("v2", map[string]int{"b": 1, "a": 3, "c": 2}),
	})
	if outcome.WinnerID != "c" {
		t.Fatalf("expected winner c, got %+v", outcome)
	}
}

func TestCountZeroSurvivorFallbackStaysTied(t *testing.T) {
	// Both candidates were ranked last once, so the filter eliminates
	// everyone and the pre-filter set comes back; dead-last counts are
	// equal, leaving an unresolved tie.
	outcome := Count([]string{"a", "b"}, []Ballot{
		ballot("v1", map[string]int{"a": 1, "b": 2}),
		ballot("v2", map[string]int{"a": 2, "b": 1}),
	})
	if outcome.Resolved() {
		t.Fatalf("expected unresolved tie, got winner %s", outcome.WinnerID)
	}
	if len(outcome.TiedIDs) != 2 || outcome.TiedIDs[0] != "a" || outcome.TiedIDs[1] != "b" {
		t.Fatalf("unexpected tied set: %v", outcome.TiedIDs)
	}
}

func TestCountFewestDeadLastBreaksFallbackTie(t *testing.T) {
	// a and b tie at score 11 and both have at least one dead-last vote,
	// so the filter eliminates everyone; on the fallback set, a's single
	// dead-last beats b's two.
	outcome := Count([]string{"a", "b", "c", "d"}, []Ballot{
		ballot("v1", map[string]int{"a": 4, "b": 1, "c": 2, "d": 3}),
		ballot("v2", map[string]int{"a": 1, "b": 4, "c": 2, "d": 3}),
		ballot("v3", map[string]int{"a": 1, "b": 4, "c": 3, "d": 2}),
		ballot("v4", map[string]int{"a": 2, "b": 1, "c": 4, "d": 3}),
		ballot("v5", map[string]int{"a": 3, "b": 1, "c": 4, "d": 2}),
	})
	if outcome.WinnerID != "a" {
		t.Fatalf("expected winner a, got %+v", outcome)
	}
}

func TestCountScenarioTwoVotersThreeSuggestions(t *testing.T) {
	// X and Y tie at 3; Z is dead last for both voters. Neither X nor Y
	// was ever ranked last and neither has dead-last votes, so the tie
	// survives the full cascade.
	outcome := Count([]string{"x", "y", "z"}, []Ballot{
		ballot("v1", map[string]int{"x": 1, "y": 2, "z": 3}),
		ballot("v2", map[string]int{"x": 2, "y": 1, "z": 3}),
	})
	if outcome.Resolved() {
		t.Fatalf("expected tie, got winner %s", outcome.WinnerID)
	}
	if outcome.Scores["x"] != 3 || outcome.Scores["y"] != 3 || outcome.Scores["z"] != 6 {
		t.Fatalf("unexpected scores: %v", outcome.Scores)
	}
	if len(outcome.TiedIDs) != 2 || outcome.TiedIDs[0] != "x" || outcome.TiedIDs[1] != "y" {
		t.Fatalf("unexpected tied set: %v", outcome.TiedIDs)
	}
}

func TestCountScoreTotalIsFixedByBallotCount(t *testing.T) {
	// Every full ranking distributes the permutation 1..S, so total score
	// is always V*S*(S+1)/2 regardless of how the ballots fall.
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		s := 2 + rng.Intn(5)
		v := 1 + rng.Intn(6)

		ids := make([]string, s)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}

		ballots := make([]Ballot, 0, v)
		for voter := 0; voter < v; voter++ {
			rankings := make(map[string]int, s)
			for position, idx := range rng.Perm(s) {
				rankings[ids[idx]] = position + 1
			}
			ballots = append(ballots, Ballot{VoterID: string(rune('A' + voter)), Rankings: rankings})
		}

		outcome := Count(ids, ballots)
		total := 0
		for _, score := range outcome.Scores {
			total += score
		}
		if want := v * s * (s + 1) / 2; total != want {
			t.Fatalf("trial %d: total score %d, want %d (V=%d S=%d)", trial, total, want, v, s)
		}
	}
}

func TestCountNoBallots(t *testing.T) {
	outcome := Count([]string{"a", "b"}, nil)
	if outcome.Resolved() {
		t.Fatalf("expected tie with no ballots, got winner %s", outcome.WinnerID)
	}
	if len(outcome.TiedIDs) != 2 {
		t.Fatalf("expected both suggestions tied, got %v", outcome.TiedIDs)
	}
}
