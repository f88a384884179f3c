// Package tally implements the ranked-choice count used at reveal time.
// Votes assign each suggestion a rank from 1 to S; a suggestion's score is
// the sum of its ranks across all ballots, and the lowest score wins, golf
// style. Ties run through a deterministic cascade before falling back to
// manual resolution.
package tally

// Ballot is one voter's full ranking of the round's suggestions.
type Ballot struct {
	VoterID  string
	Rankings map[string]int
}

// Outcome is the tally result: either a single winner or the candidate set
// the cascade could not separate.
type Outcome struct {
	WinnerID string
	TiedIDs  []string
	Scores   map[string]int
}

// Resolved reports whether the tally produced a single winner.
func (o Outcome) Resolved() bool {
	return o.WinnerID != ""
}

// Count tallies the ballots over the given suggestion set.
//
// Cascade: minimum score, then drop any candidate some voter ranked dead
// last (falling back to the pre-filter set if that eliminates everyone),
// then fewest dead-last votes. Whatever survives with more than one member
// is an unresolved tie. Tied IDs preserve the order of suggestionIDs, so
// the outcome is deterministic for a given input.
func Count(suggestionIDs []string, ballots []Ballot) Outcome {
	scores := make(map[string]int, len(suggestionIDs))
	worst := len(suggestionIDs)
	deadLast := make(map[string]int, len(suggestionIDs))
	for _, id := range suggestionIDs {
		scores[id] = 0
	}
	for _, ballot := range ballots {
		for id, rank := range ballot.Rankings {
			scores[id] += rank
			if rank == worst {
				deadLast[id]++
			}
		}
	}

	candidates := minBy(suggestionIDs, scores)
	if len(candidates) == 1 {
		return Outcome{WinnerID: candidates[0], Scores: scores}
	}

	// Never-dead-last filter.
	survivors := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if deadLast[id] == 0 {
			survivors = append(survivors, id)
		}
	}
	if len(survivors) == 1 {
		return Outcome{WinnerID: survivors[0], Scores: scores}
	}
	if len(survivors) == 0 {
		survivors = candidates
	}

	finalists := minBy(survivors, deadLast)
	if len(finalists) == 1 {
		return Outcome{WinnerID: finalists[0], Scores: scores}
	}
	return Outcome{TiedIDs: finalists, Scores: scores}
}

// minBy returns the ids holding the minimum value, in input order.
func minBy(ids []string, values map[string]int) []string {
	var keep []string
	min := 0
	for i, id := range ids {
		value := values[id]
		switch {
		case i == 0 || value < min:
			min = value
			keep = keep[:0]
			keep = append(keep, id)
		case value == min:
			keep = append(keep, id)
		}
	}
	return keep
}
