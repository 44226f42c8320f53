// Package election tracks voter registration, one-vote-per-voter casting
// and tallies for a fixed list of candidates.
//
// An Election is not safe for concurrent use; callers that share one
// instance must serialize access themselves.
package election

import (
	"cmp"
	"slices"
	"strings"
)

// Election holds the private state of one election instance
type Election struct {
	order      []string
	candidates map[string]Candidate
	tally      Tally
	registered map[string]bool
	voted      map[string]bool
	eligible   VoteValidator
}

// New creates an election for the given candidates. All counts start at zero.
// A repeated candidate id keeps its first position and takes the later record.
func New(candidates []Candidate) *Election {
	e := &Election{
		candidates: make(map[string]Candidate, len(candidates)),
		tally:      make(Tally, len(candidates)),
		registered: make(map[string]bool),
		voted:      make(map[string]bool),
		eligible:   NewVoteValidator(Rules{MinAge: DefaultMinAge, RequiredFields: []string{"id"}}),
	}
	for _, c := range candidates {
		if _, exists := e.candidates[c.ID]; !exists {
			e.order = append(e.order, c.ID)
		}
		e.candidates[c.ID] = c
		e.tally[c.ID] = 0
	}
	return e
}

// RegisterVoter registers an adult voter with a non-blank id.
// It returns false for ineligible or already registered voters.
func (e *Election) RegisterVoter(v Voter) bool {
	if strings.TrimSpace(v.ID) == "" {
		return false
	}
	if !e.eligible(v.Record()).Valid {
		return false
	}
	if e.registered[v.ID] {
		return false
	}
	e.registered[v.ID] = true
	return true
}

// IsRegistered reports whether voterID was accepted by RegisterVoter
func (e *Election) IsRegistered(voterID string) bool {
	return e.registered[voterID]
}

// HasVoted reports whether voterID already cast its vote
func (e *Election) HasVoted(voterID string) bool {
	return e.voted[voterID]
}

// Cast records a vote. On rejection it returns ErrVoterNotRegistered,
// ErrCandidateNotFound or ErrAlreadyVoted, checked in that order.
func (e *Election) Cast(voterID, candidateID string) (Ballot, error) {
	if !e.registered[voterID] {
		return Ballot{}, ErrVoterNotRegistered
	}
	if _, ok := e.candidates[candidateID]; !ok {
		return Ballot{}, ErrCandidateNotFound
	}
	if e.voted[voterID] {
		return Ballot{}, ErrAlreadyVoted
	}

	e.tally = TallyPure(e.tally, candidateID)
	e.voted[voterID] = true
	return Ballot{VoterID: voterID, CandidateID: candidateID}, nil
}

// CastVote records a vote and invokes exactly one of the handlers:
// onSuccess with the ballot, or onError with the rejection reason.
// It returns whatever the invoked handler returns. A nil handler is a
// no-op returning the zero value of T.
func CastVote[T any](e *Election, voterID, candidateID string, onSuccess func(Ballot) T, onError func(Reason) T) T {
	var zero T
	ballot, err := e.Cast(voterID, candidateID)
	if err != nil {
		if onError == nil {
			return zero
		}
		return onError(ReasonOf(err))
	}
	if onSuccess == nil {
		return zero
	}
	return onSuccess(ballot)
}

// Results returns a fresh row per candidate. With a nil cmp the rows are
// ordered by descending votes, ties keeping candidate insertion order.
func (e *Election) Results(cmpFn func(a, b Result) int) []Result {
	results := make([]Result, 0, len(e.order))
	for _, id := range e.order {
		c := e.candidates[id]
		results = append(results, Result{
			ID:    c.ID,
			Name:  c.Name,
			Party: c.Party,
			Votes: e.tally[id],
		})
	}

	if cmpFn == nil {
		cmpFn = ByVotesDesc
	}
	slices.SortStableFunc(results, cmpFn)
	return results
}

// ByVotesDesc orders results by descending vote count
func ByVotesDesc(a, b Result) int {
	return cmp.Compare(b.Votes, a.Votes)
}

// ByName orders results alphabetically by candidate name
func ByName(a, b Result) int {
	return strings.Compare(a.Name, b.Name)
}

// Winner returns the candidate with the strictly highest count. The first
// candidate in insertion order wins a tie. It reports false while no vote
// has been cast.
func (e *Election) Winner() (Candidate, bool) {
	var (
		best  string
		votes int
	)
	for _, id := range e.order {
		if n := e.tally[id]; n > votes {
			best, votes = id, n
		}
	}
	if votes == 0 {
		return Candidate{}, false
	}
	return e.candidates[best], true
}

// Tally returns a copy of the current counts
func (e *Election) Tally() Tally {
	return TallyPure(e.tally, "")
}
