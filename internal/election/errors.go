package election

import "errors"

// Reason is the code passed to the error handler of CastVote
type Reason string

const (
	ReasonVoterNotRegistered Reason = "voter_not_registered"
	ReasonCandidateNotFound  Reason = "candidate_not_found"
	ReasonAlreadyVoted       Reason = "already_voted"
)

var (
	ErrVoterNotRegistered = errors.New(string(ReasonVoterNotRegistered))
	ErrCandidateNotFound  = errors.New(string(ReasonCandidateNotFound))
	ErrAlreadyVoted       = errors.New(string(ReasonAlreadyVoted))
)

// ReasonOf maps a Cast error back to its reason code.
// Unknown errors yield an empty reason.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrVoterNotRegistered):
		return ReasonVoterNotRegistered
	case errors.Is(err, ErrCandidateNotFound):
		return ReasonCandidateNotFound
	case errors.Is(err, ErrAlreadyVoted):
		return ReasonAlreadyVoted
	}
	return ""
}
