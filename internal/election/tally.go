package election

import "maps"

// TallyPure returns a copy of current with the count for candidateID
// incremented by one. The input tally is never modified.
// A nil tally counts as empty; an empty candidateID yields an unchanged copy.
func TallyPure(current Tally, candidateID string) Tally {
	next := Tally{}
	if current != nil {
		next = maps.Clone(current)
	}
	if candidateID == "" {
		return next
	}
	next[candidateID]++
	return next
}
