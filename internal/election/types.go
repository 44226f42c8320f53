package election

import "fmt"

// Candidate represents a person standing in an election
type Candidate struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Party string `json:"party" yaml:"party"`
}

// Voter represents a person asking to take part in an election
type Voter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Record returns the voter as a field map for validation
func (v Voter) Record() Record {
	return Record{
		"id":   v.ID,
		"name": v.Name,
		"age":  v.Age,
	}
}

// Ballot is handed to the success handler of a vote
type Ballot struct {
	VoterID     string `json:"voterId"`
	CandidateID string `json:"candidateId"`
}

// Result is one candidate row of the election results
type Result struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

// String formats the result as "<Name> (<Votes>)"
func (r Result) String() string {
	return fmt.Sprintf("%s (%d)", r.Name, r.Votes)
}

// Tally maps candidate ids to accumulated vote counts
type Tally map[string]int
