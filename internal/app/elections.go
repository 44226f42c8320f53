package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/klabast/wb-services/civic-registry/internal/election"
)

// CreateElection creates an election from a candidate list (edit mode only)
func CreateElection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireEditMode(w) {
		return
	}

	var req struct {
		ID         string               `json:"id"`
		Candidates []election.Candidate `json:"candidates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := Elections.Create(req.ID, req.Candidates)
	if errors.Is(err, ErrDuplicateElection) {
		http.Error(w, ErrElectionExists, http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Error creating election: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Election %s created with %d candidates", entry.ID, len(req.Candidates))
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "id": entry.ID})
}

// HandleElection routes per-election requests
// URL: /api/elections/{id}/{results|winner|voters|votes|live}
func HandleElection(w http.ResponseWriter, r *http.Request) {
	id, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/api/elections/"), "/")

	entry, ok := Elections.Get(id)
	if !ok {
		http.Error(w, ErrElectionNotFound, http.StatusNotFound)
		return
	}

	switch action {
	case "results":
		electionResults(w, r, entry)
	case "winner":
		electionWinner(w, r, entry)
	case "voters":
		RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			registerVoter(w, r, entry)
		})(w, r)
	case "votes":
		RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			castVote(w, r, entry)
		})(w, r)
	case "live":
		serveLive(w, r, entry)
	default:
		http.Error(w, ErrUnknownAction, http.StatusNotFound)
	}
}

// electionResults returns the results, ordered by votes or by name (?order=name)
func electionResults(w http.ResponseWriter, r *http.Request, entry *ElectionEntry) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var order func(a, b election.Result) int
	switch r.URL.Query().Get("order") {
	case "", "votes":
	case "name":
		order = election.ByName
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	var results []election.Result
	entry.With(func(e *election.Election) {
		results = e.Results(order)
	})
	writeJSON(w, http.StatusOK, results)
}

func electionWinner(w http.ResponseWriter, r *http.Request, entry *ElectionEntry) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var winner *election.Candidate
	entry.With(func(e *election.Election) {
		if c, ok := e.Winner(); ok {
			winner = &c
		}
	})
	writeJSON(w, http.StatusOK, map[string]*election.Candidate{"winner": winner})
}

func registerVoter(w http.ResponseWriter, r *http.Request, entry *ElectionEntry) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireEditMode(w) {
		return
	}

	var voter election.Voter
	if err := json.NewDecoder(r.Body).Decode(&voter); err != nil {
		http.Error(w, ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	var registered bool
	entry.With(func(e *election.Election) {
		registered = e.RegisterVoter(voter)
	})

	status := http.StatusOK
	if !registered {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]bool{"registered": registered})
}

// voteReply carries the HTTP outcome chosen by the CastVote handlers
type voteReply struct {
	status int
	body   any
}

func castVote(w http.ResponseWriter, r *http.Request, entry *ElectionEntry) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireEditMode(w) {
		return
	}

	var req election.Ballot
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	var reply voteReply
	entry.With(func(e *election.Election) {
		reply = election.CastVote(e, req.VoterID, req.CandidateID,
			func(b election.Ballot) voteReply {
				return voteReply{status: http.StatusOK, body: b}
			},
			func(reason election.Reason) voteReply {
				return voteReply{status: http.StatusConflict, body: map[string]string{"reason": string(reason)}}
			},
		)
	})

	if reply.status == http.StatusOK {
		if err := entry.publish(); err != nil {
			log.Printf("Error publishing results for election %s: %v", entry.ID, err)
		}
	}
	writeJSON(w, reply.status, reply.body)
}
