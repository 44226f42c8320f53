package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/civic-registry/internal/election"
)

// ErrDuplicateElection is returned by Registry.Create for a taken id
var ErrDuplicateElection = errors.New("election already exists")

// ElectionEntry is one election served over HTTP. The election itself is not
// safe for concurrent use, so every access goes through mu.
type ElectionEntry struct {
	ID string

	mu       sync.Mutex
	election *election.Election
	hub      *Hub
}

// LiveUpdate is the message sent to live clients
type LiveUpdate struct {
	Type     string              `json:"type"`
	Election string              `json:"election"`
	Results  []election.Result   `json:"results"`
	Winner   *election.Candidate `json:"winner"`
}

// Registry holds the elections created at runtime or from the seed
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*ElectionEntry
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		entries: make(map[string]*ElectionEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Create registers a new election. An empty id gets a random UUID.
func (r *Registry) Create(id string, candidates []election.Candidate) (*ElectionEntry, error) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return nil, fmt.Errorf("election %q: %w", id, ErrDuplicateElection)
	}

	entry := &ElectionEntry{
		ID:       id,
		election: election.New(candidates),
		hub:      NewHub(),
	}
	go entry.hub.Run(r.ctx)

	r.entries[id] = entry
	return entry, nil
}

// Get looks up an election by id
func (r *Registry) Get(id string) (*ElectionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// IDs returns all election ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops the live hubs of all elections
func (r *Registry) Close() {
	r.cancel()
}

// With runs fn while holding the entry lock
func (e *ElectionEntry) With(fn func(*election.Election)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.election)
}

// Snapshot encodes the current results as a LiveUpdate
func (e *ElectionEntry) Snapshot() ([]byte, error) {
	update := LiveUpdate{Type: "results", Election: e.ID}
	e.With(func(el *election.Election) {
		update.Results = el.Results(nil)
		if winner, ok := el.Winner(); ok {
			update.Winner = &winner
		}
	})
	return json.Marshal(update)
}

// publish pushes the current results to live clients
func (e *ElectionEntry) publish() error {
	snapshot, err := e.Snapshot()
	if err != nil {
		return err
	}
	e.hub.Broadcast(snapshot)
	return nil
}
