package store

import (
	"sync"
	"time"

	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/projection"
)

// Result is the outcome of one refresh cycle
type Result struct {
	Snapshot models.SnapshotInfo `json:"snapshot"`
	Report   projection.Report   `json:"report"`
}

// Store holds the latest refresh result in memory for the session
type Store struct {
	mu          sync.RWMutex
	latest      *Result
	lastUpdated time.Time
}

// New creates a new in-memory store
func New() *Store {
	return &Store{}
}

// Put replaces the latest result
func (s *Store) Put(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &r
	s.lastUpdated = time.Now()
}

// Latest returns the most recent result, and false before the first refresh
func (s *Store) Latest() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// GetGame returns one game projection from the latest result by game ID
func (s *Store) GetGame(id string) (projection.GameAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return projection.GameAnalysis{}, false
	}
	for _, g := range s.latest.Report.Games {
		if g.Line.GameID == id {
			return g, true
		}
	}
	return projection.GameAnalysis{}, false
}

// LastUpdated returns when the store was last updated
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Clear drops the latest result
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
	s.lastUpdated = time.Time{}
}
