package rtt

import (
	"sync"
	"time"

	"github.com/openrba/stepgate/core"
)

// TimingRecord tracks the outstanding token and completed samples of one
// timing connection. It is owned by exactly one collector run; only the
// registry map itself is shared across connections.
type TimingRecord struct {
	pending map[string]time.Time
	samples []float64
}

// Registry maps session keys to in-flight timing records. Entries are
// created when a connection is accepted and removed on every close path so
// the map never grows under churn.
type Registry struct {
	mu      sync.Mutex
	records map[string]*TimingRecord
}

// NewRegistry creates a new timing record registry
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*TimingRecord),
	}
}

// acquire creates the record for a session. A session has at most one open
// timing connection; a second acquire fails.
func (r *Registry) acquire(sessionKey string) (*TimingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[sessionKey]; exists {
		return nil, core.ErrConnectionActive
	}

	record := &TimingRecord{
		pending: make(map[string]time.Time),
	}
	r.records[sessionKey] = record

	return record, nil
}

// release removes the record for a session
func (r *Registry) release(sessionKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, sessionKey)
}

// Active returns the number of in-flight timing connections
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}
