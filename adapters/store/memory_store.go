package store

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

// sessionAttrs holds the attributes of one browser session
type sessionAttrs struct {
	mu    sync.RWMutex
	attrs map[string]string
}

// MemoryStore is an in-memory implementation of the SessionStore interface.
// Sessions expire after the configured TTL; Save refreshes the TTL, which
// mirrors the mark-modified semantics of a backing session framework.
type MemoryStore struct {
	cache *ttlcache.Cache[string, *sessionAttrs]
	ttl   time.Duration
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *sessionAttrs](ttl),
		ttlcache.WithDisableTouchOnHit[string, *sessionAttrs](),
	)

	go cache.Start()

	return &MemoryStore{
		cache: cache,
		ttl:   ttl,
	}
}

// Get retrieves a session attribute
func (s *MemoryStore) Get(ctx context.Context, sessionKey, attr string) (string, error) {
	item := s.cache.Get(sessionKey)
	if item == nil {
		return "", core.ErrAttributeNotFound
	}

	sess := item.Value()
	sess.mu.RLock()
	defer sess.mu.RUnlock()

	value, ok := sess.attrs[attr]
	if !ok {
		return "", core.ErrAttributeNotFound
	}

	return value, nil
}

// Set writes a session attribute, creating the session entry if needed
func (s *MemoryStore) Set(ctx context.Context, sessionKey, attr, value string) error {
	item := s.cache.Get(sessionKey)
	if item == nil {
		item = s.cache.Set(sessionKey, &sessionAttrs{attrs: make(map[string]string)}, s.ttl)
	}

	sess := item.Value()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.attrs[attr] = value
	return nil
}

// Delete removes a session attribute
func (s *MemoryStore) Delete(ctx context.Context, sessionKey, attr string) error {
	item := s.cache.Get(sessionKey)
	if item == nil {
		return nil
	}

	sess := item.Value()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	delete(sess.attrs, attr)
	return nil
}

// Save refreshes the session TTL
func (s *MemoryStore) Save(ctx context.Context, sessionKey string) error {
	item := s.cache.Get(sessionKey)
	if item == nil {
		return nil
	}

	s.cache.Set(sessionKey, item.Value(), s.ttl)
	return nil
}

// Stop stops the background cleanup process
func (s *MemoryStore) Stop() {
	s.cache.Stop()
}

var _ ports.SessionStore = (*MemoryStore)(nil)
