// Package goalstore keeps the goals of anonymous visitors. Entries are
// per-visitor JSON arrays that expire after a TTL; nothing here ever reaches
// the persistent backend.
package goalstore

import (
	"context"
	"sync"
	"time"

	"aitutor/internal/models"
)

// Store is the ephemeral goal cache
type Store interface {
	// Load returns the visitor's goals, newest first. Unknown visitors get an empty list.
	Load(ctx context.Context, visitorID string) ([]models.Goal, error)
	// Save replaces the visitor's goals and refreshes the TTL
	Save(ctx context.Context, visitorID string, goals []models.Goal) error
	Close() error
}

// Key returns the cache key for a visitor
func Key(visitorID string) string {
	return "temp_goals:" + visitorID
}

type memoryEntry struct {
	goals     []models.Goal
	expiresAt time.Time
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-process store whose entries live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, visitorID string) ([]models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(visitorID)
	entry, ok := s.entries[key]
	if !ok {
		return []models.Goal{}, nil
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return []models.Goal{}, nil
	}
	out := make([]models.Goal, len(entry.goals))
	copy(out, entry.goals)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, visitorID string, goals []models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]models.Goal, len(goals))
	copy(stored, goals)
	s.entries[Key(visitorID)] = memoryEntry{goals: stored, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Sweep drops expired entries
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Close() error {
	return nil
}
