package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/rezonia/efactura/internal/model"
)

// DefaultSlidingWindow is how long an entry survives without being read.
// Entries never outlive the token's own expiry.
const DefaultSlidingWindow = 20 * time.Minute

type memoryEntry struct {
	token    *model.Token
	deadline time.Time
}

// MemoryStore is a process-wide in-memory token store. Entries carry an
// absolute deadline equal to the token expiry, tightened by a sliding window
// that is pushed forward on every read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	sliding time.Duration
	now     func() time.Time
}

// MemoryOption configures the memory store
type MemoryOption func(*MemoryStore)

// WithSlidingWindow overrides the sliding retention window.
func WithSlidingWindow(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.sliding = d
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		sliding: DefaultSlidingWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetToken installs or overwrites the token for a user.
func (s *MemoryStore) SetToken(ctx context.Context, user string, token *model.Token) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		token:    token,
		deadline: s.deadlineFor(token, s.now()),
	}
	return nil
}

// GetToken returns the stored token, deleting it when expired.
func (s *MemoryStore) GetToken(ctx context.Context, user string) (*model.Token, error) {
	key, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	now := s.now()
	if !now.Before(entry.deadline) || entry.token.IsExpiredAt(now) {
		delete(s.entries, key)
		return nil, nil
	}
	// Sliding extension: reading keeps the entry alive.
	entry.deadline = s.deadlineFor(entry.token, now)
	s.entries[key] = entry
	return entry.token, nil
}

// RemoveToken deletes the entry for a user.
func (s *MemoryStore) RemoveToken(ctx context.Context, user string) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// HasValidToken reports whether a stored token is currently usable.
func (s *MemoryStore) HasValidToken(ctx context.Context, user string) (bool, error) {
	token, err := s.GetToken(ctx, user)
	if err != nil {
		return false, err
	}
	return token != nil && token.IsValidAt(s.now()), nil
}

// deadlineFor is lastAccess+sliding capped at the token's absolute expiry.
func (s *MemoryStore) deadlineFor(token *model.Token, now time.Time) time.Time {
	deadline := now.Add(s.sliding)
	if expiry := token.ExpiresAt(); deadline.After(expiry) {
		deadline = expiry
	}
	return deadline
}
