package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezonia/efactura/internal/model"
)

// DefaultStateTTL bounds how long an issued authorization state stays
// redeemable.
const DefaultStateTTL = 10 * time.Minute

// StateManager issues and validates the CSRF state values that correlate an
// authorization redirect with its callback. States are single-use and expire
// after the configured TTL.
type StateManager struct {
	mu     sync.Mutex
	issued map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewStateManager creates a state manager with the given TTL.
func NewStateManager(ttl time.Duration) *StateManager {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateManager{
		issued: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a fresh state value and remembers its creation time.
func (m *StateManager) Issue() string {
	state := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	m.issued[state] = m.now()
	return state
}

// Consume validates a callback state and retires it. Unknown, expired, or
// already-consumed states fail with ErrInvalidState.
func (m *StateManager) Consume(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	created, ok := m.issued[state]
	if !ok {
		return model.ErrInvalidState
	}
	delete(m.issued, state)
	if m.now().Sub(created) > m.ttl {
		return model.ErrInvalidState
	}
	return nil
}

// prune drops expired states; called with the lock held.
func (m *StateManager) prune() {
	cutoff := m.now().Add(-m.ttl)
	for state, created := range m.issued {
		if created.Before(cutoff) {
			delete(m.issued, state)
		}
	}
}
