package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"scoutpay/internal/audit"
	dErrors "scoutpay/pkg/domain-errors"
)

// Manager owns the live sessions: creation, lookup, explicit abandonment and
// idle expiry. One session per user at a time; creating a new one replaces an
// unlocked predecessor.
type Manager struct {
	deps    Deps
	idleTTL time.Duration

	mu     sync.Mutex
	byID   map[string]*Session
	byUser map[string]*Session

	stop chan struct{}
	done chan struct{}
}

// NewManager creates a Manager. Sessions idle longer than idleTTL are swept
// by a background janitor; pass zero to disable sweeping (tests).
func NewManager(deps Deps, idleTTL time.Duration) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &Manager{
		deps:    deps,
		idleTTL: idleTTL,
		byID:    make(map[string]*Session),
		byUser:  make(map[string]*Session),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if idleTTL > 0 {
		go m.sweep()
	} else {
		close(m.done)
	}
	return m
}

// Create starts a new onboarding session for a user. An existing unlocked
// session for the same user is abandoned and replaced; a locked one means the
// profile was already submitted and creation is refused.
func (m *Manager) Create(ctx context.Context, userID string, variant Variant, phone string) (*Session, error) {
	if variant != VariantIndividual && variant != VariantBusiness {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown profile variant")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.byUser[userID]; ok {
		prev.mu.Lock()
		locked := prev.draft.Locked
		prev.mu.Unlock()
		if locked {
			return nil, dErrors.New(dErrors.CodeConflict, "wallet profile already submitted")
		}
		m.removeLocked(prev, audit.ActionSessionAbandoned, "replaced")
	}

	s := newSession(uuid.NewString(), userID, variant, phone, m.deps)
	m.byID[s.ID] = s
	m.byUser[userID] = s
	m.setGaugeLocked()

	if m.deps.Audit != nil {
		_ = m.deps.Audit.Emit(ctx, audit.Event{
			Timestamp: m.deps.Now(),
			UserID:    userID,
			SessionID: s.ID,
			Action:    audit.ActionSessionCreated,
			Decision:  string(variant),
		})
	}
	return s, nil
}

// Get returns a session by ID, scoped to its owning user.
func (m *Manager) Get(id, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return s, nil
}

// Abandon removes a session at the user's request. Locked sessions are
// removed silently too; their work is already durable.
func (m *Manager) Abandon(id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	m.removeLocked(s, audit.ActionSessionAbandoned, "user_request")
	return nil
}

// removeLocked drops a session from both indexes. Callers hold m.mu.
func (m *Manager) removeLocked(s *Session, action, reason string) {
	delete(m.byID, s.ID)
	if m.byUser[s.UserID] == s {
		delete(m.byUser, s.UserID)
	}
	s.shutdown()
	m.setGaugeLocked()
	if m.deps.Audit != nil {
		_ = m.deps.Audit.Emit(context.Background(), audit.Event{
			Timestamp: m.deps.Now(),
			UserID:    s.UserID,
			SessionID: s.ID,
			Action:    action,
			Reason:    reason,
		})
	}
}

func (m *Manager) setGaugeLocked() {
	if m.deps.Metrics != nil {
		m.deps.Metrics.SetActiveSessions(len(m.byID))
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *Manager) sweep() {
	defer close(m.done)
	ticker := time.NewTicker(m.idleTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.expireIdle()
		}
	}
}

func (m *Manager) expireIdle() {
	cutoff := m.deps.Now().Add(-m.idleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.LastActivity().Before(cutoff) {
			m.removeLocked(s, audit.ActionSessionAbandoned, "idle_timeout")
		}
	}
}

// Close stops the janitor and shuts down every session's timers.
func (m *Manager) Close() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		s.shutdown()
	}
}
