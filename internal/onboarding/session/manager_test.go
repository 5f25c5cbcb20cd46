package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpay/internal/audit"
	dErrors "scoutpay/pkg/domain-errors"
)

type auditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *auditRecorder) Emit(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *auditRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

func newTestManager(t *testing.T, rec *auditRecorder) *Manager {
	t.Helper()
	deps := testDeps(Channels{BVN: &bvnStub{}, NIN: &ninStub{}, BankAccount: &bankStub{}, Business: &businessStub{}}, &profileStub{}, &flagStub{})
	deps.Audit = rec
	m := NewManager(deps, 0)
	t.Cleanup(m.Close)
	return m
}

func TestManagerCreateAndGet(t *testing.T) {
	rec := &auditRecorder{}
	m := newTestManager(t, rec)

	s, err := m.Create(context.Background(), "user-1", VariantIndividual, "08031234567")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, err := m.Get(s.ID, "user-1")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Contains(t, rec.actions(), audit.ActionSessionCreated)
}

func TestManagerGetScopedToOwner(t *testing.T) {
	m := newTestManager(t, &auditRecorder{})

	s, err := m.Create(context.Background(), "user-1", VariantIndividual, "")
	require.NoError(t, err)

	_, err = m.Get(s.ID, "user-2")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerCreateReplacesUnlockedSession(t *testing.T) {
	rec := &auditRecorder{}
	m := newTestManager(t, rec)

	first, err := m.Create(context.Background(), "user-1", VariantIndividual, "")
	require.NoError(t, err)
	second, err := m.Create(context.Background(), "user-1", VariantBusiness, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(first.ID, "user-1")
	assert.Error(t, err, "replaced session is gone")
	assert.Contains(t, rec.actions(), audit.ActionSessionAbandoned)
}

func TestManagerRefusesNewSessionAfterSubmission(t *testing.T) {
	m := newTestManager(t, &auditRecorder{})

	s, err := m.Create(context.Background(), "user-1", VariantIndividual, "08031234567")
	require.NoError(t, err)
	driveIndividualToValid(t, s)
	require.NoError(t, s.Submit(context.Background()))

	_, err = m.Create(context.Background(), "user-1", VariantIndividual, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestManagerAbandon(t *testing.T) {
	m := newTestManager(t, &auditRecorder{})

	s, err := m.Create(context.Background(), "user-1", VariantIndividual, "")
	require.NoError(t, err)

	require.NoError(t, m.Abandon(s.ID, "user-1"))
	assert.Equal(t, 0, m.Len())

	err = m.Abandon(s.ID, "user-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerRejectsUnknownVariant(t *testing.T) {
	m := newTestManager(t, &auditRecorder{})
	_, err := m.Create(context.Background(), "user-1", Variant("corporate"), "")
	require.Error(t, err)
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	deps := testDeps(Channels{BVN: &bvnStub{}, NIN: &ninStub{}, BankAccount: &bankStub{}}, nil, nil)

	var mu sync.Mutex
	now := time.Now()
	deps.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	m := NewManager(deps, 40*time.Millisecond)
	t.Cleanup(m.Close)

	_, err := m.Create(context.Background(), "user-1", VariantIndividual, "")
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(time.Minute)
	mu.Unlock()

	require.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}
