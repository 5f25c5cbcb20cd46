package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Find(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	flag := WalletFlag{
		UserID:      "user-1",
		ProfileType: "individual",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, m.Save(ctx, flag))

	got, err := m.Find(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, flag, *got)

	// Overwrite keeps the latest.
	flag.ProfileType = "business"
	require.NoError(t, m.Save(ctx, flag))
	got, err = m.Find(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "business", got.ProfileType)
}
