package store

import (
	"context"
	"sync"
)

// Memory is an in-memory flag store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	flags map[string]WalletFlag
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		flags: make(map[string]WalletFlag),
	}
}

func (m *Memory) Save(_ context.Context, flag WalletFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flag.UserID] = flag
	return nil
}

func (m *Memory) Find(_ context.Context, userID string) (*WalletFlag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flag, ok := m.flags[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &flag, nil
}
