package slots

import (
	"context"
	"sync"
)

// Memory keeps payloads in process memory. Contents do not survive a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Read(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.data[sessionID]
	if !ok {
		return nil, ErrEmpty
	}
	return append([]byte(nil), payload...), nil
}

func (m *Memory) Write(_ context.Context, sessionID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = append([]byte(nil), payload...)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
