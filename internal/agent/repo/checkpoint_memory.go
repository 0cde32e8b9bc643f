package repo

import (
	"context"
	"sync"

	"github.com/tryluxor/server/internal/agent/model"
)

// MemoryThreadStore keeps threads in process memory.
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string][]model.StoredMessage
}

func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{threads: map[string][]model.StoredMessage{}}
}

func (m *MemoryThreadStore) Load(_ context.Context, threadID string) ([]model.StoredMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.threads[threadID]
	out := make([]model.StoredMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryThreadStore) Append(_ context.Context, threadID string, msgs ...model.StoredMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.threads[threadID] = append(m.threads[threadID], msgs...)
	return nil
}

func (m *MemoryThreadStore) Clear(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.threads, threadID)
	return nil
}

func (m *MemoryThreadStore) Count(_ context.Context, threadID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.threads[threadID]), nil
}

var _ model.ThreadStore = (*MemoryThreadStore)(nil)
