package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
)

// Memory is a BlobStore that keeps values in process memory. It is used for
// development and tests; everything is lost on exit.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ interfaces.BlobStore = &Memory{}

func New() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.blobs[key]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("key", key))
	}

	// Return a copy to prevent external modification
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return goerr.New("key is required")
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = copied
	return nil
}

func (m *Memory) Close() error {
	return nil
}
