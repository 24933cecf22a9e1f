package backend

import (
	"context"
	"sort"
	"sync"

	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/store/keys"
)

type memoryEntry struct {
	key   keys.Key
	value map[string]any
}

// Memory keeps values in process memory. Values are copied on the way in
// and out.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Kind() Kind { return KindMemory }

func (m *Memory) Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key.String()]
	if !ok {
		return nil, ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	return copyValue(e.value)
}

func (m *Memory) Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	v, err := copyValue(value)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.entries[key.String()] = memoryEntry{key: key, value: v}
	m.mu.Unlock()
	return m.Get(ctx, key)
}

func (m *Memory) Delete(ctx context.Context, key keys.Key) apperrors.Error {
	if err := requireKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key.String()]; !ok {
		return ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	delete(m.entries, key.String())
	return nil
}

func (m *Memory) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key.String()]
	return ok, nil
}

// ListKeys returns the keys ordered by their string form.
func (m *Memory) ListKeys(ctx context.Context) ([]keys.Key, apperrors.Error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	ks := make([]keys.Key, 0, len(names))
	for _, name := range names {
		ks = append(ks, m.entries[name].key)
	}
	return ks, nil
}
