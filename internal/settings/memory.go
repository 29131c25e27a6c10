package settings

import "sync"

type MemoryStore struct {
	mu     sync.RWMutex
	values Values
}

func NewMemoryStore(values Values) *MemoryStore {
	values.normalize()
	return &MemoryStore{values: values}
}

func (m *MemoryStore) Values() Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values
}

func (m *MemoryStore) Set(key Key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, err := m.values.With(key, value)
	if err != nil {
		return err
	}
	m.values = updated
	return nil
}
