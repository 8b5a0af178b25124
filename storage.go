package cadence

import "sync"

// SettingsGroup is the default group name the store persists its keys under.
const SettingsGroup = "cadence"

// Storage is the persistence contract of the settings store: flat string
// key/value access scoped by a group name, matching host-application
// setting registries. Values travel in their string form; booleans accept
// "true"/"1"/"yes" case-insensitively for true on read, anything else as
// false.
type Storage interface {
	// Read returns the stored value for group/key, or def when absent.
	Read(group, key, def string) string

	// Write stores value under group/key.
	Write(group, key, value string) error
}

// MemStorage is an in-memory Storage for tests and ephemeral processes.
type MemStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStorage creates an empty in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{values: make(map[string]string)}
}

// Read returns the stored value for group/key, or def when absent.
func (m *MemStorage) Read(group, key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[group+"/"+key]; ok {
		return v
	}
	return def
}

// Write stores value under group/key.
func (m *MemStorage) Write(group, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[group+"/"+key] = value
	return nil
}
