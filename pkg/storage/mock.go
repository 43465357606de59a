package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]state.Record
	ttls      map[uuid.UUID]time.Duration
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		records: make(map[uuid.UUID]state.Record),
		ttls:    make(map[uuid.UUID]time.Duration),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail every SaveSession call
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession stores a copy of rec
func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, rec *state.Record, ttl time.Duration) error {
	if rec == nil {
		return errors.New("session record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	cp := *rec
	if rec.History != nil {
		cp.History = append([]string{}, rec.History...)
	}
	m.records[id] = cp
	m.ttls[id] = ttl
	return nil
}

// LoadSession returns a copy of the stored record, or nil if there is none
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, exists := m.records[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	if rec.History != nil {
		rec.History = append([]string{}, rec.History...)
	}
	return &rec, nil
}

// DeleteSession removes a record
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	delete(m.ttls, id)
	return nil
}

// Len returns the number of stored records (for testing)
func (m *MockStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// TTL returns the ttl the record was last saved with (for testing)
func (m *MockStorage) TTL(id uuid.UUID) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[id]
}
