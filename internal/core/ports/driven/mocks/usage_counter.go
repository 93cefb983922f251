package mocks

import (
	"context"
	"sync"
)

// MockUsageCounter is an in-memory implementation of UsageCounter for
// testing. Set FailNext to make the next call fail once.
type MockUsageCounter struct {
	mu       sync.RWMutex
	counts   map[string]int
	FailNext error
}

// NewMockUsageCounter creates an empty MockUsageCounter.
func NewMockUsageCounter() *MockUsageCounter {
	return &MockUsageCounter{counts: make(map[string]int)}
}

func (m *MockUsageCounter) Used(ctx context.Context, identity, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return 0, err
	}
	return m.counts[identity+"|"+day], nil
}

func (m *MockUsageCounter) Increment(ctx context.Context, identity, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return 0, err
	}
	m.counts[identity+"|"+day]++
	return m.counts[identity+"|"+day], nil
}

func (m *MockUsageCounter) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

func (m *MockUsageCounter) Set(identity, day string, used int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[identity+"|"+day] = used
}

func (m *MockUsageCounter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
}
