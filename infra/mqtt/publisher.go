package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/bessopt/core/model"
	coremqtt "github.com/kilianp07/bessopt/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Published  map[string]*model.Schedule
	Fail       bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Published:  make(map[string]*model.Schedule),
		AckResults: make(map[string]bool),
	}
}

// PublishSchedule records the schedule or returns an error if configured to fail.
func (m *MockPublisher) PublishSchedule(s *model.Schedule) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", fmt.Errorf("publish failed")
	}
	commandID := fmt.Sprintf("cmd-%s", s.RunID)
	m.Published[commandID] = s
	m.AckResults[commandID] = true
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(commandID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown command")
	}
	return ok, nil
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}
