package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StatusUpdate is one UpdateTaskStatus call observed by MockTaskStore.
type StatusUpdate struct {
	TaskID   uuid.UUID
	Status   TaskStatus
	ErrorMsg string
}

// MockTaskStore implements the TaskStore interface for testing.
// Each method delegates to its Fn field when set; otherwise calls are recorded.
type MockTaskStore struct {
	mu      sync.Mutex
	Saved   []TaskRecord
	Updates []StatusUpdate

	SaveFn         func(ctx context.Context, record TaskRecord) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
	ListFn         func(ctx context.Context, limit int) ([]TaskRecord, error)
}

// NewMockTaskStore creates a new MockTaskStore with recording defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// SaveTask records or delegates the save
func (s *MockTaskStore) SaveTask(ctx context.Context, record TaskRecord) error {
	s.mu.Lock()
	s.Saved = append(s.Saved, record)
	fn := s.SaveFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, record)
	}
	return nil
}

// UpdateTaskStatus records or delegates the status change
func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	s.Updates = append(s.Updates, StatusUpdate{TaskID: taskID, Status: status, ErrorMsg: errorMsg})
	fn := s.UpdateStatusFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, taskID, status, errorMsg)
	}
	return nil
}

// ListTasks delegates to ListFn, returning the saved records by default
func (s *MockTaskStore) ListTasks(ctx context.Context, limit int) ([]TaskRecord, error) {
	s.mu.Lock()
	fn := s.ListFn
	saved := append([]TaskRecord(nil), s.Saved...)
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, limit)
	}
	return saved, nil
}

// StatusesFor returns the statuses recorded for taskID in call order.
func (s *MockTaskStore) StatusesFor(taskID uuid.UUID) []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	var statuses []TaskStatus
	for _, u := range s.Updates {
		if u.TaskID == taskID {
			statuses = append(statuses, u.Status)
		}
	}
	return statuses
}
