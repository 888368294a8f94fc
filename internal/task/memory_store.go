package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMemoryStoreCapacity is the number of records MemoryStore keeps by default.
const DefaultMemoryStoreCapacity = 1000

// MemoryStore is an in-process TaskStore that keeps the most recent records.
// Once capacity is reached the least recently updated record is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]TaskRecord
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most capacity records.
// A non-positive capacity selects DefaultMemoryStoreCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryStoreCapacity
	}
	return &MemoryStore{
		records:  make(map[uuid.UUID]TaskRecord),
		capacity: capacity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaveTask stores a new record, replacing any record with the same ID.
func (s *MemoryStore) SaveTask(ctx context.Context, record TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if record.Status == "" {
		record.Status = TaskStatusPending
	}

	s.records[record.ID] = record
	s.evictLocked()
	return nil
}

// UpdateTaskStatus changes a record's status and error message.
func (s *MemoryStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	record.Status = status
	record.Error = errorMsg
	record.UpdatedAt = s.now()
	s.records[taskID] = record
	return nil
}

// ListTasks returns records ordered by most recent update first.
func (s *MemoryStore) ListTasks(ctx context.Context, limit int) ([]TaskRecord, error) {
	s.mu.RLock()
	records := make([]TaskRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	s.mu.RUnlock()

	sortNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// evictLocked drops the oldest records beyond capacity.
func (s *MemoryStore) evictLocked() {
	excess := len(s.records) - s.capacity
	if excess <= 0 {
		return
	}

	records := make([]TaskRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sortNewestFirst(records)
	for _, r := range records[len(records)-excess:] {
		delete(s.records, r.ID)
	}
}

func sortNewestFirst(records []TaskRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
}
