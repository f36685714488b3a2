package tasks

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and development.
type MemoryRepository struct {
	mu            sync.RWMutex
	nextID        int64
	order         []int64
	tasks         map[int64]Task
	caseSensitive bool
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository(caseSensitive bool) *MemoryRepository {
	return &MemoryRepository{
		tasks:         make(map[int64]Task),
		caseSensitive: caseSensitive,
	}
}

// Create assigns the next sequence id and stores the task.
func (r *MemoryRepository) Create(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	task.ID = r.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.tasks[task.ID] = *task
	r.order = append(r.order, task.ID)
	return nil
}

// ListByChat returns the chat's tasks in insertion order.
func (r *MemoryRepository) ListByChat(_ context.Context, chatID int64) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0)
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok && t.ChatID == chatID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Search matches the substring against description or due date.
func (r *MemoryRepository) Search(_ context.Context, chatID int64, query string) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := func(haystack string) bool {
		if r.caseSensitive {
			return strings.Contains(haystack, query)
		}
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(query))
	}

	out := make([]Task, 0)
	for _, id := range r.order {
		t, ok := r.tasks[id]
		if !ok || t.ChatID != chatID {
			continue
		}
		if match(t.Description) || match(t.DueDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns the task by id.
func (r *MemoryRepository) Get(_ context.Context, id int64) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// UpdateDescription overwrites the description field only.
func (r *MemoryRepository) UpdateDescription(_ context.Context, id int64, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Description = description
	r.tasks[id] = t
	return nil
}

// MarkCompleted flags the task as done.
func (r *MemoryRepository) MarkCompleted(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Completed = true
	r.tasks[id] = t
	return nil
}

// Delete removes the task.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
