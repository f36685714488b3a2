// Package tasks holds the task data model, its persistence contracts, and the
// service layer used by bot dialogues.
package tasks

import (
	"context"
	"time"
)

// Task is a single tracked item owned by a chat.
//
// DueDate is kept verbatim as entered by the user; it is validated against the
// configured layouts before persistence but never re-formatted, so the
// original locale formatting survives round-trips.
type Task struct {
	ID          int64     `db:"id"`
	ChatID      int64     `db:"chat_id"`
	Description string    `db:"description"`
	Assignee    string    `db:"assignee"`
	DueDate     string    `db:"due_date"`
	CreatedBy   int64     `db:"created_by"`
	Completed   bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
}

// Repository abstracts task persistence. Mutating operations are durable
// before they return: a success result must survive a process crash.
type Repository interface {
	// Create persists the task and fills in its assigned ID.
	Create(ctx context.Context, task *Task) error
	// ListByChat returns the chat's tasks in insertion order.
	ListByChat(ctx context.Context, chatID int64) ([]Task, error)
	// Search returns the chat's tasks whose description or due date contains
	// the substring, in insertion order.
	Search(ctx context.Context, chatID int64, query string) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	UpdateDescription(ctx context.Context, id int64, description string) error
	MarkCompleted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
