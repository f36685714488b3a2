package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const storeTimeout = 5 * time.Second

// PostgresRepository persists tasks through sqlx. Every mutation commits
// synchronously, so a success result is crash-durable.
type PostgresRepository struct {
	db            *sqlx.DB
	caseSensitive bool
}

// NewPostgresRepository wraps an established sqlx connection.
func NewPostgresRepository(db *sqlx.DB, caseSensitive bool) *PostgresRepository {
	return &PostgresRepository{db: db, caseSensitive: caseSensitive}
}

// Create inserts the task and fills in the assigned id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, task *Task) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	const query = `
		INSERT INTO tasks (chat_id, description, assignee, due_date, created_by, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		task.ChatID, task.Description, task.Assignee, task.DueDate, task.CreatedBy, task.Completed,
	)
	if err := row.Scan(&task.ID, &task.CreatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByChat returns the chat's tasks ordered by id, which matches insertion
// order for a sequence-assigned key.
func (r *PostgresRepository) ListByChat(ctx context.Context, chatID int64) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	const query = `
		SELECT id, chat_id, description, assignee, due_date, created_by, is_completed, created_at
		FROM tasks WHERE chat_id = $1 ORDER BY id`
	out := make([]Task, 0)
	if err := r.db.SelectContext(ctx, &out, query, chatID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Search matches the substring against description or due date.
func (r *PostgresRepository) Search(ctx context.Context, chatID int64, query string) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	op := "ILIKE"
	if r.caseSensitive {
		op = "LIKE"
	}
	stmt := fmt.Sprintf(`
		SELECT id, chat_id, description, assignee, due_date, created_by, is_completed, created_at
		FROM tasks
		WHERE chat_id = $1 AND (description %s $2 ESCAPE '\' OR due_date %s $2 ESCAPE '\')
		ORDER BY id`, op, op)

	pattern := "%" + escapeLike(query) + "%"
	out := make([]Task, 0)
	if err := r.db.SelectContext(ctx, &out, stmt, chatID, pattern); err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return out, nil
}

// Get returns the task by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	const query = `
		SELECT id, chat_id, description, assignee, due_date, created_by, is_completed, created_at
		FROM tasks WHERE id = $1`
	var t Task
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateDescription overwrites the description field only.
func (r *PostgresRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.exec(ctx, "update task", `UPDATE tasks SET description = $2 WHERE id = $1`, id, description)
}

// MarkCompleted flags the task as done.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, id int64) error {
	return r.exec(ctx, "complete task", `UPDATE tasks SET is_completed = TRUE WHERE id = $1`, id)
}

// Delete removes the task.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete task", `DELETE FROM tasks WHERE id = $1`, id)
}

func (r *PostgresRepository) exec(ctx context.Context, op, stmt string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
