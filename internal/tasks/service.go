package tasks

import (
	"context"
	"fmt"

	"github.com/m3rciful/taskbot/core/logger"
	"log/slog"
)

const logComponent = "service.tasks"

// Service validates input and wraps the repository with structured logging.
// Dialogue flows never touch a Repository directly.
type Service struct {
	repo  Repository
	dates *DateValidator
}

// NewService builds a task service over the given repository.
func NewService(repo Repository, dates *DateValidator) *Service {
	if dates == nil {
		dates = NewDateValidator(nil)
	}
	return &Service{repo: repo, dates: dates}
}

// Dates exposes the configured due-date validator for prompts.
func (s *Service) Dates() *DateValidator {
	return s.dates
}

// Create validates and persists a new task for the chat.
func (s *Service) Create(ctx context.Context, chatID, createdBy int64, description, assignee, dueDate string) (Task, error) {
	description = NormalizeText(description)
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	if !s.dates.Valid(dueDate) {
		return Task{}, ErrBadDueDate
	}

	task := Task{
		ChatID:      chatID,
		Description: description,
		Assignee:    NormalizeText(assignee),
		DueDate:     NormalizeText(dueDate),
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		logger.Error(ctx, logComponent, "task.create",
			slog.String("status", "fail"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return Task{}, fmt.Errorf("create: %w", err)
	}

	logger.Info(ctx, logComponent, "task.create",
		slog.String("status", "ok"),
		slog.Int64("task_id", task.ID),
		slog.Int64("chat_id", chatID),
	)
	return task, nil
}

// List returns the chat's tasks in insertion order. A chat without tasks
// yields an empty slice, not an error.
func (s *Service) List(ctx context.Context, chatID int64) ([]Task, error) {
	out, err := s.repo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

// Search finds the chat's tasks whose description or due date contains the
// normalized query substring.
func (s *Service) Search(ctx context.Context, chatID int64, query string) ([]Task, error) {
	query = NormalizeText(query)
	if query == "" {
		return []Task{}, nil
	}
	out, err := s.repo.Search(ctx, chatID, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug(ctx, logComponent, "task.search",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("matches", len(out)),
	)
	return out, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.repo.Get(ctx, id)
}

// UpdateDescription overwrites the target task's description, leaving every
// other field untouched, and returns the updated task.
func (s *Service) UpdateDescription(ctx context.Context, id int64, description string) (Task, error) {
	description = NormalizeText(description)
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	if err := s.repo.UpdateDescription(ctx, id, description); err != nil {
		return Task{}, fmt.Errorf("update description: %w", err)
	}
	logger.Info(ctx, logComponent, "task.update",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
	)
	return s.repo.Get(ctx, id)
}

// Delete removes the task and returns its last state for the farewell reply.
func (s *Service) Delete(ctx context.Context, id int64) (Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Task{}, fmt.Errorf("delete: %w", err)
	}
	logger.Info(ctx, logComponent, "task.delete",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
		slog.Int64("chat_id", task.ChatID),
	)
	return task, nil
}

// Complete marks the task as done and returns its updated state.
func (s *Service) Complete(ctx context.Context, id int64) (Task, error) {
	if err := s.repo.MarkCompleted(ctx, id); err != nil {
		return Task{}, fmt.Errorf("complete: %w", err)
	}
	logger.Info(ctx, logComponent, "task.complete",
		slog.String("status", "ok"),
		slog.Int64("task_id", id),
	)
	return s.repo.Get(ctx, id)
}
