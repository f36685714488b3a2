package tasks

import "errors"

var (
	// ErrNotFound is returned when an id references no task.
	ErrNotFound = errors.New("tasks: task not found")
	// ErrEmptyDescription is returned when a description is blank after
	// whitespace normalization.
	ErrEmptyDescription = errors.New("tasks: description is empty")
	// ErrBadDueDate is returned when a due date matches none of the accepted
	// layouts.
	ErrBadDueDate = errors.New("tasks: due date does not match an accepted format")
)
