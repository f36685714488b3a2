package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(false), NewDateValidator(nil))
}

func TestServiceCreateValidates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 10, 7, "   ", "", "2025-03-01")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = svc.Create(ctx, 10, 7, "buy milk", "", "soon")
	assert.ErrorIs(t, err, ErrBadDueDate)

	task, err := svc.Create(ctx, 10, 7, "  buy   milk ", " Anna ", " 2025-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Description, "whitespace is normalized")
	assert.Equal(t, "Anna", task.Assignee)
	assert.Equal(t, "2025-03-01", task.DueDate, "due date stored verbatim after trimming")
	assert.Equal(t, int64(7), task.CreatedBy)
	assert.NotZero(t, task.ID)
}

func TestServiceSearchEmptyQuery(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 10, 7, "buy milk", "", "2025-03-01")
	require.NoError(t, err)

	matches, err := svc.Search(ctx, 10, "   ")
	require.NoError(t, err)
	assert.Empty(t, matches, "blank query never matches everything")
}

func TestServiceUpdateDescription(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 10, 7, "buy milk", "Anna", "2025-03-01")
	require.NoError(t, err)

	_, err = svc.UpdateDescription(ctx, task.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	updated, err := svc.UpdateDescription(ctx, task.ID, " buy  oat milk ")
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", updated.Description)
	assert.Equal(t, "Anna", updated.Assignee)
	assert.Equal(t, "2025-03-01", updated.DueDate)

	_, err = svc.UpdateDescription(ctx, 999, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDeleteReturnsLastState(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 10, 7, "buy milk", "", "2025-03-01")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", deleted.Description)

	_, err = svc.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceComplete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 10, 7, "buy milk", "", "2025-03-01")
	require.NoError(t, err)

	done, err := svc.Complete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	_, err = svc.Complete(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
