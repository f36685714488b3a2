package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *MemoryRepository, chatID int64, descriptions ...string) []Task {
	t.Helper()
	out := make([]Task, 0, len(descriptions))
	for _, d := range descriptions {
		task := Task{ChatID: chatID, Description: d, DueDate: "2025-03-01", CreatedBy: 7}
		require.NoError(t, repo.Create(context.Background(), &task))
		out = append(out, task)
	}
	return out
}

func TestMemoryRepositoryCreateAssignsSequentialIDs(t *testing.T) {
	repo := NewMemoryRepository(false)
	created := seed(t, repo, 10, "first", "second", "third")

	assert.Equal(t, int64(1), created[0].ID)
	assert.Equal(t, int64(3), created[2].ID)
	assert.False(t, created[0].CreatedAt.IsZero())
}

func TestMemoryRepositoryListByChatIsolatesChats(t *testing.T) {
	repo := NewMemoryRepository(false)
	seed(t, repo, 10, "mine a", "mine b")
	seed(t, repo, 20, "theirs")

	list, err := repo.ListByChat(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mine a", list[0].Description)
	assert.Equal(t, "mine b", list[1].Description)

	empty, err := repo.ListByChat(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepositorySearch(t *testing.T) {
	repo := NewMemoryRepository(false)
	seed(t, repo, 10, "Buy milk", "buy bread", "call mom")

	matches, err := repo.Search(context.Background(), 10, "buy")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "search is case-insensitive by default")

	matches, err = repo.Search(context.Background(), 10, "2025-03")
	require.NoError(t, err)
	assert.Len(t, matches, 3, "due date participates in matching")

	matches, err = repo.Search(context.Background(), 10, "nothing here")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryRepositorySearchCaseSensitive(t *testing.T) {
	repo := NewMemoryRepository(true)
	seed(t, repo, 10, "Buy milk", "buy bread")

	matches, err := repo.Search(context.Background(), 10, "Buy")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Buy milk", matches[0].Description)
}

func TestMemoryRepositoryMutations(t *testing.T) {
	repo := NewMemoryRepository(false)
	created := seed(t, repo, 10, "original")

	id := created[0].ID
	require.NoError(t, repo.UpdateDescription(context.Background(), id, "rewritten"))
	require.NoError(t, repo.MarkCompleted(context.Background(), id))

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Description)
	assert.True(t, got.Completed)
	assert.Equal(t, "2025-03-01", got.DueDate, "other fields survive the update")

	require.NoError(t, repo.Delete(context.Background(), id))
	_, err = repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryMissingIDs(t *testing.T) {
	repo := NewMemoryRepository(false)
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdateDescription(ctx, 42, "x"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkCompleted(ctx, 42), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 42), ErrNotFound)
}
