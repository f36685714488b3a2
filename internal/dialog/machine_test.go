package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/taskbot/internal/tasks"
)

var errStoreDown = errors.New("store down")

// flakyRepo fails a configured number of Create calls before recovering.
type flakyRepo struct {
	*tasks.MemoryRepository
	failures int
}

func (r *flakyRepo) Create(ctx context.Context, task *tasks.Task) error {
	if r.failures > 0 {
		r.failures--
		return errStoreDown
	}
	return r.MemoryRepository.Create(ctx, task)
}

func newTestMachine(opts Options) (*Machine, *tasks.Service, *tasks.MemoryRepository) {
	repo := tasks.NewMemoryRepository(false)
	svc := tasks.NewService(repo, tasks.NewDateValidator(nil))
	return NewMachine(svc, opts), svc, repo
}

func TestAddFlow(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	reply := m.StartAdd(ctx, actor)
	assert.Equal(t, textAskDescription, reply.Text)
	assert.Equal(t, StepDescription, m.Step(actor.UserID))

	reply, err := m.HandleText(ctx, actor, "  buy   milk ")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "2025-03-01", "prompt shows an example in the first layout")
	assert.Equal(t, StepDueDate, m.Step(actor.UserID))

	reply, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "buy milk")
	assert.True(t, reply.Markdown)
	assert.False(t, m.InProgress(actor.UserID))

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "buy milk", list[0].Description)
	assert.Equal(t, "2025-04-01", list[0].DueDate)
	assert.Equal(t, actor.UserID, list[0].CreatedBy)
}

func TestAddFlowEmptyDescriptionReprompts(t *testing.T) {
	m, _, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	reply, err := m.HandleText(ctx, actor, "   \n ")
	require.NoError(t, err)
	assert.Equal(t, textEmptyRePrompt, reply.Text)
	assert.Equal(t, StepDescription, m.Step(actor.UserID), "step does not advance")
}

func TestAddFlowBadDueDateRetriesInPlace(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	_, err := m.HandleText(ctx, actor, "buy milk")
	require.NoError(t, err)

	reply, err := m.HandleText(ctx, actor, "whenever")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "doesn't look like a date")
	assert.Equal(t, StepDueDate, m.Step(actor.UserID))

	_, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "the rejected attempt created nothing")
}

func TestAddFlowAssigneeStep(t *testing.T) {
	m, svc, _ := newTestMachine(Options{CollectAssignee: true})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	reply, err := m.HandleText(ctx, actor, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, textAskAssignee, reply.Text)

	_, err = m.HandleText(ctx, actor, " Anna ")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Anna", list[0].Assignee)
}

func TestAddFlowAssigneeSkipped(t *testing.T) {
	m, svc, _ := newTestMachine(Options{CollectAssignee: true})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	_, err := m.HandleText(ctx, actor, "buy milk")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, actor, "-")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Assignee)
}

func TestAbortDiscardsDraft(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	_, err := m.HandleText(ctx, actor, "half-finished draft")
	require.NoError(t, err)
	require.True(t, m.InProgress(actor.UserID))

	m.Abort(actor.UserID)
	assert.False(t, m.InProgress(actor.UserID))

	// The discarded draft never surfaces again.
	reply := m.StartAdd(ctx, actor)
	assert.Equal(t, textAskDescription, reply.Text)
	_, err = m.HandleText(ctx, actor, "fresh task")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh task", list[0].Description)
}

func TestUsersAreIsolated(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	alice := Actor{UserID: 1, ChatID: 100}
	bob := Actor{UserID: 2, ChatID: 100}

	m.StartAdd(ctx, alice)
	m.StartAdd(ctx, bob)

	_, err := m.HandleText(ctx, alice, "alice's task")
	require.NoError(t, err)
	assert.Equal(t, StepDueDate, m.Step(alice.UserID))
	assert.Equal(t, StepDescription, m.Step(bob.UserID), "bob's dialogue did not move")

	_, err = m.HandleText(ctx, bob, "bob's task")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, alice, "2025-04-01")
	require.NoError(t, err)
	_, err = m.HandleText(ctx, bob, "2025-05-01")
	require.NoError(t, err)

	list, err := svc.List(ctx, 100)
	require.NoError(t, err)
	require.Len(t, list, 2, "same chat holds both users' tasks")
}

func TestDeleteFlowNoMatches(t *testing.T) {
	m, _, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	reply, err := m.StartDelete(ctx, actor, "")
	require.NoError(t, err)
	assert.Equal(t, textAskDeleteQuery, reply.Text)
	assert.Equal(t, StepDeleteQuery, m.Step(actor.UserID))

	reply, err = m.HandleText(ctx, actor, "nothing like this")
	require.NoError(t, err)
	assert.Equal(t, textNoMatches, reply.Text)
	assert.False(t, m.InProgress(actor.UserID))
}

func TestDeleteFlowSelect(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	task, err := svc.Create(ctx, actor.ChatID, actor.UserID, "buy milk", "", "2025-04-01")
	require.NoError(t, err)

	reply, err := m.StartDelete(ctx, actor, "milk")
	require.NoError(t, err)
	assert.Equal(t, textPickDelete, reply.Text)
	require.Len(t, reply.Buttons, 2, "one match plus cancel")
	assert.Equal(t, ActionDeleteTask, reply.Buttons[0].Action)
	assert.Equal(t, ActionCancel, reply.Buttons[1].Action)

	reply, err = m.Select(ctx, actor, ActionDeleteTask, task.ID)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Deleted")

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSelectVanishedTask(t *testing.T) {
	m, _, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	reply, err := m.Select(ctx, actor, ActionCompleteTask, 999)
	require.NoError(t, err)
	assert.Equal(t, textTaskGone, reply.Text)
	assert.False(t, m.InProgress(actor.UserID))
}

func TestUpdateFlow(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	task, err := svc.Create(ctx, actor.ChatID, actor.UserID, "buy milk", "Anna", "2025-04-01")
	require.NoError(t, err)

	reply, err := m.StartUpdate(ctx, actor, "milk")
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 2)
	assert.Equal(t, ActionUpdateTask, reply.Buttons[0].Action)

	reply, err = m.Select(ctx, actor, ActionUpdateTask, task.ID)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "new description")
	assert.Equal(t, StepUpdateText, m.Step(actor.UserID))

	reply, err = m.HandleText(ctx, actor, "buy oat milk")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "buy oat milk")
	assert.False(t, m.InProgress(actor.UserID))

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", got.Description)
	assert.Equal(t, "Anna", got.Assignee, "update touches only the description")
	assert.Equal(t, "2025-04-01", got.DueDate)
}

func TestCompleteFlow(t *testing.T) {
	m, svc, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	task, err := svc.Create(ctx, actor.ChatID, actor.UserID, "buy milk", "", "2025-04-01")
	require.NoError(t, err)

	reply, err := m.StartComplete(ctx, actor, "milk")
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 2)
	assert.Equal(t, ActionCompleteTask, reply.Buttons[0].Action)

	reply, err = m.Select(ctx, actor, ActionCompleteTask, task.ID)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "done")

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestStoreFailureKeepsDraft(t *testing.T) {
	repo := &flakyRepo{MemoryRepository: tasks.NewMemoryRepository(false), failures: 1}
	svc := tasks.NewService(repo, tasks.NewDateValidator(nil))
	m := NewMachine(svc, Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	_, err := m.HandleText(ctx, actor, "buy milk")
	require.NoError(t, err)

	reply, err := m.HandleText(ctx, actor, "2025-04-01")
	require.Error(t, err)
	assert.Equal(t, textSaveFailed, reply.Text)
	assert.Equal(t, StepDueDate, m.Step(actor.UserID), "step stays armed for a retry")

	reply, err = m.HandleText(ctx, actor, "2025-04-01")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "buy milk")

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "exactly one task after the retry")
}

func TestCancel(t *testing.T) {
	m, _, _ := newTestMachine(Options{})
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	m.StartAdd(ctx, actor)
	reply := m.Cancel(actor.UserID)
	assert.Equal(t, textCancelled, reply.Text)
	assert.False(t, m.InProgress(actor.UserID))
}

func TestRestartKeepsTasksResetsDialogues(t *testing.T) {
	repo := tasks.NewMemoryRepository(false)
	svc := tasks.NewService(repo, tasks.NewDateValidator(nil))
	ctx := context.Background()
	actor := Actor{UserID: 7, ChatID: 100}

	before := NewMachine(svc, Options{})
	_, err := svc.Create(ctx, actor.ChatID, actor.UserID, "committed task", "", "2025-04-01")
	require.NoError(t, err)

	before.StartAdd(ctx, actor)
	_, err = before.HandleText(ctx, actor, "half-typed draft")
	require.NoError(t, err)
	require.True(t, before.InProgress(actor.UserID))

	// A process restart builds a fresh machine over the same store.
	after := NewMachine(svc, Options{})
	assert.Equal(t, StepIdle, after.Step(actor.UserID), "dialogues reset to idle")
	assert.False(t, after.InProgress(actor.UserID))

	list, err := svc.List(ctx, actor.ChatID)
	require.NoError(t, err)
	require.Len(t, list, 1, "committed tasks survive, the draft does not")
	assert.Equal(t, "committed task", list[0].Description)
}

func TestIdleTextYieldsNothing(t *testing.T) {
	m, _, _ := newTestMachine(Options{})
	reply, err := m.HandleText(context.Background(), Actor{UserID: 7, ChatID: 100}, "hello?")
	require.NoError(t, err)
	assert.True(t, reply.IsZero())
}
