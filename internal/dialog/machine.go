// Package dialog implements the per-user conversation state machine that
// walks users through multi-step task commands. It is transport-free: the
// machine consumes normalized text or selection events and yields Reply
// instructions for the bot layer to deliver.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/telegram/format"
	"github.com/m3rciful/taskbot/internal/tasks"
	"log/slog"
)

const logComponent = "dialog"

// Actor identifies who is talking and which chat owns the task list.
type Actor struct {
	UserID int64
	ChatID int64
}

// Options tune machine behaviour.
type Options struct {
	// CollectAssignee inserts the "who is it for" step into the add dialogue.
	CollectAssignee bool
}

// Machine drives every dialogue. State is keyed by user id and held in
// memory; a restart drops in-flight dialogues but never committed tasks.
type Machine struct {
	svc             *tasks.Service
	sessions        *sessionStore
	collectAssignee bool
}

// NewMachine builds a machine over the task service.
func NewMachine(svc *tasks.Service, opts Options) *Machine {
	return &Machine{
		svc:             svc,
		sessions:        newSessionStore(),
		collectAssignee: opts.CollectAssignee,
	}
}

// Step returns the user's current dialogue step.
func (m *Machine) Step(userID int64) Step {
	return m.sessions.step(userID)
}

// InProgress reports whether the user is mid-dialogue.
func (m *Machine) InProgress(userID int64) bool {
	return m.sessions.step(userID) != StepIdle
}

// Abort discards the user's pending fields and returns to idle. Called when
// a new command interrupts an in-flight dialogue.
func (m *Machine) Abort(userID int64) {
	s := m.sessions.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepIdle {
		logger.Debug(logger.Background(), logComponent, "step.abort",
			slog.Int64("user_id", userID),
			slog.String("step", string(s.step)),
		)
	}
	s.reset()
}

// Cancel resets the dialogue in response to an explicit cancel press.
func (m *Machine) Cancel(userID int64) Reply {
	m.Abort(userID)
	return Reply{Text: textCancelled}
}

// StartAdd opens the add dialogue, discarding any previous draft.
func (m *Machine) StartAdd(ctx context.Context, actor Actor) Reply {
	s := m.sessions.get(actor.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	m.advance(ctx, s, actor.UserID, StepDescription)
	return Reply{Text: textAskDescription}
}

// StartDelete opens the delete flow. A non-empty query searches immediately;
// otherwise the machine waits for keywords.
func (m *Machine) StartDelete(ctx context.Context, actor Actor, query string) (Reply, error) {
	return m.startSearch(ctx, actor, flowDelete, query)
}

// StartUpdate opens the update flow.
func (m *Machine) StartUpdate(ctx context.Context, actor Actor, query string) (Reply, error) {
	return m.startSearch(ctx, actor, flowUpdate, query)
}

// StartComplete opens the mark-as-done flow.
func (m *Machine) StartComplete(ctx context.Context, actor Actor, query string) (Reply, error) {
	return m.startSearch(ctx, actor, flowComplete, query)
}

// HandleText advances the user's dialogue with free text. Validation
// failures re-prompt without advancing; persistence failures keep the draft
// so the same step can be retried.
func (m *Machine) HandleText(ctx context.Context, actor Actor, text string) (Reply, error) {
	s := m.sessions.get(actor.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepDescription:
		norm := tasks.NormalizeText(text)
		if norm == "" {
			return Reply{Text: textEmptyRePrompt}, nil
		}
		s.draft.Description = norm
		if m.collectAssignee {
			m.advance(ctx, s, actor.UserID, StepAssignee)
			return Reply{Text: textAskAssignee}, nil
		}
		m.advance(ctx, s, actor.UserID, StepDueDate)
		return Reply{Text: m.askDueDate()}, nil

	case StepAssignee:
		norm := tasks.NormalizeText(text)
		if norm == textSkipAssignee {
			norm = ""
		}
		s.draft.Assignee = norm
		m.advance(ctx, s, actor.UserID, StepDueDate)
		return Reply{Text: m.askDueDate()}, nil

	case StepDueDate:
		return m.commitAdd(ctx, s, actor, text)

	case StepDeleteQuery:
		return m.search(ctx, s, actor, flowDelete, text)
	case StepUpdateQuery:
		return m.search(ctx, s, actor, flowUpdate, text)
	case StepCompleteQuery:
		return m.search(ctx, s, actor, flowComplete, text)

	case StepUpdateText:
		return m.commitUpdate(ctx, s, actor, text)
	}

	return Reply{}, nil
}

// Select consumes an inline-keyboard selection referencing a task id.
func (m *Machine) Select(ctx context.Context, actor Actor, action string, taskID int64) (Reply, error) {
	s := m.sessions.get(actor.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case ActionDeleteTask:
		task, err := m.svc.Delete(ctx, taskID)
		if errors.Is(err, tasks.ErrNotFound) {
			s.reset()
			return Reply{Text: textTaskGone}, nil
		}
		if err != nil {
			return Reply{Text: textActionFailed}, err
		}
		s.reset()
		return Reply{
			Text:     fmt.Sprintf(textTaskDeleted, esc(task.Description), esc(task.DueDate)),
			Markdown: true,
		}, nil

	case ActionCompleteTask:
		task, err := m.svc.Complete(ctx, taskID)
		if errors.Is(err, tasks.ErrNotFound) {
			s.reset()
			return Reply{Text: textTaskGone}, nil
		}
		if err != nil {
			return Reply{Text: textActionFailed}, err
		}
		s.reset()
		return Reply{
			Text:     fmt.Sprintf(textTaskCompleted, esc(task.Description)),
			Markdown: true,
		}, nil

	case ActionUpdateTask:
		task, err := m.svc.Get(ctx, taskID)
		if errors.Is(err, tasks.ErrNotFound) {
			s.reset()
			return Reply{Text: textTaskGone}, nil
		}
		if err != nil {
			return Reply{Text: textActionFailed}, err
		}
		s.draft = Draft{TargetTaskID: task.ID}
		m.advance(ctx, s, actor.UserID, StepUpdateText)
		return Reply{
			Text:     fmt.Sprintf(textAskNewText, esc(task.Description)),
			Markdown: true,
		}, nil
	}

	return Reply{}, fmt.Errorf("dialog: unknown selection action %q", action)
}

// commitAdd validates the due date and persists the drafted task.
func (m *Machine) commitAdd(ctx context.Context, s *session, actor Actor, text string) (Reply, error) {
	due := tasks.NormalizeText(text)
	task, err := m.svc.Create(ctx, actor.ChatID, actor.UserID, s.draft.Description, s.draft.Assignee, due)
	switch {
	case errors.Is(err, tasks.ErrBadDueDate):
		// State stays armed on the due-date step; the user retries in place.
		return Reply{Text: m.badDueDate()}, nil
	case errors.Is(err, tasks.ErrEmptyDescription):
		s.draft = Draft{}
		m.advance(ctx, s, actor.UserID, StepDescription)
		return Reply{Text: textEmptyRePrompt}, nil
	case err != nil:
		// Draft retained so the same step can be retried after a store hiccup.
		return Reply{Text: textSaveFailed}, err
	}

	s.reset()
	m.logStep(ctx, actor.UserID, StepDueDate, StepIdle)
	if task.Assignee != "" {
		return Reply{
			Text:     fmt.Sprintf(textTaskAddedFor, esc(task.Description), esc(task.Assignee), esc(task.DueDate)),
			Markdown: true,
		}, nil
	}
	return Reply{
		Text:     fmt.Sprintf(textTaskAdded, esc(task.Description), esc(task.DueDate)),
		Markdown: true,
	}, nil
}

// commitUpdate overwrites the selected task's description.
func (m *Machine) commitUpdate(ctx context.Context, s *session, actor Actor, text string) (Reply, error) {
	norm := tasks.NormalizeText(text)
	if norm == "" {
		return Reply{Text: textEmptyRePrompt}, nil
	}
	task, err := m.svc.UpdateDescription(ctx, s.draft.TargetTaskID, norm)
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		s.reset()
		return Reply{Text: textTaskGone}, nil
	case err != nil:
		return Reply{Text: textUpdateFailed}, err
	}

	s.reset()
	m.logStep(ctx, actor.UserID, StepUpdateText, StepIdle)
	return Reply{
		Text:     fmt.Sprintf(textTaskUpdated, esc(task.Description)),
		Markdown: true,
	}, nil
}

type flow int

const (
	flowDelete flow = iota
	flowUpdate
	flowComplete
)

func (f flow) action() string {
	switch f {
	case flowUpdate:
		return ActionUpdateTask
	case flowComplete:
		return ActionCompleteTask
	default:
		return ActionDeleteTask
	}
}

func (f flow) queryStep() Step {
	switch f {
	case flowUpdate:
		return StepUpdateQuery
	case flowComplete:
		return StepCompleteQuery
	default:
		return StepDeleteQuery
	}
}

func (f flow) askText() string {
	switch f {
	case flowUpdate:
		return textAskUpdateQuery
	case flowComplete:
		return textAskDoneQuery
	default:
		return textAskDeleteQuery
	}
}

func (f flow) pickText() string {
	switch f {
	case flowUpdate:
		return textPickUpdate
	case flowComplete:
		return textPickDone
	default:
		return textPickDelete
	}
}

func (m *Machine) startSearch(ctx context.Context, actor Actor, f flow, query string) (Reply, error) {
	s := m.sessions.get(actor.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	if tasks.NormalizeText(query) != "" {
		return m.search(ctx, s, actor, f, query)
	}
	m.advance(ctx, s, actor.UserID, f.queryStep())
	return Reply{Text: f.askText()}, nil
}

// search resolves keywords into a selection keyboard. Zero matches report an
// explicit not-found outcome and leave the machine idle.
func (m *Machine) search(ctx context.Context, s *session, actor Actor, f flow, query string) (Reply, error) {
	matches, err := m.svc.Search(ctx, actor.ChatID, query)
	if err != nil {
		return Reply{Text: textActionFailed}, err
	}
	if len(matches) == 0 {
		from := s.step
		s.reset()
		m.logStep(ctx, actor.UserID, from, StepIdle)
		return Reply{Text: textNoMatches}, nil
	}

	buttons := make([]Button, 0, len(matches)+1)
	for _, t := range matches {
		buttons = append(buttons, Button{
			Label:  buttonLabel(t),
			Action: f.action(),
			Ref:    strconv.FormatInt(t.ID, 10),
		})
	}
	buttons = append(buttons, Button{Label: textCancelLabel, Action: ActionCancel, Ref: "cancel"})

	// Selection arrives as a callback, so no step needs to stay armed.
	s.reset()
	return Reply{Text: f.pickText(), Buttons: buttons}, nil
}

func (m *Machine) advance(ctx context.Context, s *session, userID int64, to Step) {
	from := s.step
	s.step = to
	m.logStep(ctx, userID, from, to)
}

func (m *Machine) logStep(ctx context.Context, userID int64, from, to Step) {
	if from == to {
		return
	}
	logger.Debug(ctx, logComponent, "step.transition",
		slog.Int64("user_id", userID),
		slog.String("from", string(from)),
		slog.String("step", string(to)),
	)
}

func buttonLabel(t tasks.Task) string {
	label := t.Description
	if len([]rune(label)) > 48 {
		label = string([]rune(label)[:47]) + "…"
	}
	if t.DueDate != "" {
		label += " — " + t.DueDate
	}
	return label
}

// dueExample renders a sample date in the first configured layout so the
// prompt always matches what the validator will accept.
func (m *Machine) dueExample() string {
	layouts := m.svc.Dates().Layouts()
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).Format(layouts[0])
}

func (m *Machine) askDueDate() string {
	return fmt.Sprintf(textAskDueDateFmt, m.dueExample())
}

func (m *Machine) badDueDate() string {
	return fmt.Sprintf(textBadDueDateFmt, m.dueExample())
}

func esc(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}
