package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/taskbot/internal/dialog"
	"github.com/m3rciful/taskbot/internal/tasks"
)

func TestRenderHistory(t *testing.T) {
	list := []tasks.Task{
		{Description: "buy milk", DueDate: "2025-04-01"},
		{Description: "call_mom", DueDate: "2025-04-02", Assignee: "Anna", Completed: true},
	}

	out := renderHistory(list)
	assert.Contains(t, out, "1. *buy milk* — due 2025-04-01")
	assert.Contains(t, out, `2. *call\_mom* — due 2025-04-02 — for Anna ✅`)
}

func TestStartText(t *testing.T) {
	withMention := startText("taskbot")
	assert.Contains(t, withMention, "@taskbot")
	assert.Contains(t, withMention, "/add")

	noMention := startText("")
	assert.NotContains(t, noMention, "@")
	assert.Contains(t, noMention, "/add")
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(dialog.Reply{Text: "plain"}))

	markup := replyMarkup(dialog.Reply{
		Text: "pick one",
		Buttons: []dialog.Button{
			{Label: "buy milk — 2025-04-01", Action: dialog.ActionDeleteTask, Ref: "3"},
			{Label: "✖ Cancel", Action: dialog.ActionCancel, Ref: "cancel"},
		},
	})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2, "one button per row")
	assert.Equal(t, "buy milk — 2025-04-01", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, dialog.ActionDeleteTask, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "3", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, dialog.ActionCancel, markup.InlineKeyboard[1][0].Unique)
}
