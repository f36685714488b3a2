package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/taskbot/core/telegram/helpers"
	"github.com/m3rciful/taskbot/core/telegram/ui"
)

const (
	textStart = "Hi! I keep this chat's task list.\n\n" +
		"/add — add a task step by step\n" +
		"/history — show all tasks\n" +
		"/update — change a task's text\n" +
		"/done — mark a task as finished\n" +
		"/delete — remove a task\n\n" +
		"In groups, mention me (@%s) so I know you're talking to me."

	textAccessDenied = "Sorry, this bot is private."

	textHistoryEmpty  = "No tasks yet. Send /add to create the first one."
	textHistoryHeader = "*Tasks in this chat:*\n"

	textUnknownText     = "I didn't get that. Send /start to see what I can do."
	textUnknownDocument = "I only work with text messages."
	textUnknownCallback = "That button is no longer active."
	textListFailed      = "I couldn't load the task list just now. Please try again."
)

// Fallbacks answers updates that match no command, dialogue, or callback.
type Fallbacks struct{}

var _ ui.FallbackProvider = Fallbacks{}

// UnknownText handles text that matched nothing.
func (Fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textUnknownText)
	}
}

// UnknownDocument handles unexpected file uploads.
func (Fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textUnknownDocument)
	}
}

// UnknownCallback handles stale or unregistered callback presses.
func (Fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: textUnknownCallback})
		return nil
	}
}
