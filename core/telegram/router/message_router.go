package router

import (
	"time"

	tg "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation state machine.
type FSM interface {
	InProgress(userID int64) bool
	Abort(userID int64)
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing.
//
// Recognized commands take priority over an in-progress dialogue: a command
// sent mid-dialogue aborts the dialogue (pending fields are discarded) and is
// then processed from a clean state. Only when the text is not a command does
// the state machine consume it.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		// Group commands arrive as "@bot /add" which Telegram does not treat
		// as a command entity; strip the mention before lookup.
		text := middleware.StripMention(c.Text(), botUsername(c))
		userID := c.Sender().ID

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				var extras []slog.Attr
				if fsmMgr != nil && fsmMgr.InProgress(userID) {
					fsmMgr.Abort(userID)
					extras = append(extras, slog.Bool("dialog_aborted", true))
				}
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				}, extras...)
			}
		}

		if fsmMgr != nil && fsmMgr.InProgress(userID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}

func botUsername(c tele.Context) string {
	if bot, ok := c.Bot().(*tele.Bot); ok && bot.Me != nil {
		return bot.Me.Username
	}
	return ""
}
