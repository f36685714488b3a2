package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/commands"
	"github.com/m3rciful/taskbot/core/telegram/format"
	tghelpers "github.com/m3rciful/taskbot/core/telegram/helpers"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
	"github.com/m3rciful/taskbot/internal/tasks"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "What this bot does",
		Aliases:     []string{"help"},
	})
	reg.RegisterCommand("/add", commands.Command{
		Handler:     a.handleAdd,
		Description: "Add a task",
		Aliases:     []string{"new"},
	})
	reg.RegisterCommand("/history", commands.Command{
		Handler:     a.handleHistory,
		Description: "Show the task list",
		Aliases:     []string{"list", "tasks"},
	})
	reg.RegisterCommand("/delete", commands.Command{
		Handler:     a.handleDelete,
		Description: "Delete a task",
		Aliases:     []string{"remove"},
	})
	reg.RegisterCommand("/update", commands.Command{
		Handler:     a.handleUpdate,
		Description: "Change a task's text",
		Aliases:     []string{"edit"},
	})
	reg.RegisterCommand("/done", commands.Command{
		Handler:     a.handleDone,
		Description: "Mark a task as done",
		Aliases:     []string{"complete"},
	})
}

// handleStart greets and lists the commands. Like every command it interrupts
// whatever dialogue the user had in flight.
func (a *App) handleStart(c tele.Context) error {
	a.services.Dialog.Abort(senderID(c))
	return tghelpers.SendText(c, startText(botUsername(c)))
}

func (a *App) handleAdd(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply := a.services.Dialog.StartAdd(ctx, actorFrom(c))
	return sendReply(c, reply)
}

func (a *App) handleHistory(c tele.Context) error {
	a.services.Dialog.Abort(senderID(c))
	ctx := tghelpers.BuildContext(c)

	list, err := a.services.Tasks.List(ctx, actorFrom(c).ChatID)
	if err != nil {
		if sendErr := tghelpers.SendText(c, textListFailed); sendErr != nil {
			return sendErr
		}
		return err
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textHistoryEmpty)
	}
	return tghelpers.SendMD(c, renderHistory(list))
}

func (a *App) handleDelete(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.services.Dialog.StartDelete(ctx, actorFrom(c), commandQuery(c))
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleUpdate(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.services.Dialog.StartUpdate(ctx, actorFrom(c), commandQuery(c))
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleDone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.services.Dialog.StartComplete(ctx, actorFrom(c), commandQuery(c))
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// commandQuery extracts the free-text argument of a command, e.g. the
// keywords in "/delete buy milk", minus any bot mention.
func commandQuery(c tele.Context) string {
	msg := c.Message()
	if msg == nil {
		return ""
	}
	return middleware.StripMention(msg.Payload, botUsername(c))
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}

func startText(username string) string {
	if username == "" {
		return strings.TrimSpace(strings.SplitN(textStart, "In groups,", 2)[0])
	}
	return fmt.Sprintf(textStart, username)
}

// renderHistory formats the chat's tasks as a numbered Markdown list.
func renderHistory(list []tasks.Task) string {
	var b strings.Builder
	b.WriteString(textHistoryHeader)
	for i, t := range list {
		b.WriteString(fmt.Sprintf("\n%d. *%s*", i+1, esc(t.Description)))
		if t.DueDate != "" {
			b.WriteString(" — due " + esc(t.DueDate))
		}
		if t.Assignee != "" {
			b.WriteString(" — for " + esc(t.Assignee))
		}
		if t.Completed {
			b.WriteString(" ✅")
		}
	}
	return b.String()
}

func esc(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}
