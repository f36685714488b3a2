package bot

import (
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/taskbot/core/telegram/helpers"
	"github.com/m3rciful/taskbot/internal/dialog"
)

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	machine := a.services.Dialog
	fb := Fallbacks{}

	selection := func(action string) tele.HandlerFunc {
		return func(c tele.Context) error {
			taskID, err := callbacks.PayloadInt64(c)
			if err != nil {
				return fb.UnknownCallback()(c)
			}
			ctx := tghelpers.BuildContext(c)
			reply, err := machine.Select(ctx, actorFrom(c), action, taskID)
			if sendErr := editReply(c, reply); sendErr != nil {
				return sendErr
			}
			return err
		}
	}

	_ = reg.RegisterCallback(dialog.ActionDeleteTask, selection(dialog.ActionDeleteTask))
	_ = reg.RegisterCallback(dialog.ActionUpdateTask, selection(dialog.ActionUpdateTask))
	_ = reg.RegisterCallback(dialog.ActionCompleteTask, selection(dialog.ActionCompleteTask))
	_ = reg.RegisterCallback(dialog.ActionCancel, func(c tele.Context) error {
		return editReply(c, machine.Cancel(senderID(c)))
	})

	reg.SetCallbackNotFound(fb.UnknownCallback())
}
