package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/taskbot/core/telegram/helpers"
	"github.com/m3rciful/taskbot/core/telegram/keyboard"
	"github.com/m3rciful/taskbot/internal/dialog"
)

// sendReply delivers a dialogue reply as a new message.
func sendReply(c tele.Context, r dialog.Reply) error {
	if r.IsZero() {
		return nil
	}
	markup := replyMarkup(r)
	if r.Markdown {
		if markup != nil {
			return tghelpers.SendMD(c, r.Text, markup)
		}
		return tghelpers.SendMD(c, r.Text)
	}
	if markup != nil {
		return tghelpers.SendText(c, r.Text, &tele.SendOptions{ReplyMarkup: markup})
	}
	return tghelpers.SendText(c, r.Text)
}

// editReply replaces the message the user pressed a button on, so selection
// keyboards collapse into their outcome instead of stacking up.
func editReply(c tele.Context, r dialog.Reply) error {
	if r.IsZero() {
		return nil
	}
	markup := replyMarkup(r)
	if r.Markdown {
		if markup != nil {
			return tghelpers.EditOrSendMD(c, r.Text, markup)
		}
		return tghelpers.EditOrSendMD(c, r.Text)
	}
	return c.EditOrSend(r.Text, &tele.SendOptions{ReplyMarkup: markup})
}

func replyMarkup(r dialog.Reply) *tele.ReplyMarkup {
	if len(r.Buttons) == 0 {
		return nil
	}
	btns := make([]keyboard.InlineBtn, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		btns = append(btns, keyboard.InlineBtn{
			Text:   b.Label,
			Unique: b.Action,
			Data:   b.Ref,
		})
	}
	return keyboard.InlineButtons(btns)
}
