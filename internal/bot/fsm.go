package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/taskbot/core/telegram/helpers"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
	"github.com/m3rciful/taskbot/internal/dialog"
)

// fsmAdapter exposes the dialogue machine to the text router.
type fsmAdapter struct {
	machine *dialog.Machine
}

func (f fsmAdapter) InProgress(userID int64) bool {
	return f.machine.InProgress(userID)
}

func (f fsmAdapter) Abort(userID int64) {
	f.machine.Abort(userID)
}

// ManagerHandler feeds free text into the user's dialogue and delivers the
// resulting reply.
func (f fsmAdapter) ManagerHandler(c tele.Context) error {
	text := middleware.StripMention(c.Text(), botUsername(c))
	ctx := tghelpers.BuildContext(c)

	reply, err := f.machine.HandleText(ctx, actorFrom(c), text)
	if sendErr := sendReply(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

func actorFrom(c tele.Context) dialog.Actor {
	a := dialog.Actor{}
	if s := c.Sender(); s != nil {
		a.UserID = s.ID
	}
	if chat := c.Chat(); chat != nil {
		a.ChatID = chat.ID
	}
	return a
}

func botUsername(c tele.Context) string {
	if bot, ok := c.Bot().(*tele.Bot); ok && bot.Me != nil {
		return bot.Me.Username
	}
	return ""
}
