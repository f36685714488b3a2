package middleware

import (
	"strings"

	"github.com/m3rciful/taskbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions defines how inbound updates are gated before dispatch.
type AccessOptions struct {
	// AllowedIDs is the sender allow-list. Empty means the bot is open.
	AllowedIDs []int64
	// DeniedText is sent to unauthorized senders in private chats.
	// Group senders are always dropped silently to avoid spam.
	DeniedText string
}

// AccessMiddleware decides whether an update is addressed to the bot and
// whether the sender may use it. Private chats are always addressed; in
// groups the bot must be mentioned by username. Callback presses originate
// from keyboards the bot sent, so they count as addressed.
func AccessMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	allowed := make(map[int64]struct{}, len(opts.AllowedIDs))
	for _, id := range opts.AllowedIDs {
		allowed[id] = struct{}{}
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()
			if sender == nil || chat == nil {
				return nil
			}

			username := ""
			if bot, ok := c.Bot().(*tele.Bot); ok && bot.Me != nil {
				username = bot.Me.Username
			}

			if c.Callback() == nil && !AddressedToBot(chat.Type, c.Text(), username) {
				return nil
			}

			if len(allowed) > 0 {
				if _, ok := allowed[sender.ID]; !ok {
					logger.Warn(logger.Background(), "tg", "tg.access_denied",
						slog.Int64("chat_id", chat.ID),
						slog.Int64("user_id", sender.ID),
						slog.String("chat_type", string(chat.Type)),
					)
					if c.Callback() != nil {
						// Answer the press so the client's spinner stops.
						return c.Respond(&tele.CallbackResponse{})
					}
					if chat.Type == tele.ChatPrivate && opts.DeniedText != "" {
						return c.Send(opts.DeniedText)
					}
					return nil
				}
			}

			return next(c)
		}
	}
}

// AddressedToBot reports whether a message should be handled at all.
// Private chats always address the bot; groups require an explicit
// @username mention anywhere in the text. Commands suffixed with the bot
// name (/add@taskbot) count as mentions too.
func AddressedToBot(chatType tele.ChatType, text, botUsername string) bool {
	switch chatType {
	case tele.ChatPrivate:
		return true
	case tele.ChatGroup, tele.ChatSuperGroup:
		if botUsername == "" {
			return false
		}
		return strings.Contains(strings.ToLower(text), "@"+strings.ToLower(botUsername))
	}
	return false
}

// StripMention removes the bot's @username token from text so dialogue input
// never embeds the mention, collapsing surrounding whitespace.
func StripMention(text, botUsername string) string {
	if botUsername == "" {
		return strings.TrimSpace(text)
	}
	mention := "@" + strings.ToLower(botUsername)
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		lf := strings.ToLower(f)
		if lf == mention {
			continue
		}
		if strings.HasSuffix(lf, mention) {
			f = f[:len(f)-len(mention)]
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID != 0 && c.Sender().ID != opts.AdminID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
