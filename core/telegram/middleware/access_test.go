package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

// gateContext is a minimal tele.Context for exercising the access gate.
// Only the methods the middleware touches are implemented; anything else
// panics through the embedded nil interface.
type gateContext struct {
	tele.Context
	chat     *tele.Chat
	sender   *tele.User
	text     string
	callback *tele.Callback

	sent      []interface{}
	responded int
}

func (c *gateContext) Sender() *tele.User       { return c.sender }
func (c *gateContext) Chat() *tele.Chat         { return c.chat }
func (c *gateContext) Text() string             { return c.text }
func (c *gateContext) Callback() *tele.Callback { return c.callback }

func (c *gateContext) Bot() tele.API {
	return &tele.Bot{Me: &tele.User{Username: "taskbot"}}
}

func (c *gateContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *gateContext) Respond(_ ...*tele.CallbackResponse) error {
	c.responded++
	return nil
}

func runGate(opts AccessOptions, c *gateContext) (nextCalled bool) {
	h := AccessMiddleware(opts)(func(tele.Context) error {
		nextCalled = true
		return nil
	})
	if err := h(c); err != nil {
		panic(err)
	}
	return nextCalled
}

func TestAccessMiddlewareOpenByDefault(t *testing.T) {
	c := &gateContext{
		chat:   &tele.Chat{ID: 1, Type: tele.ChatPrivate},
		sender: &tele.User{ID: 42},
		text:   "hello",
	}
	if !runGate(AccessOptions{DeniedText: "no"}, c) {
		t.Fatal("empty allow-list must admit everyone")
	}
	if len(c.sent) != 0 {
		t.Fatalf("nothing should be sent, got %v", c.sent)
	}
}

func TestAccessMiddlewareDeniedInPrivate(t *testing.T) {
	c := &gateContext{
		chat:   &tele.Chat{ID: 1, Type: tele.ChatPrivate},
		sender: &tele.User{ID: 42},
		text:   "/add",
	}
	if runGate(AccessOptions{AllowedIDs: []int64{7}, DeniedText: "no entry"}, c) {
		t.Fatal("unauthorized sender must not reach the handler")
	}
	if len(c.sent) != 1 || c.sent[0] != "no entry" {
		t.Fatalf("private denial must send the notice, got %v", c.sent)
	}
}

func TestAccessMiddlewareDeniedInGroupIsSilent(t *testing.T) {
	c := &gateContext{
		chat:   &tele.Chat{ID: -100, Type: tele.ChatGroup},
		sender: &tele.User{ID: 42},
		text:   "@taskbot /add",
	}
	if runGate(AccessOptions{AllowedIDs: []int64{7}, DeniedText: "no entry"}, c) {
		t.Fatal("unauthorized sender must not reach the handler")
	}
	if len(c.sent) != 0 {
		t.Fatalf("group denial must stay silent, got %v", c.sent)
	}
}

func TestAccessMiddlewareAllowedSender(t *testing.T) {
	c := &gateContext{
		chat:   &tele.Chat{ID: 1, Type: tele.ChatPrivate},
		sender: &tele.User{ID: 7},
		text:   "/add",
	}
	if !runGate(AccessOptions{AllowedIDs: []int64{7}, DeniedText: "no"}, c) {
		t.Fatal("allow-listed sender must pass")
	}
}

func TestAccessMiddlewareGroupMentionRequired(t *testing.T) {
	unaddressed := &gateContext{
		chat:   &tele.Chat{ID: -100, Type: tele.ChatGroup},
		sender: &tele.User{ID: 42},
		text:   "/add",
	}
	if runGate(AccessOptions{}, unaddressed) {
		t.Fatal("group text without a mention must be dropped")
	}

	addressed := &gateContext{
		chat:   &tele.Chat{ID: -100, Type: tele.ChatGroup},
		sender: &tele.User{ID: 42},
		text:   "@taskbot /add",
	}
	if !runGate(AccessOptions{}, addressed) {
		t.Fatal("mentioned group text must pass")
	}
}

func TestAccessMiddlewareCallbackBypassesMention(t *testing.T) {
	c := &gateContext{
		chat:     &tele.Chat{ID: -100, Type: tele.ChatGroup},
		sender:   &tele.User{ID: 7},
		callback: &tele.Callback{Unique: "task_delete", Data: "3"},
	}
	if !runGate(AccessOptions{AllowedIDs: []int64{7}}, c) {
		t.Fatal("callbacks originate from the bot's own keyboards and are always addressed")
	}
}

func TestAccessMiddlewareDeniedCallbackIsAnswered(t *testing.T) {
	c := &gateContext{
		chat:     &tele.Chat{ID: -100, Type: tele.ChatGroup},
		sender:   &tele.User{ID: 42},
		callback: &tele.Callback{Unique: "task_delete", Data: "3"},
	}
	if runGate(AccessOptions{AllowedIDs: []int64{7}, DeniedText: "no"}, c) {
		t.Fatal("unauthorized callback must not reach the handler")
	}
	if c.responded != 1 {
		t.Fatalf("denied callback must still be answered to stop the spinner, responded=%d", c.responded)
	}
	if len(c.sent) != 0 {
		t.Fatalf("denied callback must not produce messages, got %v", c.sent)
	}
}

func TestAddressedToBot(t *testing.T) {
	cases := []struct {
		name     string
		chatType tele.ChatType
		text     string
		username string
		want     bool
	}{
		{"private always addressed", tele.ChatPrivate, "anything", "taskbot", true},
		{"private without mention", tele.ChatPrivate, "/add", "taskbot", true},
		{"group without mention", tele.ChatGroup, "/add", "taskbot", false},
		{"group with mention", tele.ChatGroup, "@taskbot /add", "taskbot", true},
		{"group mention mid-text", tele.ChatGroup, "hey @taskbot add this", "taskbot", true},
		{"group command suffix", tele.ChatGroup, "/add@taskbot", "taskbot", true},
		{"group mention case-insensitive", tele.ChatSuperGroup, "@TaskBot /add", "taskbot", true},
		{"group unknown username", tele.ChatGroup, "@otherbot /add", "taskbot", false},
		{"group empty bot username", tele.ChatGroup, "@taskbot /add", "", false},
		{"channel never addressed", tele.ChatChannel, "@taskbot hi", "taskbot", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddressedToBot(tc.chatType, tc.text, tc.username)
			if got != tc.want {
				t.Fatalf("AddressedToBot(%q, %q, %q) = %v, want %v", tc.chatType, tc.text, tc.username, got, tc.want)
			}
		})
	}
}

func TestStripMention(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		username string
		want     string
	}{
		{"leading mention", "@taskbot /add", "taskbot", "/add"},
		{"trailing mention", "/add @taskbot", "taskbot", "/add"},
		{"command suffix", "/add@taskbot", "taskbot", "/add"},
		{"mixed case", "@TaskBot buy milk", "taskbot", "buy milk"},
		{"no mention", "buy milk", "taskbot", "buy milk"},
		{"whitespace collapsed", "  @taskbot   buy   milk ", "taskbot", "buy milk"},
		{"empty username", "  buy milk ", "", "buy milk"},
		{"only mention", "@taskbot", "taskbot", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMention(tc.text, tc.username); got != tc.want {
				t.Fatalf("StripMention(%q, %q) = %q, want %q", tc.text, tc.username, got, tc.want)
			}
		})
	}
}
