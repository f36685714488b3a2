package router

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/commands"
)

// textContext is a minimal tele.Context for driving the text router.
type textContext struct {
	tele.Context
	text   string
	sender *tele.User
	chat   *tele.Chat
	store  map[string]interface{}
}

func newTextContext(text string, userID int64) *textContext {
	return &textContext{
		text:   text,
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: 100, Type: tele.ChatPrivate},
		store:  make(map[string]interface{}),
	}
}

func (c *textContext) Text() string             { return c.text }
func (c *textContext) Sender() *tele.User       { return c.sender }
func (c *textContext) Chat() *tele.Chat         { return c.chat }
func (c *textContext) Callback() *tele.Callback { return nil }
func (c *textContext) Update() tele.Update      { return tele.Update{ID: 1} }

func (c *textContext) Bot() tele.API {
	return &tele.Bot{Me: &tele.User{Username: "taskbot"}}
}

func (c *textContext) Set(key string, val interface{}) { c.store[key] = val }
func (c *textContext) Get(key string) interface{}      { return c.store[key] }

func (c *textContext) Send(interface{}, ...interface{}) error { return nil }

// stubFSM records how the router drives the dialogue machine.
type stubFSM struct {
	inProgress bool
	aborted    []int64
	handled    int
}

func (s *stubFSM) InProgress(int64) bool { return s.inProgress }

func (s *stubFSM) Abort(userID int64) {
	s.aborted = append(s.aborted, userID)
	s.inProgress = false
}

func (s *stubFSM) ManagerHandler(tele.Context) error {
	s.handled++
	return nil
}

type textHarness struct {
	fsm        *stubFSM
	handler    tele.HandlerFunc
	commandRan int
	fallbacks  int
}

func newTextHarness(t *testing.T, inProgress bool) *textHarness {
	t.Helper()
	h := &textHarness{fsm: &stubFSM{inProgress: inProgress}}

	reg := tg.NewRegistry()
	reg.RegisterCommand("/add", commands.Command{
		Handler: func(tele.Context) error {
			h.commandRan++
			return nil
		},
		Description: "Add a task",
		Aliases:     []string{"new"},
	})

	routes := TextRoutes(h.fsm, reg, TextOptions{
		UnknownText: func(tele.Context) error {
			h.fallbacks++
			return nil
		},
	})
	for _, r := range routes {
		if r.Endpoint == tele.OnText {
			h.handler = r.Handler
		}
	}
	if h.handler == nil {
		t.Fatal("no OnText route built")
	}
	return h
}

func TestTextRouterCommandAbortsDialogue(t *testing.T) {
	h := newTextHarness(t, true)

	if err := h.handler(newTextContext("/add", 7)); err != nil {
		t.Fatal(err)
	}
	if len(h.fsm.aborted) != 1 || h.fsm.aborted[0] != 7 {
		t.Fatalf("dialogue must be aborted for user 7, got %v", h.fsm.aborted)
	}
	if h.commandRan != 1 {
		t.Fatalf("command must run after the abort, ran %d times", h.commandRan)
	}
	if h.fsm.handled != 0 {
		t.Fatal("command text must never reach the dialogue machine")
	}
}

func TestTextRouterAliasAbortsDialogue(t *testing.T) {
	h := newTextHarness(t, true)

	if err := h.handler(newTextContext("new", 7)); err != nil {
		t.Fatal(err)
	}
	if len(h.fsm.aborted) != 1 {
		t.Fatalf("alias must abort like the command, got %v", h.fsm.aborted)
	}
	if h.commandRan != 1 {
		t.Fatalf("alias must dispatch the command, ran %d times", h.commandRan)
	}
}

func TestTextRouterDialogueConsumesText(t *testing.T) {
	h := newTextHarness(t, true)

	if err := h.handler(newTextContext("buy milk", 7)); err != nil {
		t.Fatal(err)
	}
	if h.fsm.handled != 1 {
		t.Fatalf("in-progress dialogue must consume the text, handled=%d", h.fsm.handled)
	}
	if h.fallbacks != 0 {
		t.Fatal("dialogue takes priority over the fallback")
	}
	if len(h.fsm.aborted) != 0 {
		t.Fatal("plain text must not abort the dialogue")
	}
}

func TestTextRouterIdleTextFallsBack(t *testing.T) {
	h := newTextHarness(t, false)

	if err := h.handler(newTextContext("hello there", 7)); err != nil {
		t.Fatal(err)
	}
	if h.fsm.handled != 0 {
		t.Fatal("idle machine must not receive text")
	}
	if h.fallbacks != 1 {
		t.Fatalf("unknown text must hit the fallback, got %d", h.fallbacks)
	}
}

func TestTextRouterIdleCommandNoAbort(t *testing.T) {
	h := newTextHarness(t, false)

	if err := h.handler(newTextContext("/add", 7)); err != nil {
		t.Fatal(err)
	}
	if h.commandRan != 1 {
		t.Fatalf("command must dispatch, ran %d times", h.commandRan)
	}
	if len(h.fsm.aborted) != 0 {
		t.Fatal("nothing to abort when the user is idle")
	}
}

func TestTextRouterStripsMentionBeforeLookup(t *testing.T) {
	h := newTextHarness(t, true)

	if err := h.handler(newTextContext("@taskbot /add", 7)); err != nil {
		t.Fatal(err)
	}
	if h.commandRan != 1 {
		t.Fatalf("mention-prefixed command must dispatch, ran %d times", h.commandRan)
	}
	if len(h.fsm.aborted) != 1 {
		t.Fatal("mention-prefixed command must abort the dialogue too")
	}
}
