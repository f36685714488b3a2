package dialog

// Reply is a transport-free outbound instruction. The machine never calls a
// send primitive; handlers turn a Reply into Telegram messages and keyboards.
type Reply struct {
	Text     string
	Markdown bool
	Buttons  []Button
}

// Button describes one inline selection option.
type Button struct {
	Label  string
	Action string
	Ref    string
}

// Callback actions understood by the bot's selection flows.
const (
	ActionDeleteTask   = "task_delete"
	ActionUpdateTask   = "task_update"
	ActionCompleteTask = "task_complete"
	ActionCancel       = "dlg_cancel"
)

// IsZero reports whether the reply carries nothing to send.
func (r Reply) IsZero() bool {
	return r.Text == "" && len(r.Buttons) == 0
}
