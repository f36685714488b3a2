package dialog

// User-facing dialogue texts. Kept next to the machine so transition logic
// and its prompts evolve together; command-level texts live in the bot
// package.
const (
	textAskDescription  = "What should the task say? Send me the description."
	textAskAssignee     = "Who is it for? Send a name, or \"-\" to skip."
	textEmptyRePrompt   = "The description can't be empty. Please send some text."
	textSaveFailed      = "I couldn't save the task just now. Please send the due date again."
	textUpdateFailed    = "I couldn't update the task just now. Please send the new text again."
	textTaskAdded       = "Task added!\n\n*%s*\ndue *%s*"
	textTaskAddedFor    = "Task added!\n\n*%s*\nfor *%s*\ndue *%s*"
	textAskDeleteQuery  = "Which task should I delete? Send a few keywords."
	textAskUpdateQuery  = "Which task should I update? Send a few keywords."
	textAskDoneQuery    = "Which task is finished? Send a few keywords."
	textNoMatches       = "No task matches that. Nothing changed."
	textPickDelete      = "Pick the task to delete:"
	textPickUpdate      = "Pick the task to update:"
	textPickDone        = "Pick the task to mark as done:"
	textAskNewText      = "Send the new description for *%s*."
	textTaskDeleted     = "Deleted:\n\n*%s* — %s"
	textTaskUpdated     = "Updated! The task now says:\n\n*%s*"
	textTaskCompleted   = "Nice. Marked as done:\n\n*%s*"
	textTaskGone        = "That task is gone already. Nothing changed."
	textCancelled       = "Cancelled."
	textCancelLabel     = "✖ Cancel"
	textActionFailed    = "Something went wrong. Please try again."
	textAskDueDateFmt   = "When is it due? (for example %s)"
	textBadDueDateFmt   = "That doesn't look like a date. Try the format %s."
	textSkipAssignee    = "-"
)
