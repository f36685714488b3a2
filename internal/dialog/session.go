package dialog

import "sync"

// Step identifies a position within a multi-step dialogue.
type Step string

const (
	// StepIdle indicates there is no active conversation with the user.
	StepIdle Step = "idle"
	// StepDescription waits for the new task's description.
	StepDescription Step = "awaiting_description"
	// StepAssignee waits for the optional assignee name.
	StepAssignee Step = "awaiting_assignee"
	// StepDueDate waits for the due date.
	StepDueDate Step = "awaiting_due_date"
	// StepDeleteQuery waits for search keywords in the delete flow.
	StepDeleteQuery Step = "awaiting_delete_query"
	// StepUpdateQuery waits for search keywords in the update flow.
	StepUpdateQuery Step = "awaiting_update_query"
	// StepCompleteQuery waits for search keywords in the done flow.
	StepCompleteQuery Step = "awaiting_done_query"
	// StepUpdateText waits for the replacement description of a selected task.
	StepUpdateText Step = "awaiting_update_text"
)

// Draft accumulates task fields while an add or update dialogue is in flight.
type Draft struct {
	Description  string
	Assignee     string
	TargetTaskID int64
}

// session is one user's dialogue state. Sessions are keyed by user id, never
// by chat id, so two users in the same group hold independent dialogues.
type session struct {
	mu    sync.Mutex
	step  Step
	draft Draft
}

func (s *session) reset() {
	s.step = StepIdle
	s.draft = Draft{}
}

// sessionStore maps user ids to sessions. Each session carries its own lock;
// the machine holds it for the whole transition, which serializes transitions
// per user while letting distinct users proceed in parallel.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (st *sessionStore) get(userID int64) *session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &session{step: StepIdle}
		st.sessions[userID] = s
	}
	return s
}

// step reads the current step without creating a session.
func (st *sessionStore) step(userID int64) Step {
	st.mu.Lock()
	s, ok := st.sessions[userID]
	st.mu.Unlock()
	if !ok {
		return StepIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}
