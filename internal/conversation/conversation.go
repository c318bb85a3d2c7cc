// Package conversation holds the client-side dialogue state: the rolling
// turn window sent with each request and the confirmation state machine.
// The server stays stateless; everything here lives in the chat or voice
// process.
package conversation

import (
	"fmt"

	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/intent"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultWindow is how many recent turns accompany each request.
const DefaultWindow = 4

// Turn is one utterance in the rolling context window.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History keeps the most recent turns, dropping the oldest once the window
// is full.
type History struct {
	limit int
	turns []Turn
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultWindow
	}
	return &History{limit: limit}
}

func (h *History) Add(role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
	if len(h.turns) > h.limit {
		h.turns = h.turns[len(h.turns)-h.limit:]
	}
}

// Turns returns a copy of the current window, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// State is the dialogue position between user turns.
type State int

const (
	StateIdle State = iota
	StateAwaitingCreateClarification
	StateAwaitingCreateConfirmation
	StateAwaitingDeleteConfirmation
	StateAwaitingMultiDeleteSelection
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCreateClarification:
		return "awaiting_create_clarification"
	case StateAwaitingCreateConfirmation:
		return "awaiting_create_confirmation"
	case StateAwaitingDeleteConfirmation:
		return "awaiting_delete_confirmation"
	case StateAwaitingMultiDeleteSelection:
		return "awaiting_multi_delete_selection"
	}
	return "unknown"
}

// Machine tracks what the assistant is waiting on. Nothing is created or
// deleted without passing through a confirmation state first.
type Machine struct {
	state         State
	pendingCreate *intent.CreateIntent
	pendingDelete *gcal.EventDetails
	candidates    []gcal.EventDetails
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Idle() bool {
	return m.state == StateIdle
}

// ObserveCreate records a create intent from the latest turn. A complete
// intent moves straight to confirmation; an incomplete one waits for the
// missing slot. The model re-emits the full intent each turn with the
// history window as context, so no slot merging happens here.
func (m *Machine) ObserveCreate(create *intent.CreateIntent) {
	if create == nil {
		return
	}
	m.pendingCreate = create
	if create.Complete() && !create.NeedsClarification {
		m.state = StateAwaitingCreateConfirmation
		return
	}
	m.state = StateAwaitingCreateClarification
}

// ObserveSingleMatch records the one event a delete resolved to.
func (m *Machine) ObserveSingleMatch(event gcal.EventDetails) {
	m.pendingDelete = &event
	m.state = StateAwaitingDeleteConfirmation
}

// ObserveMultipleMatches records the candidate set the user must pick from.
func (m *Machine) ObserveMultipleMatches(events []gcal.EventDetails) {
	if len(events) == 0 {
		m.Cancel()
		return
	}
	m.candidates = make([]gcal.EventDetails, len(events))
	copy(m.candidates, events)
	m.state = StateAwaitingMultiDeleteSelection
}

// Select picks a candidate by its 1-based display number and moves to
// delete confirmation.
func (m *Machine) Select(choice int) error {
	if m.state != StateAwaitingMultiDeleteSelection {
		return fmt.Errorf("no selection in progress")
	}
	if choice < 1 || choice > len(m.candidates) {
		return fmt.Errorf("choice %d is out of range 1-%d", choice, len(m.candidates))
	}
	event := m.candidates[choice-1]
	m.pendingDelete = &event
	m.candidates = nil
	m.state = StateAwaitingDeleteConfirmation
	return nil
}

// Candidates returns the current multi-delete selection set.
func (m *Machine) Candidates() []gcal.EventDetails {
	return m.candidates
}

// PendingCreate returns the create intent awaiting a decision, if any.
func (m *Machine) PendingCreate() *intent.CreateIntent {
	return m.pendingCreate
}

// PendingDelete returns the event awaiting delete confirmation, if any.
func (m *Machine) PendingDelete() *gcal.EventDetails {
	return m.pendingDelete
}

// ConfirmCreate consumes the pending create and returns to idle.
func (m *Machine) ConfirmCreate() (*intent.CreateIntent, error) {
	if m.state != StateAwaitingCreateConfirmation || m.pendingCreate == nil {
		return nil, fmt.Errorf("no event creation awaiting confirmation")
	}
	create := m.pendingCreate
	m.reset()
	return create, nil
}

// ConfirmDelete consumes the pending delete and returns to idle.
func (m *Machine) ConfirmDelete() (*gcal.EventDetails, error) {
	if m.state != StateAwaitingDeleteConfirmation || m.pendingDelete == nil {
		return nil, fmt.Errorf("no deletion awaiting confirmation")
	}
	event := m.pendingDelete
	m.reset()
	return event, nil
}

// Cancel abandons whatever is pending with no side effect.
func (m *Machine) Cancel() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.pendingCreate = nil
	m.pendingDelete = nil
	m.candidates = nil
}
