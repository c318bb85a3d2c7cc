package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/intent"
)

func completeCreate() *intent.CreateIntent {
	return &intent.CreateIntent{Date: "2026-03-20", Time: "14:00", Title: "Dentist"}
}

func TestMachineCreateFlow(t *testing.T) {
	t.Run("complete intent skips clarification", func(t *testing.T) {
		m := NewMachine()
		m.ObserveCreate(completeCreate())
		assert.Equal(t, StateAwaitingCreateConfirmation, m.State())

		create, err := m.ConfirmCreate()
		require.NoError(t, err)
		assert.Equal(t, "Dentist", create.Title)
		assert.Equal(t, StateIdle, m.State())
	})

	t.Run("incomplete intent waits for the missing slot", func(t *testing.T) {
		m := NewMachine()
		m.ObserveCreate(&intent.CreateIntent{
			Date:                "2026-03-20",
			Title:               "Dentist",
			NeedsClarification:  true,
			ClarificationPrompt: "What time does it start?",
		})
		assert.Equal(t, StateAwaitingCreateClarification, m.State())

		// Next turn the model re-emits the full intent.
		m.ObserveCreate(completeCreate())
		assert.Equal(t, StateAwaitingCreateConfirmation, m.State())
	})

	t.Run("cancel drops the pending create", func(t *testing.T) {
		m := NewMachine()
		m.ObserveCreate(completeCreate())
		m.Cancel()

		assert.Equal(t, StateIdle, m.State())
		assert.Nil(t, m.PendingCreate())

		_, err := m.ConfirmCreate()
		assert.Error(t, err)
	})
}

func TestMachineDeleteFlow(t *testing.T) {
	dentist := gcal.EventDetails{ID: "ev1", Summary: "Dentist"}
	gym := gcal.EventDetails{ID: "ev2", Summary: "Gym"}

	t.Run("single match goes straight to confirmation", func(t *testing.T) {
		m := NewMachine()
		m.ObserveSingleMatch(dentist)
		assert.Equal(t, StateAwaitingDeleteConfirmation, m.State())

		event, err := m.ConfirmDelete()
		require.NoError(t, err)
		assert.Equal(t, "ev1", event.ID)
		assert.Equal(t, StateIdle, m.State())
	})

	t.Run("multiple matches require a selection first", func(t *testing.T) {
		m := NewMachine()
		m.ObserveMultipleMatches([]gcal.EventDetails{dentist, gym})
		assert.Equal(t, StateAwaitingMultiDeleteSelection, m.State())
		assert.Len(t, m.Candidates(), 2)

		require.NoError(t, m.Select(2))
		assert.Equal(t, StateAwaitingDeleteConfirmation, m.State())

		event, err := m.ConfirmDelete()
		require.NoError(t, err)
		assert.Equal(t, "ev2", event.ID)
	})

	t.Run("selection out of range", func(t *testing.T) {
		m := NewMachine()
		m.ObserveMultipleMatches([]gcal.EventDetails{dentist, gym})

		assert.Error(t, m.Select(0))
		assert.Error(t, m.Select(3))
		assert.Equal(t, StateAwaitingMultiDeleteSelection, m.State())
	})

	t.Run("selection outside selection state", func(t *testing.T) {
		m := NewMachine()
		assert.Error(t, m.Select(1))
	})

	t.Run("cancel from selection", func(t *testing.T) {
		m := NewMachine()
		m.ObserveMultipleMatches([]gcal.EventDetails{dentist, gym})
		m.Cancel()

		assert.Equal(t, StateIdle, m.State())
		assert.Nil(t, m.Candidates())
	})
}

func TestMachineConfirmInWrongState(t *testing.T) {
	m := NewMachine()

	_, err := m.ConfirmCreate()
	assert.Error(t, err)

	_, err = m.ConfirmDelete()
	assert.Error(t, err)
}

func TestHistoryWindow(t *testing.T) {
	h := NewHistory(4)
	for i := 1; i <= 6; i++ {
		h.Add(RoleUser, fmt.Sprintf("message %d", i))
	}

	turns := h.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, "message 3", turns[0].Content)
	assert.Equal(t, "message 6", turns[3].Content)
}

func TestHistoryTurnsReturnsACopy(t *testing.T) {
	h := NewHistory(4)
	h.Add(RoleUser, "hello")

	turns := h.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "hello", h.Turns()[0].Content)
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 10; i++ {
		h.Add(RoleAssistant, "turn")
	}
	assert.Len(t, h.Turns(), DefaultWindow)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting_multi_delete_selection", StateAwaitingMultiDeleteSelection.String())
	assert.Equal(t, "unknown", State(99).String())
}
