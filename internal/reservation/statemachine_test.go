package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		action  Action
		role    Role
		want    State
		allowed bool
	}{
		{"provider confirms pending", StatePending, ActionConfirm, RoleProvider, StateAccepted, true},
		{"consumer cannot confirm", StatePending, ActionConfirm, RoleConsumer, "", false},
		{"system cannot confirm", StatePending, ActionConfirm, RoleSystem, "", false},

		{"consumer cancels pending", StatePending, ActionCancel, RoleConsumer, StateCancelled, true},
		{"provider cancels pending", StatePending, ActionCancel, RoleProvider, StateCancelled, true},

		{"consumer reschedules pending", StatePending, ActionReschedule, RoleConsumer, StatePending, true},
		{"provider reschedules pending", StatePending, ActionReschedule, RoleProvider, StatePending, true},
		{"system cannot reschedule", StatePending, ActionReschedule, RoleSystem, "", false},

		{"consumer cancels accepted", StateAccepted, ActionCancel, RoleConsumer, StateCancelled, true},
		{"provider cancels accepted", StateAccepted, ActionCancel, RoleProvider, StateCancelled, true},
		{"cannot reschedule accepted", StateAccepted, ActionReschedule, RoleConsumer, "", false},
		{"cannot confirm accepted twice", StateAccepted, ActionConfirm, RoleProvider, "", false},

		{"system finalizes accepted", StateAccepted, ActionAutoFinalize, RoleSystem, StateFinalized, true},
		{"provider cannot finalize", StateAccepted, ActionAutoFinalize, RoleProvider, "", false},
		{"consumer cannot finalize", StateAccepted, ActionAutoFinalize, RoleConsumer, "", false},
		{"cannot finalize pending", StatePending, ActionAutoFinalize, RoleSystem, "", false},

		{"finalized is terminal for cancel", StateFinalized, ActionCancel, RoleConsumer, "", false},
		{"finalized is terminal for confirm", StateFinalized, ActionConfirm, RoleProvider, "", false},
		{"cancelled is terminal for confirm", StateCancelled, ActionConfirm, RoleProvider, "", false},
		{"cancelled is terminal for reschedule", StateCancelled, ActionReschedule, RoleConsumer, "", false},
		{"cancelled is terminal for finalize", StateCancelled, ActionAutoFinalize, RoleSystem, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := CanTransition(tt.role, tt.from, tt.action)
			assert.Equal(t, tt.allowed, allowed)
			if tt.allowed {
				next, ok := NextState(tt.from, tt.action)
				require.True(t, ok)
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

// Unknown states and actions must be rejected, never panic.
func TestTransitionTotality(t *testing.T) {
	assert.False(t, CanTransition(RoleConsumer, State("limbo"), ActionCancel))
	assert.False(t, CanTransition(RoleConsumer, StatePending, Action("teleport")))

	_, ok := NextState(State("limbo"), ActionCancel)
	assert.False(t, ok)
	_, ok = NextState(StatePending, Action("teleport"))
	assert.False(t, ok)
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateFinalized.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateAccepted.Terminal())

	// Terminal means no outgoing edges at all.
	for action := range transitions[StateFinalized] {
		t.Errorf("finalized should have no transitions, found %s", action)
	}
	for action := range transitions[StateCancelled] {
		t.Errorf("cancelled should have no transitions, found %s", action)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{"confirm", ActionConfirm, false},
		{"CANCEL", ActionCancel, false},
		{" reschedule ", ActionReschedule, false},
		{"auto_finalize", "", true}, // reserved for the sweeper
		{"", "", true},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
