package reservation

// rule is one allowed edge of the lifecycle state machine: the resulting
// state and the roles permitted to trigger it.
type rule struct {
	to    State
	roles []Role
}

// transitions is the complete lifecycle table. Any (state, action) pair
// absent here is an illegal transition; terminal states have no entries
// at all.
var transitions = map[State]map[Action]rule{
	StatePending: {
		ActionConfirm:    {to: StateAccepted, roles: []Role{RoleProvider}},
		ActionCancel:     {to: StateCancelled, roles: []Role{RoleConsumer, RoleProvider}},
		ActionReschedule: {to: StatePending, roles: []Role{RoleConsumer, RoleProvider}},
	},
	StateAccepted: {
		ActionCancel:       {to: StateCancelled, roles: []Role{RoleConsumer, RoleProvider}},
		ActionAutoFinalize: {to: StateFinalized, roles: []Role{RoleSystem}},
	},
	StateFinalized: {},
	StateCancelled: {},
}

// CanTransition reports whether the given role may trigger action from
// the current state.
func CanTransition(role Role, current State, action Action) bool {
	r, ok := transitions[current][action]
	if !ok {
		return false
	}
	for _, allowed := range r.roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// NextState returns the destination state for (current, action), or
// false when the pair is not in the table.
func NextState(current State, action Action) (State, bool) {
	r, ok := transitions[current][action]
	if !ok {
		return "", false
	}
	return r.to, true
}
