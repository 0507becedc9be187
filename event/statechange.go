package event

const stateChangeFieldsVersion = "2.0"

// StateChange reports an interface moving between service states.
type StateChange struct {
	Header

	newState       EntityState
	oldState       EntityState
	stateInterface string

	additionalFields KeyValueList
}

// NewStateChange creates a state change event.
func NewStateChange(name, id string, newState, oldState EntityState, stateInterface string) *StateChange {
	s := &StateChange{
		newState:       newState,
		oldState:       oldState,
		stateInterface: stateInterface,
	}
	s.initHeader(DomainStateChange, name, id)
	return s
}

// AddField appends one additional name/value pair.
func (s *StateChange) AddField(name, value string) *StateChange {
	s.additionalFields.Add(name, value)
	return s
}
