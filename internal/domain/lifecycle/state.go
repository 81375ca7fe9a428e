package lifecycle

// State is a phase of the submission lifecycle. The manager cycles
// between creating and editing for the lifetime of the session;
// submitting exists so an in-flight submit blocks a second one.
type State string

const (
	StateCreating   State = "CREATING"
	StateEditing    State = "EDITING"
	StateSubmitting State = "SUBMITTING"
)

var validStates = map[State]bool{
	StateCreating:   true,
	StateEditing:    true,
	StateSubmitting: true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
