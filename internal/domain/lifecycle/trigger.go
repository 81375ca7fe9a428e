package lifecycle

// Trigger is an event that can cause a lifecycle transition
type Trigger string

const (
	TriggerBeginEdit   Trigger = "BEGIN_EDIT"
	TriggerCancelEdit  Trigger = "CANCEL_EDIT"
	TriggerStartSubmit Trigger = "START_SUBMIT"
	TriggerSubmitOK    Trigger = "SUBMIT_OK"
	TriggerSubmitFail  Trigger = "SUBMIT_FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
