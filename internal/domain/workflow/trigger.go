package workflow

// Trigger represents an operation that can cause a status transition.
type Trigger string

const (
	TriggerSubmit    Trigger = "SUBMIT"
	TriggerApprove   Trigger = "APPROVE"
	TriggerReject    Trigger = "REJECT"
	TriggerRevise    Trigger = "REVISE"
	TriggerDisburse  Trigger = "DISBURSE"
	TriggerAuthorize Trigger = "AUTHORIZE"
	TriggerCancel    Trigger = "CANCEL"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
