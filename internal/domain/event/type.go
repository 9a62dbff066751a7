package event

// Type identifies the type of domain event.
type Type string

const (
	TypeApplicationSubmitted Type = "application.submitted"
	TypeStatusChanged        Type = "application.status_changed"
	TypeApplicationRejected  Type = "application.rejected"
	TypeApplicationDisbursed Type = "application.disbursed"
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants.
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted,
		TypeStatusChanged,
		TypeApplicationRejected,
		TypeApplicationDisbursed:
		return true
	default:
		return false
	}
}
