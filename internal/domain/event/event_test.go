package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		eventType Type
		want      string
	}{
		{TypeApplicationSubmitted, "application.submitted"},
		{TypeStatusChanged, "application.status_changed"},
		{TypeApplicationRejected, "application.rejected"},
		{TypeApplicationDisbursed, "application.disbursed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.want {
				t.Errorf("Type.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"submitted", TypeApplicationSubmitted, true},
		{"status changed", TypeStatusChanged, true},
		{"rejected", TypeApplicationRejected, true},
		{"disbursed", TypeApplicationDisbursed, true},
		{"unknown type", Type("unknown.type"), false},
		{"empty string", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	appID := uuid.New()
	payload := map[string]interface{}{
		"status": "UNDER_REVIEW_DSP",
		"kind":   "LOAN",
	}

	evt := New(TypeApplicationSubmitted, appID, payload)

	if evt == nil {
		t.Fatal("New() returned nil")
	}
	if evt.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if evt.Type != TypeApplicationSubmitted {
		t.Errorf("Event Type = %v, want %v", evt.Type, TypeApplicationSubmitted)
	}
	if evt.ApplicationID != appID {
		t.Errorf("Event ApplicationID = %v, want %v", evt.ApplicationID, appID)
	}
	if evt.Payload["status"] != "UNDER_REVIEW_DSP" {
		t.Errorf("Event Payload[status] = %v", evt.Payload["status"])
	}
	if evt.Timestamp.IsZero() {
		t.Error("Event Timestamp should not be zero")
	}
	if time.Since(evt.Timestamp) > time.Second {
		t.Error("Event Timestamp should be recent")
	}
}

func TestEvent_PayloadString(t *testing.T) {
	evt := New(TypeStatusChanged, uuid.New(), map[string]interface{}{
		"status": "REJECTED",
		"count":  42,
	})

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"existing string", "status", "REJECTED"},
		{"non-string value", "count", ""},
		{"missing key", "nonexistent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evt.PayloadString(tt.key); got != tt.want {
				t.Errorf("PayloadString(%v) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestEvent_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := New(TypeStatusChanged, uuid.New(), nil)
		if ids[evt.ID] {
			t.Errorf("Duplicate event ID found: %s", evt.ID)
		}
		ids[evt.ID] = true
	}
}
