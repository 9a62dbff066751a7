package service

import (
	"context"

	"github.com/adityahw/koperasi-backoffice/internal/application/dispatcher"
	"github.com/adityahw/koperasi-backoffice/internal/domain/event"
)

// NotificationService turns workflow events into member notifications.
// Actual delivery (email, messaging) is an external collaborator; this
// implementation records the intent in the structured log so a delivery
// worker can be attached without touching the engine.
type NotificationService struct {
	logger Logger
}

// NewNotificationService creates a notification service.
func NewNotificationService(logger Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// Register subscribes the notification handlers on the dispatcher.
func (n *NotificationService) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeApplicationSubmitted, "notify-submitted", n.handle)
	d.SubscribeNamed(event.TypeStatusChanged, "notify-status-changed", n.handle)
	d.SubscribeNamed(event.TypeApplicationRejected, "notify-rejected", n.handle)
	d.SubscribeNamed(event.TypeApplicationDisbursed, "notify-disbursed", n.handle)
}

func (n *NotificationService) handle(ctx context.Context, evt *event.Event) error {
	n.logger.Info("Notification queued",
		"event_type", evt.Type,
		"application_id", evt.ApplicationID,
		"applicant_id", evt.PayloadString("applicant_id"),
		"status", evt.PayloadString("status"),
	)
	return nil
}
