package dispatcher

import (
	"context"

	"github.com/adityahw/koperasi-backoffice/internal/domain/event"
)

// Handler processes a dispatched domain event.
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo pairs a handler with its registration name for debugging.
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
