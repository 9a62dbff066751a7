package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adityahw/koperasi-backoffice/internal/domain/event"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) HasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func TestNewDispatcher(t *testing.T) {
	if d := NewDispatcher(); d == nil {
		t.Fatal("expected non-nil dispatcher")
	}
	if d := NewDispatcher(WithLogger(&mockLogger{})); d == nil {
		t.Fatal("expected non-nil dispatcher")
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("handler receives dispatched event", func(t *testing.T) {
		d := NewDispatcher()
		called := false

		d.Subscribe(event.TypeApplicationSubmitted, func(ctx context.Context, evt *event.Event) error {
			called = true
			return nil
		})

		evt := event.New(event.TypeApplicationSubmitted, uuid.New(), nil)
		if err := d.Dispatch(context.Background(), evt); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if !called {
			t.Error("expected handler to be called")
		}
	})

	t.Run("multiple handlers on same event type", func(t *testing.T) {
		d := NewDispatcher()
		called1, called2 := false, false

		d.Subscribe(event.TypeStatusChanged, func(ctx context.Context, evt *event.Event) error {
			called1 = true
			return nil
		})
		d.Subscribe(event.TypeStatusChanged, func(ctx context.Context, evt *event.Event) error {
			called2 = true
			return nil
		})

		evt := event.New(event.TypeStatusChanged, uuid.New(), nil)
		if err := d.Dispatch(context.Background(), evt); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if !called1 || !called2 {
			t.Error("expected both handlers to be called")
		}
	})

	t.Run("handler on other event type not called", func(t *testing.T) {
		d := NewDispatcher()
		called := false

		d.Subscribe(event.TypeApplicationRejected, func(ctx context.Context, evt *event.Event) error {
			called = true
			return nil
		})

		evt := event.New(event.TypeStatusChanged, uuid.New(), nil)
		if err := d.Dispatch(context.Background(), evt); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if called {
			t.Error("handler should only receive its subscribed type")
		}
	})
}

func TestSubscribeNamed(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	d.SubscribeNamed(event.TypeApplicationSubmitted, "notify-member", func(ctx context.Context, evt *event.Event) error {
		return nil
	})

	if !logger.HasInfo("Handler registered") {
		t.Error("expected registration to be logged")
	}
}

func TestDispatch_NilEvent(t *testing.T) {
	d := NewDispatcher()

	if err := d.Dispatch(context.Background(), nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	wantErr := errors.New("downstream unavailable")
	d.SubscribeNamed(event.TypeApplicationRejected, "failing", func(ctx context.Context, evt *event.Event) error {
		return wantErr
	})

	evt := event.New(event.TypeApplicationRejected, uuid.New(), nil)
	err := d.Dispatch(context.Background(), evt)
	if !errors.Is(err, wantErr) {
		t.Errorf("Dispatch() error = %v, want %v", err, wantErr)
	}
	if logger.ErrorCount() != 1 {
		t.Errorf("expected 1 logged error, got %d", logger.ErrorCount())
	}
}

func TestDispatchAsync(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32
	done := make(chan struct{})

	d.Subscribe(event.TypeApplicationDisbursed, func(ctx context.Context, evt *event.Event) error {
		count.Add(1)
		close(done)
		return nil
	})

	evt := event.New(event.TypeApplicationDisbursed, uuid.New(), nil)
	d.DispatchAsync(context.Background(), evt)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler was not invoked")
	}

	if count.Load() != 1 {
		t.Errorf("handler invocations = %d, want 1", count.Load())
	}
}

func TestClose_WaitsForAsyncHandlers(t *testing.T) {
	d := NewDispatcher()
	var finished atomic.Bool

	d.Subscribe(event.TypeStatusChanged, func(ctx context.Context, evt *event.Event) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	d.DispatchAsync(context.Background(), event.New(event.TypeStatusChanged, uuid.New(), nil))

	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !finished.Load() {
		t.Error("Close() should wait for in-flight handlers")
	}
}

func TestDispatchAsync_AfterCloseIsNoop(t *testing.T) {
	d := NewDispatcher()
	var called atomic.Bool

	d.Subscribe(event.TypeStatusChanged, func(ctx context.Context, evt *event.Event) error {
		called.Store(true)
		return nil
	})

	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	d.DispatchAsync(context.Background(), event.New(event.TypeStatusChanged, uuid.New(), nil))
	time.Sleep(20 * time.Millisecond)

	if called.Load() {
		t.Error("dispatch after close should not invoke handlers")
	}
}
