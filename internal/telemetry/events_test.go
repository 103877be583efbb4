package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []*ActionEvent
	done   chan struct{}
}

func (c *captureEmitter) Emit(ctx context.Context, e *ActionEvent) error {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	close(c.done)
	return nil
}

func TestEmitAsync(t *testing.T) {
	c := &captureEmitter{done: make(chan struct{})}
	EmitAsync(c, &ActionEvent{UserID: 3, Action: "status_override", Subject: "import/12", Outcome: "ok"})
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not emitted")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) != 1 || c.events[0].Action != "status_override" {
		t.Errorf("events = %+v", c.events)
	}
}

func TestEmitAsync_NilSafe(t *testing.T) {
	EmitAsync(nil, &ActionEvent{})
	EmitAsync(NopEmitter{}, nil)
}
