// Package telemetry emits client action events (logins, lifecycle mutations)
// for operational visibility. Emission is best-effort and never blocks or
// fails the action that triggered it.
package telemetry

import (
	"context"
	"log"
	"time"
)

// ActionEvent describes one user-triggered client action.
type ActionEvent struct {
	UserID    int
	Action    string // e.g. login, status_override, encoder_reassign, cancel
	Subject   string // e.g. "import/12"
	Outcome   string // "ok" or "error"
	Detail    string
	CreatedAt time.Time
}

// EventEmitter sends one action event. Implementations must be safe for
// concurrent use.
type EventEmitter interface {
	Emit(ctx context.Context, event *ActionEvent) error
}

// NopEmitter discards events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, *ActionEvent) error { return nil }

// EmitAsync runs Emit in a goroutine with a short timeout so the triggering
// action is not blocked. Errors are logged.
func EmitAsync(emitter EventEmitter, event *ActionEvent) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
