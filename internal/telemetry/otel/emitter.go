package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"brokerops/client/internal/telemetry"
)

// NewEventEmitter returns an EventEmitter that sends action events as OTel
// log records via the given LoggerProvider. A nil provider yields a no-op.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return telemetry.NopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("brokerops.actions")}
}

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the action event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.ActionEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if event.Detail != "" {
		rec.SetBody(otellog.StringValue(event.Detail))
	}
	if event.UserID != 0 {
		rec.AddAttributes(otellog.Int("user_id", event.UserID))
	}
	if event.Action != "" {
		rec.AddAttributes(otellog.String("action", event.Action))
	}
	if event.Subject != "" {
		rec.AddAttributes(otellog.String("subject", event.Subject))
	}
	if event.Outcome != "" {
		rec.AddAttributes(otellog.String("outcome", event.Outcome))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
