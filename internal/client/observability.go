package client

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single remote call, including retries.
type CallEvent struct {
	Op        string
	Status    int
	Attempts  int
	LatencyMs int64
	Err       error
}

// Observer receives events about remote calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes call events to an io.Writer as structured log lines.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"op", event.Op,
		"status", event.Status,
		"attempts", event.Attempts,
		"latency_ms", event.LatencyMs,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("remote_call", attrs...)
		return
	}
	o.logger.Info("remote_call", attrs...)
}
