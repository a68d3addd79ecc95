// Package audit records dispatched completions for traceability. Recording
// is best-effort glue around the dispatch core: a failed insert is logged,
// never surfaced to the caller of the completion.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded completion dispatch
type Entry struct {
	ID           uuid.UUID
	Provider     string
	Model        string
	Status       string // "ok" or "error"
	FinishReason string
	ErrorMessage string
	LatencyMs    int64
	CreatedAt    time.Time
}

// Recorder persists completion entries
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// NopRecorder discards entries. Used when no audit database is configured.
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(ctx context.Context, entry *Entry) error {
	return nil
}
