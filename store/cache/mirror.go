package cache

import (
	"context"
	"time"
)

// Op is the kind of change propagated to a mirror.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event describes a single cache mutation. Delete events carry only the key.
type Event struct {
	Op             Op
	Key            string
	Payload        []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int64
}

// Mirror receives cache mutations for durable write-behind storage.
// Implementations are best-effort: returned errors are logged by the store
// and never surfaced to cache callers.
type Mirror interface {
	OnChange(ctx context.Context, event Event) error
}
