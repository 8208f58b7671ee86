package storage

import (
	"context"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// Store defines a destination for completed registrations.
// Implementations must be safe for concurrent Append calls from different calls.
type Store interface {
	// Append records one registration row
	Append(ctx context.Context, rec models.Record) error

	// Name identifies the store in logs
	Name() string
}
