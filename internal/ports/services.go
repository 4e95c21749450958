// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; the app layer never sees infrastructure types.
//
// Port Design Principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// KVStore is a byte-oriented key-value store.
// The persisted store survives restarts; a session store lives only as long as the process.
type KVStore interface {
	// Read returns the value stored at key. The bool is false when the key is absent.
	Read(ctx context.Context, key string) ([]byte, bool, error)

	// Write stores value at key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error
}

// RemoteQuotes is the contract for the externally owned quote endpoint.
type RemoteQuotes interface {
	// FetchAll returns the remote snapshot normalized to the quote shape.
	// A payload that cannot be adapted yields an empty slice and no error;
	// transport failures return domain.ErrUnavailable.
	FetchAll(ctx context.Context) ([]domain.Quote, error)

	// Push sends one record and returns the reconciled local/server pair.
	Push(ctx context.Context, quote domain.Quote) (*domain.PushedQuote, error)
}

// SyncObserver is notified about the outcome of each sync pass.
type SyncObserver interface {
	// ConflictsDetected is called when a pass found conflicts that were auto-resolved remote-wins.
	ConflictsDetected(ctx context.Context, conflicts []domain.Conflict)

	// SyncCompleted is called once per finished pass.
	SyncCompleted(ctx context.Context, report *domain.SyncReport)
}
