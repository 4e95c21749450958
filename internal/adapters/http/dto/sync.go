package dto

import (
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// SyncReportResponse is the wire form of one pass summary.
type SyncReportResponse struct {
	Trigger      string               `json:"trigger"`
	StartedAt    time.Time            `json:"startedAt"`
	DurationMS   int64                `json:"durationMs"`
	Degraded     bool                 `json:"degraded"`
	FetchError   string               `json:"fetchError,omitempty"`
	Remote       int                  `json:"remote"`
	Conflicts    []domain.Conflict    `json:"conflicts"`
	Added        []domain.Quote       `json:"added"`
	LocalOnly    int                  `json:"localOnly"`
	Pushed       int                  `json:"pushed"`
	PushFailures int                  `json:"pushFailures"`
	Pushes       []domain.PushOutcome `json:"pushes"`
	LastSyncAt   string               `json:"lastSyncAt"`
}

// NewSyncReportResponse converts a report; nil stays nil.
func NewSyncReportResponse(r *domain.SyncReport) *SyncReportResponse {
	if r == nil {
		return nil
	}

	pushed, failed := r.PushCounts()

	return &SyncReportResponse{
		Trigger:      r.Trigger,
		StartedAt:    r.StartedAt,
		DurationMS:   r.Duration.Milliseconds(),
		Degraded:     r.FetchError != "",
		FetchError:   r.FetchError,
		Remote:       r.Remote,
		Conflicts:    nonNil(r.Conflicts),
		Added:        nonNil(r.Added),
		LocalOnly:    r.LocalOnly,
		Pushed:       pushed,
		PushFailures: failed,
		Pushes:       nonNil(r.Pushes),
		LastSyncAt:   r.LastSyncAt,
	}
}

// SyncStatusResponse is the body of GET /sync/status.
type SyncStatusResponse struct {
	State            string              `json:"state"`
	LastSyncAt       string              `json:"lastSyncAt,omitempty"`
	PendingConflicts int                 `json:"pendingConflicts"`
	AutoSync         bool                `json:"autoSync"`
	Passes           int64               `json:"passes"`
	Skipped          int64               `json:"skipped"`
	LastReport       *SyncReportResponse `json:"lastReport,omitempty"`
}

// AutoSyncRequest is the body of PUT /sync/auto.
type AutoSyncRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// AutoSyncResponse echoes the scheduler state.
type AutoSyncResponse struct {
	Enabled bool `json:"enabled"`
}

// ConflictListResponse lists pending conflicts.
type ConflictListResponse struct {
	Conflicts []domain.Conflict `json:"conflicts"`
	Count     int               `json:"count"`
}

// NewConflictListResponse wraps conflicts, rendering nil as an empty list.
func NewConflictListResponse(conflicts []domain.Conflict) ConflictListResponse {
	conflicts = nonNil(conflicts)
	return ConflictListResponse{Conflicts: conflicts, Count: len(conflicts)}
}

// DismissResponse reports how many conflicts were dropped.
type DismissResponse struct {
	Dismissed int `json:"dismissed"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
