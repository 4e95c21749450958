package domain

import "time"

// PushedQuote pairs a pushed local record with the version the remote reported back.
type PushedQuote struct {
	Local  Quote `json:"local"`
	Server Quote `json:"server"`
}

// PushOutcome is the per-record result of pushing one local-only record.
type PushOutcome struct {
	ID     string `json:"id"`
	Server *Quote `json:"server,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Succeeded reports whether the remote accepted the record.
func (o PushOutcome) Succeeded() bool {
	return o.Error == ""
}

// SyncReport summarizes one sync pass.
type SyncReport struct {
	Trigger    string        `json:"trigger"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	FetchError string        `json:"fetchError,omitempty"`
	Remote     int           `json:"remote"`
	Conflicts  []Conflict    `json:"conflicts"`
	Added      []Quote       `json:"added"`
	LocalOnly  int           `json:"localOnly"`
	Pushes     []PushOutcome `json:"pushes"`
	LastSyncAt string        `json:"lastSyncAt"`
}

// PushCounts returns the number of successful and failed pushes.
func (r *SyncReport) PushCounts() (succeeded, failed int) {
	for _, p := range r.Pushes {
		if p.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}

	return succeeded, failed
}
