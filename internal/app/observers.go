package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

var _ ports.SyncObserver = (*LogObserver)(nil)

// LogObserver writes a structured summary of every pass.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a log observer. A nil logger falls back to slog.Default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogObserver{logger: logger.With(slog.String("component", "app.LogObserver"))}
}

// ConflictsDetected logs each conflict that was auto-resolved in favor of the remote.
func (o *LogObserver) ConflictsDetected(ctx context.Context, conflicts []domain.Conflict) {
	o.logger.WarnContext(ctx, "conflicts resolved remote-wins; manual override available",
		slog.Int("count", len(conflicts)))

	for _, c := range conflicts {
		o.logger.Log(ctx, logging.LevelTrace, "conflict",
			slog.String("quote_id", c.ID),
			slog.String("local_updated_at", c.Local.UpdatedAt),
			slog.String("server_updated_at", c.Server.UpdatedAt),
		)
	}
}

// SyncCompleted logs the pass summary.
func (o *LogObserver) SyncCompleted(ctx context.Context, report *domain.SyncReport) {
	pushed, failed := report.PushCounts()

	o.logger.InfoContext(ctx, "sync pass completed",
		slog.String("trigger", report.Trigger),
		slog.Int("remote", report.Remote),
		slog.Int("conflicts", len(report.Conflicts)),
		slog.Int("added", len(report.Added)),
		slog.Int("local_only", report.LocalOnly),
		slog.Int("pushed", pushed),
		slog.Int("push_failed", failed),
		slog.Bool("degraded", report.FetchError != ""),
		slog.Duration("duration", report.Duration),
	)
}
