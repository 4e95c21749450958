package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// DefaultPushConcurrency bounds concurrent pushes when none is configured.
const DefaultPushConcurrency = 4

// Sync triggers recorded on reports and log lines.
const (
	TriggerManual = "manual"
	TriggerTimer  = "timer"
)

// State is the orchestrator's pass state.
type State int32

const (
	StateIdle State = iota
	StateSyncing
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// SyncStatus is a point-in-time view of the orchestrator.
type SyncStatus struct {
	State            State
	LastSyncAt       string
	PendingConflicts int
	Passes           int64
	Skipped          int64
	LastReport       *domain.SyncReport
}

// SyncService reconciles the local collection with the remote endpoint.
// At most one pass runs at a time; overlapping triggers are refused.
type SyncService struct {
	quotes          *QuoteService
	remote          ports.RemoteQuotes
	store           ports.KVStore
	lastSyncKey     string
	flags           ports.FeatureFlags
	observers       []ports.SyncObserver
	pushConcurrency int
	logger          *slog.Logger
	now             func() time.Time

	state   atomic.Int32
	passes  atomic.Int64
	skipped atomic.Int64

	mu         sync.Mutex
	pending    []domain.Conflict
	lastSyncAt string
	lastReport *domain.SyncReport
}

// SyncServiceConfig contains the dependencies of the sync orchestrator.
type SyncServiceConfig struct {
	Quotes *QuoteService
	Remote ports.RemoteQuotes

	// Store holds the last-sync marker under LastSyncKey.
	Store       ports.KVStore
	LastSyncKey string

	// Flags gate the push path. Nil means every flag takes its default.
	Flags ports.FeatureFlags

	Observers []ports.SyncObserver

	// PushConcurrency bounds concurrent pushes. Defaults to DefaultPushConcurrency.
	PushConcurrency int

	Logger *slog.Logger
	Now    func() time.Time
}

// NewSyncService creates the orchestrator in the Idle state.
// Panics if Quotes, Remote, or Store is nil.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Quotes == nil {
		panic("SyncService: Quotes is required")
	}

	if cfg.Remote == nil {
		panic("SyncService: Remote is required")
	}

	if cfg.Store == nil {
		panic("SyncService: Store is required")
	}

	if cfg.LastSyncKey == "" {
		cfg.LastSyncKey = DefaultStoreKeys().LastSyncAt
	}

	if cfg.Flags == nil {
		cfg.Flags = defaultFlags{}
	}

	if cfg.PushConcurrency <= 0 {
		cfg.PushConcurrency = DefaultPushConcurrency
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &SyncService{
		quotes:          cfg.Quotes,
		remote:          cfg.Remote,
		store:           cfg.Store,
		lastSyncKey:     cfg.LastSyncKey,
		flags:           cfg.Flags,
		observers:       slices.Clone(cfg.Observers),
		pushConcurrency: cfg.PushConcurrency,
		logger:          cfg.Logger.With(slog.String("component", "app.SyncService")),
		now:             cfg.Now,
	}
}

// Load restores the last-sync marker from the store.
func (s *SyncService) Load(ctx context.Context) error {
	raw, found, err := s.store.Read(ctx, s.lastSyncKey)
	if err != nil {
		return fmt.Errorf("reading last sync marker: %w", err)
	}

	if found {
		s.mu.Lock()
		s.lastSyncAt = string(raw)
		s.mu.Unlock()
	}

	return nil
}

// State reports whether a pass is running.
func (s *SyncService) State() State {
	return State(s.state.Load())
}

// Sync runs one pass: fetch, detect, merge, persist, push, mark, notify.
// It returns domain.ErrSyncInProgress without side effects when a pass is
// already running. A failed fetch degrades to an empty remote snapshot.
//
// Cancellation of ctx only bounds the remote calls. Once started, the local
// side of a pass (merge, conflict bookkeeping, marker) always completes.
func (s *SyncService) Sync(ctx context.Context, trigger string) (*domain.SyncReport, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateSyncing)) {
		s.skipped.Add(1)
		return nil, domain.ErrSyncInProgress
	}
	defer s.state.Store(int32(StateIdle))

	callCtx := logging.WithSyncTrigger(ctx, trigger)
	ctx = context.WithoutCancel(callCtx)
	logger := logging.FromContext(ctx).With(slog.String("component", "app.SyncService"))

	start := s.now()
	report := &domain.SyncReport{
		Trigger:   trigger,
		StartedAt: start,
		Conflicts: []domain.Conflict{},
		Added:     []domain.Quote{},
		Pushes:    []domain.PushOutcome{},
	}

	logger.DebugContext(ctx, "sync pass started")

	remote, err := s.remote.FetchAll(callCtx)
	if err != nil {
		logger.WarnContext(ctx, "remote fetch failed; continuing with an empty snapshot",
			slog.Any("error", err))

		report.FetchError = err.Error()
		remote = nil
	}

	report.Remote = len(remote)

	if err := s.merge(ctx, remote, report); err != nil {
		return nil, err
	}

	if len(report.Conflicts) > 0 {
		s.mu.Lock()
		s.pending = slices.Clone(report.Conflicts)
		s.mu.Unlock()
	}

	localOnly := domain.LocalOnly(s.quotes.Snapshot(), domain.IndexByID(remote))
	report.LocalOnly = len(localOnly)

	if s.flags.IsEnabled(ctx, ports.FlagPushLocalOnly, true) {
		report.Pushes = s.push(callCtx, ctx, localOnly)
	}

	stamp := domain.FormatTimestamp(s.now())
	if err := s.store.Write(ctx, s.lastSyncKey, []byte(stamp)); err != nil {
		return nil, fmt.Errorf("writing last sync marker: %w", err)
	}

	report.LastSyncAt = stamp
	report.Duration = s.now().Sub(start)

	s.mu.Lock()
	s.lastSyncAt = stamp
	s.lastReport = report
	s.mu.Unlock()

	s.passes.Add(1)
	s.notify(ctx, report)

	return report, nil
}

// merge applies the remote-wins policy to the live collection: conflicting
// records are replaced first, then remote-only records are appended.
func (s *SyncService) merge(ctx context.Context, remote []domain.Quote, report *domain.SyncReport) error {
	local := s.quotes.Snapshot()
	conflicts := domain.DetectConflicts(local, remote)
	result := domain.Merge(local, remote, conflicts)

	if len(conflicts) > 0 {
		servers := make([]domain.Quote, len(conflicts))
		for i, c := range conflicts {
			servers[i] = c.Server
		}

		if _, err := s.quotes.ApplyReplacements(ctx, servers); err != nil {
			return fmt.Errorf("applying remote versions: %w", err)
		}

		report.Conflicts = conflicts
	}

	added, err := s.quotes.AppendAbsent(ctx, result.NewFromRemote)
	if err != nil {
		return fmt.Errorf("appending remote records: %w", err)
	}

	report.Added = added

	return nil
}

// push forwards local-only records. Each record succeeds or fails on its own.
// The remote calls run under callCtx; adopting ids runs under ctx.
func (s *SyncService) push(callCtx, ctx context.Context, localOnly []domain.Quote) []domain.PushOutcome {
	outcomes := make([]domain.PushOutcome, len(localOnly))
	if len(localOnly) == 0 {
		return outcomes
	}

	logger := logging.FromContext(ctx)
	results := ParallelPartialLimit(callCtx, s.pushConcurrency, localOnly, s.remote.Push)
	adopt := s.flags.IsEnabled(ctx, ports.FlagAdoptPushedIDs, false)

	for i, r := range results {
		id := localOnly[i].ID
		outcomes[i].ID = id

		if r.Err == nil && r.Value == nil {
			r.Err = domain.NewUnavailableError("remote", "push returned no record")
		}

		if r.Err != nil {
			logger.WarnContext(ctx, "push failed",
				slog.String("quote_id", id),
				slog.Any("error", r.Err),
			)

			outcomes[i].Error = r.Err.Error()

			continue
		}

		server := r.Value.Server
		outcomes[i].Server = &server

		if adopt && server.ID != id {
			if _, err := s.quotes.Adopt(ctx, id, server); err != nil {
				logger.WarnContext(ctx, "adopting pushed record failed",
					slog.String("quote_id", id),
					slog.Any("error", err),
				)
			}
		}
	}

	return outcomes
}

func (s *SyncService) notify(ctx context.Context, report *domain.SyncReport) {
	for _, o := range s.observers {
		if len(report.Conflicts) > 0 {
			o.ConflictsDetected(ctx, report.Conflicts)
		}

		o.SyncCompleted(ctx, report)
	}
}

// Conflicts returns the conflicts awaiting a manual decision.
func (s *SyncService) Conflicts() []domain.Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.pending)
}

// KeepLocal restores the local side of a pending conflict with a fresh
// timestamp and removes the conflict.
func (s *SyncService) KeepLocal(ctx context.Context, id string) (domain.Quote, error) {
	return s.resolve(ctx, id, func(c domain.Conflict) domain.Quote {
		q := c.Local
		q.UpdatedAt = domain.FormatTimestamp(s.now())

		return q
	})
}

// KeepServer reapplies the remote side of a pending conflict and removes the conflict.
func (s *SyncService) KeepServer(ctx context.Context, id string) (domain.Quote, error) {
	return s.resolve(ctx, id, func(c domain.Conflict) domain.Quote {
		return c.Server
	})
}

func (s *SyncService) resolve(ctx context.Context, id string, pick func(domain.Conflict) domain.Quote) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.pending, func(c domain.Conflict) bool { return c.ID == id })
	if idx < 0 {
		return domain.Quote{}, domain.NewNotFoundError("conflict", id)
	}

	quote := pick(s.pending[idx])

	if err := s.quotes.ReplaceRecord(ctx, quote); err != nil {
		return domain.Quote{}, err
	}

	s.pending = slices.Delete(s.pending, idx, idx+1)

	s.logger.InfoContext(ctx, "conflict resolved",
		slog.String("quote_id", id),
		slog.String("updated_at", quote.UpdatedAt),
	)

	return quote, nil
}

// DismissAll accepts the remote versions already applied and clears the
// pending set. It returns the number of conflicts dismissed.
func (s *SyncService) DismissAll(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	s.pending = nil

	s.logger.InfoContext(ctx, "pending conflicts dismissed", slog.Int("count", n))

	return n
}

// Status returns the current orchestrator state.
func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SyncStatus{
		State:            s.State(),
		LastSyncAt:       s.lastSyncAt,
		PendingConflicts: len(s.pending),
		Passes:           s.passes.Load(),
		Skipped:          s.skipped.Load(),
		LastReport:       s.lastReport,
	}
}

// defaultFlags answers every flag with its default.
type defaultFlags struct{}

func (defaultFlags) IsEnabled(_ context.Context, _ string, def bool) bool     { return def }
func (defaultFlags) GetString(_ context.Context, _ string, def string) string { return def }
func (defaultFlags) GetInt(_ context.Context, _ string, def int) int          { return def }
