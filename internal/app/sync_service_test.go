package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/flags"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

type syncFixture struct {
	quotes *QuoteService
	store  *memory.KV
	remote *mocks.MockRemoteQuotes
	flags  *flags.Static
	svc    *SyncService
}

func newSyncFixture(t *testing.T, local []domain.Quote, observers ...ports.SyncObserver) *syncFixture {
	t.Helper()

	quotes, store := loaded(t, local...)
	remote := mocks.NewMockRemoteQuotes(t)
	ff, err := flags.NewStatic(nil)
	require.NoError(t, err)

	svc := NewSyncService(SyncServiceConfig{
		Quotes:      quotes,
		Remote:      remote,
		Store:       store,
		LastSyncKey: "lastSyncAt",
		Flags:       ff,
		Observers:   observers,
		Logger:      discardLogger(),
		Now:         func() time.Time { return testNow },
	})

	return &syncFixture{quotes: quotes, store: store, remote: remote, flags: ff, svc: svc}
}

func q(id, text, category, updatedAt string) domain.Quote {
	return domain.Quote{ID: id, Text: text, Category: category, UpdatedAt: updatedAt}
}

func pushed(local domain.Quote, serverID string) *domain.PushedQuote {
	server := local
	server.ID = serverID

	return &domain.PushedQuote{Local: local, Server: server}
}

func TestNewSyncService_PanicsWithoutDependencies(t *testing.T) {
	quotes, store := loaded(t)
	remote := mocks.NewMockRemoteQuotes(t)

	assert.Panics(t, func() { NewSyncService(SyncServiceConfig{Remote: remote, Store: store}) })
	assert.Panics(t, func() { NewSyncService(SyncServiceConfig{Quotes: quotes, Store: store}) })
	assert.Panics(t, func() { NewSyncService(SyncServiceConfig{Quotes: quotes, Remote: remote}) })
}

func TestSync_ConflictIsResolvedRemoteWins(t *testing.T) {
	local := q("1", "A", "X", "T1")
	remote := q("1", "B", "X", "T2")

	f := newSyncFixture(t, []domain.Quote{local})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{remote}, nil)

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, domain.Conflict{ID: "1", Local: local, Server: remote}, report.Conflicts[0])
	assert.Equal(t, []domain.Quote{remote}, f.quotes.Snapshot())
	assert.Equal(t, []domain.Quote{remote}, stored(t, f.store))
	assert.Equal(t, report.Conflicts, f.svc.Conflicts())
	assert.Zero(t, report.LocalOnly)
}

func TestSync_EqualTimestampIsNotAConflict(t *testing.T) {
	local := q("1", "A", "X", "T1")

	f := newSyncFixture(t, []domain.Quote{local})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "drifted", "X", "T1")}, nil)

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Empty(t, report.Conflicts)
	assert.Equal(t, []domain.Quote{local}, f.quotes.Snapshot())
}

func TestSync_AppendsRemoteOnlyRecords(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")})
	nine := q("9", "nine", "Y", "T9")
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "A", "X", "T1"), nine}, nil)

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{nine}, report.Added)
	assert.Equal(t, []string{"1", "9"}, ids(f.quotes.Snapshot()))
	assert.Equal(t, nine, f.quotes.Snapshot()[1])
	assert.Len(t, stored(t, f.store), 2)
}

func TestSync_LocalOnlyPreservedRegardlessOfPushOutcome(t *testing.T) {
	mine := q("local-1", "mine", "Z", "T1")

	tests := []struct {
		name    string
		result  *domain.PushedQuote
		err     error
		success bool
	}{
		{name: "push succeeds", result: pushed(mine, "srv-101"), success: true},
		{name: "push fails", err: domain.NewUnavailableError("remote-quotes", "HTTP 500")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, []domain.Quote{mine})
			f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{}, nil)
			f.remote.EXPECT().Push(mock.Anything, mine).Return(tt.result, tt.err)

			report, err := f.svc.Sync(context.Background(), TriggerManual)

			require.NoError(t, err)
			assert.Equal(t, []domain.Quote{mine}, f.quotes.Snapshot())
			assert.Equal(t, 1, report.LocalOnly)
			require.Len(t, report.Pushes, 1)
			assert.Equal(t, tt.success, report.Pushes[0].Succeeded())
		})
	}
}

func TestSync_PushFailuresAreIndependent(t *testing.T) {
	a := q("local-a", "a", "Z", "T")
	b := q("local-b", "b", "Z", "T")
	c := q("local-c", "c", "Z", "T")

	f := newSyncFixture(t, []domain.Quote{a, b, c})
	f.remote.EXPECT().FetchAll(mock.Anything).Return(nil, nil)
	f.remote.EXPECT().Push(mock.Anything, a).Return(pushed(a, "srv-1"), nil)
	f.remote.EXPECT().Push(mock.Anything, b).Return(nil, errors.New("connection reset"))
	f.remote.EXPECT().Push(mock.Anything, c).Return(pushed(c, "srv-3"), nil)

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	require.Len(t, report.Pushes, 3)
	assert.Equal(t, []string{"local-a", "local-b", "local-c"}, []string{report.Pushes[0].ID, report.Pushes[1].ID, report.Pushes[2].ID})
	assert.Equal(t, "srv-1", report.Pushes[0].Server.ID)
	assert.Equal(t, "connection reset", report.Pushes[1].Error)

	succeeded, failed := report.PushCounts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"local-a", "local-b", "local-c"}, ids(f.quotes.Snapshot()))
}

func TestSync_PushDisabledByFlag(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("local-1", "mine", "Z", "T1")})
	require.NoError(t, f.flags.Set(ports.FlagPushLocalOnly, false))
	f.remote.EXPECT().FetchAll(mock.Anything).Return(nil, nil)

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, 1, report.LocalOnly)
	assert.Empty(t, report.Pushes)
}

func TestSync_AdoptsPushedIDsWhenEnabled(t *testing.T) {
	mine := q("local-1", "mine", "Z", "T1")

	f := newSyncFixture(t, []domain.Quote{mine})
	require.NoError(t, f.flags.Set(ports.FlagAdoptPushedIDs, true))
	f.remote.EXPECT().FetchAll(mock.Anything).Return(nil, nil)
	f.remote.EXPECT().Push(mock.Anything, mine).Return(pushed(mine, "srv-101"), nil)

	_, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, []string{"srv-101"}, ids(f.quotes.Snapshot()))
}

func TestSync_FetchFailureDegradesToEmptySnapshot(t *testing.T) {
	local := []domain.Quote{q("1", "A", "X", "T1"), q("2", "B", "X", "T1")}

	f := newSyncFixture(t, local)
	require.NoError(t, f.flags.Set(ports.FlagPushLocalOnly, false))
	f.remote.EXPECT().FetchAll(mock.Anything).Return(nil, domain.NewUnavailableError("remote-quotes", "HTTP 503"))

	report, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Contains(t, report.FetchError, "HTTP 503")
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Added)
	assert.Equal(t, 2, report.LocalOnly)
	assert.Equal(t, local, f.quotes.Snapshot())
	assert.Equal(t, testStamp, report.LastSyncAt)
}

func TestSync_RecordsLastSyncMarker(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{})
	f.remote.EXPECT().FetchAll(mock.Anything).Return(nil, nil)

	_, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	raw, found, err := f.store.Read(context.Background(), "lastSyncAt")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testStamp, string(raw))

	restarted := NewSyncService(SyncServiceConfig{
		Quotes: f.quotes, Remote: f.remote, Store: f.store, LastSyncKey: "lastSyncAt", Logger: discardLogger(),
	})
	require.NoError(t, restarted.Load(context.Background()))
	assert.Equal(t, testStamp, restarted.Status().LastSyncAt)
}

func TestSync_IsIdempotentAgainstUnchangedRemote(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")})
	snapshot := []domain.Quote{q("1", "B", "X", "T2"), q("9", "nine", "Y", "T9")}
	f.remote.EXPECT().FetchAll(mock.Anything).Return(snapshot, nil).Times(2)

	first, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Len(t, first.Conflicts, 1)

	second, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Empty(t, second.Conflicts)
	assert.Empty(t, second.Added)
	assert.Equal(t, []string{"1", "9"}, ids(f.quotes.Snapshot()))
	assert.Len(t, f.svc.Conflicts(), 1, "a pass without conflicts keeps the pending set")
}

func TestSync_RefusesOverlappingPasses(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{})

	var fetches atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})

	f.remote.EXPECT().FetchAll(mock.Anything).RunAndReturn(func(context.Context) ([]domain.Quote, error) {
		if fetches.Add(1) == 1 {
			close(entered)
		}

		<-release

		return nil, nil
	})

	var wg sync.WaitGroup

	wg.Go(func() {
		_, err := f.svc.Sync(context.Background(), TriggerManual)
		assert.NoError(t, err)
	})

	<-entered
	assert.Equal(t, StateSyncing, f.svc.State())

	for range 5 {
		_, err := f.svc.Sync(context.Background(), TriggerTimer)
		require.ErrorIs(t, err, domain.ErrSyncInProgress)
		assert.True(t, domain.IsConflict(err))
	}

	close(release)
	wg.Wait()

	status := f.svc.Status()
	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, StateIdle, status.State)
	assert.Equal(t, int64(1), status.Passes)
	assert.Equal(t, int64(5), status.Skipped)
}

func TestSync_NotifiesObservers(t *testing.T) {
	observer := mocks.NewMockSyncObserver(t)

	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")}, observer)
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "B", "X", "T2")}, nil)

	observer.EXPECT().ConflictsDetected(mock.Anything, mock.MatchedBy(func(c []domain.Conflict) bool {
		return len(c) == 1 && c[0].ID == "1"
	})).Once()
	observer.EXPECT().SyncCompleted(mock.Anything, mock.MatchedBy(func(r *domain.SyncReport) bool {
		return r.Trigger == TriggerManual && r.LastSyncAt == testStamp
	})).Once()

	_, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
}

func TestSync_PersistFailureAbortsPass(t *testing.T) {
	quotes, _ := loaded(t, q("1", "A", "X", "T1"))
	store := mocks.NewMockKVStore(t)
	remote := mocks.NewMockRemoteQuotes(t)
	remote.EXPECT().FetchAll(mock.Anything).Return(nil, nil)
	remote.EXPECT().Push(mock.Anything, mock.Anything).Return(nil, errors.New("offline"))
	store.EXPECT().Write(mock.Anything, "lastSyncAt", mock.Anything).Return(errors.New("disk full"))

	svc := NewSyncService(SyncServiceConfig{
		Quotes: quotes, Remote: remote, Store: store, LastSyncKey: "lastSyncAt", Logger: discardLogger(),
	})

	_, err := svc.Sync(context.Background(), TriggerManual)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, StateIdle, svc.State())
	assert.Zero(t, svc.Status().Passes)
}

func TestSync_CancelledCallerStillCompletesPass(t *testing.T) {
	quotes, _ := loaded(t, q("1", "A", "X", "T1"), q("2", "mine", "X", "T1"))
	store := mocks.NewMockKVStore(t)
	remote := mocks.NewMockRemoteQuotes(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "B", "X", "T2")}, nil)
	remote.EXPECT().Push(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ domain.Quote) (*domain.PushedQuote, error) {
			cancel()
			return nil, ctx.Err()
		})
	store.EXPECT().Write(mock.Anything, "lastSyncAt", mock.Anything).
		RunAndReturn(func(ctx context.Context, _ string, _ []byte) error { return ctx.Err() })

	svc := NewSyncService(SyncServiceConfig{
		Quotes:      quotes,
		Remote:      remote,
		Store:       store,
		LastSyncKey: "lastSyncAt",
		Logger:      discardLogger(),
		Now:         func() time.Time { return testNow },
	})

	report, err := svc.Sync(ctx, TriggerManual)

	require.NoError(t, err)
	require.Len(t, report.Pushes, 1)
	assert.NotEmpty(t, report.Pushes[0].Error)

	status := svc.Status()
	assert.Equal(t, testStamp, status.LastSyncAt)
	assert.Equal(t, 1, status.PendingConflicts)
	assert.EqualValues(t, 1, status.Passes)

	kept, err := svc.KeepLocal(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "A", kept.Text)
}

func TestKeepLocal_RestoresLocalWithFreshTimestamp(t *testing.T) {
	local := q("1", "A", "X", "T1")
	stale := q("1", "B", "X", "T2")

	f := newSyncFixture(t, []domain.Quote{local})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{stale}, nil).Times(2)

	_, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	kept, err := f.svc.KeepLocal(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, q("1", "A", "X", testStamp), kept)
	assert.Equal(t, []domain.Quote{kept}, f.quotes.Snapshot())
	assert.Equal(t, []domain.Quote{kept}, stored(t, f.store))
	assert.Empty(t, f.svc.Conflicts())

	again, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Len(t, again.Conflicts, 1, "a stale remote conflicts again after keep-local")
}

func TestKeepServer_ReappliesRemote(t *testing.T) {
	remote := q("1", "B", "X", "T2")

	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{remote}, nil)

	_, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.NoError(t, f.quotes.ReplaceRecord(context.Background(), q("1", "edited meanwhile", "X", "T3")))

	kept, err := f.svc.KeepServer(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, remote, kept)
	assert.Equal(t, []domain.Quote{remote}, f.quotes.Snapshot())
	assert.Empty(t, f.svc.Conflicts())
}

func TestResolve_UnknownConflict(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{})

	_, err := f.svc.KeepLocal(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.KeepServer(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))
}

func TestResolve_OnlyTouchesOneConflict(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1"), q("2", "C", "X", "T1")})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "B", "X", "T2"), q("2", "D", "X", "T2")}, nil)

	_, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	_, err = f.svc.KeepLocal(context.Background(), "1")
	require.NoError(t, err)

	pending := f.svc.Conflicts()
	require.Len(t, pending, 1)
	assert.Equal(t, "2", pending[0].ID)
	assert.Equal(t, "D", f.quotes.Snapshot()[1].Text)
}

func TestDismissAll(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")})
	f.remote.EXPECT().FetchAll(mock.Anything).Return([]domain.Quote{q("1", "B", "X", "T2")}, nil)

	_, err := f.svc.Sync(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.DismissAll(context.Background()))
	assert.Empty(t, f.svc.Conflicts())
	assert.Equal(t, "B", f.quotes.Snapshot()[0].Text)
	assert.Zero(t, f.svc.DismissAll(context.Background()))
}

func TestSync_ConcurrentAddSurvivesPass(t *testing.T) {
	f := newSyncFixture(t, []domain.Quote{q("1", "A", "X", "T1")})
	require.NoError(t, f.flags.Set(ports.FlagPushLocalOnly, false))

	var added domain.Quote

	f.remote.EXPECT().FetchAll(mock.Anything).RunAndReturn(func(ctx context.Context) ([]domain.Quote, error) {
		var err error
		added, err = f.quotes.Add(ctx, "typed during sync", "Live")
		require.NoError(t, err)

		return []domain.Quote{q("1", "B", "X", "T2"), q("9", "nine", "Y", "T9")}, nil
	})

	_, err := f.svc.Sync(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", added.ID, "9"}, ids(f.quotes.Snapshot()))
	assert.Equal(t, "B", f.quotes.Snapshot()[0].Text)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "syncing", StateSyncing.String())
	assert.Equal(t, "state(7)", State(7).String())
}
