//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	featureflags "github.com/jsamuelsen/quote-sync/internal/adapters/flags"
	apihttp "github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRemote is a stand-in for the remote collection endpoint. GET serves
// the configured payload; POST records the body and echoes it with a new id.
type fakeRemote struct {
	*httptest.Server

	mu         sync.Mutex
	payload    []byte
	status     int
	pushStatus int
	nextID     int
	pushes     []map[string]any
	headers    []http.Header
}

func newFakeRemote() *fakeRemote {
	r := &fakeRemote{
		payload:    []byte(`[]`),
		status:     http.StatusOK,
		pushStatus: http.StatusCreated,
		nextID:     101,
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))

	return r
}

func (r *fakeRemote) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.headers = append(r.headers, req.Header.Clone())
	w.Header().Set("Content-Type", "application/json")

	switch req.Method {
	case http.MethodGet:
		w.WriteHeader(r.status)
		_, _ = w.Write(r.payload)

	case http.MethodPost:
		var record map[string]any

		body, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(body, &record)

		r.pushes = append(r.pushes, record)

		if r.pushStatus >= http.StatusBadRequest {
			w.WriteHeader(r.pushStatus)
			return
		}

		record["id"] = r.nextID
		r.nextID++

		w.WriteHeader(r.pushStatus)
		_ = json.NewEncoder(w).Encode(record)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (r *fakeRemote) serveJSON(payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payload = []byte(payload)
	r.status = http.StatusOK
}

func (r *fakeRemote) fail(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = status
	r.pushStatus = status
}

func (r *fakeRemote) pushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pushes)
}

func (r *fakeRemote) lastHeader(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.headers) == 0 {
		return ""
	}

	return r.headers[len(r.headers)-1].Get(name)
}

func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "remote-quotes",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: slog.New(slog.DiscardHandler),
	}
}

// stack is the service wired the way cmd/service wires it, against a fake
// remote and an injected persisted store.
type stack struct {
	engine *gin.Engine
	quotes *app.QuoteService
	sync   *app.SyncService
	auto   *app.AutoSync
	remote *acl.RemoteQuoteClient
}

func newStack(ctx context.Context, remoteURL string, store interface {
	ports.KVStore
	ports.HealthChecker
}, features map[string]any,
) (*stack, error) {
	logger := slog.New(slog.DiscardHandler)

	client, err := clients.New(testClientConfig(remoteURL))
	if err != nil {
		return nil, err
	}

	remote := acl.NewRemoteQuoteClient(acl.RemoteQuoteConfig{
		Client:     client,
		Name:       "remote-quotes",
		MaxRecords: 3,
		Logger:     logger,
	})

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:   store,
		Session: memory.New(),
		Logger:  logger,
	})
	if err := quotes.Load(ctx); err != nil {
		return nil, err
	}

	if features == nil {
		features = map[string]any{}
	}

	flags, err := featureflags.NewStatic(features)
	if err != nil {
		return nil, err
	}

	syncSvc := app.NewSyncService(app.SyncServiceConfig{
		Quotes:    quotes,
		Remote:    remote,
		Store:     store,
		Flags:     flags,
		Observers: []ports.SyncObserver{app.NewLogObserver(logger)},
		Logger:    logger,
	})
	if err := syncSvc.Load(ctx); err != nil {
		return nil, err
	}

	auto := app.NewAutoSync(app.AutoSyncConfig{Runner: syncSvc, Interval: time.Hour, Logger: logger})

	registry := ports.NewHealthRegistry()
	if err := registry.Register(store); err != nil {
		return nil, err
	}

	if err := registry.Register(remote); err != nil {
		return nil, err
	}

	engine := gin.New()
	apihttp.SetupRouter(engine, apihttp.RouterConfig{
		Logger:          logger,
		ServiceName:     "quote-sync-integration",
		HealthHandler:   handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "test", "test")),
		QuoteHandler:    handlers.NewQuoteHandler(quotes),
		TransferHandler: handlers.NewTransferHandler(quotes),
		SyncHandler:     handlers.NewSyncHandler(syncSvc, auto),
		Timeout:         apihttp.DefaultRequestTimeout,
	})

	return &stack{engine: engine, quotes: quotes, sync: syncSvc, auto: auto, remote: remote}, nil
}
