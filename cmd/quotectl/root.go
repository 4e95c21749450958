package main

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
)

const (
	envServer     = "QUOTECTL_SERVER"
	defaultServer = "http://localhost:8080"
	apiPrefix     = "/api/v1"
)

// app holds the state shared by every subcommand.
type app struct {
	server        string
	correlationID string
	timeout       time.Duration
	verbose       bool

	out    io.Writer
	client *clients.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "quotectl",
		Short:        "Operate a running quote-sync service",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.connect()
		},
	}

	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.server, "server", "s", cmp.Or(os.Getenv(envServer), defaultServer),
		"quote-sync base URL (env "+envServer+")")
	flags.StringVar(&a.correlationID, "correlation-id", "", "X-Correlation-ID sent with every request (default: random)")
	flags.DurationVar(&a.timeout, "timeout", 30*time.Second, "per-request timeout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddGroup(
		&cobra.Group{ID: "collection", Title: "Collection Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
	)

	root.AddCommand(
		a.quotesCmd(),
		a.categoriesCmd(),
		a.categoryCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.syncCmd(),
		a.statusCmd(),
		a.autoCmd(),
		a.conflictsCmd(),
	)

	return root
}

func (a *app) connect() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     strings.TrimSuffix(a.server, "/") + apiPrefix,
		ServiceName: "quote-sync",
		UserAgent:   "quotectl/" + Version,
		Timeout:     a.timeout,
		Retry: config.RetryConfig{
			MaxAttempts:     config.DefaultClientRetryMaxAttempts,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      config.DefaultClientRetryMultiplier,
			JitterFactor:    config.DefaultClientRetryJitterFactor,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   config.DefaultClientCircuitMaxFailures,
			Timeout:       a.timeout,
			HalfOpenLimit: 1,
		},
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	a.client = client

	if a.correlationID == "" {
		a.correlationID = uuid.NewString()
	}

	return nil
}

// call sends one request and returns the body of a 2xx response. Error
// envelopes from the service become Go errors carrying code and message.
func (a *app) call(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	ctx = middleware.ContextWithCorrelationID(ctx, a.correlationID)

	var (
		resp *http.Response
		err  error
	)

	switch method {
	case http.MethodGet:
		resp, err = a.client.Get(ctx, path)
	case http.MethodPost:
		resp, err = a.client.Post(ctx, path, body)
	case http.MethodPut:
		resp, err = a.client.Put(ctx, path, body)
	case http.MethodDelete:
		resp, err = a.client.Delete(ctx, path)
	default:
		return nil, nil, fmt.Errorf("unsupported method %s", method)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, raw, apiError(resp.StatusCode, raw)
	}

	return resp, raw, nil
}

func apiError(status int, raw []byte) error {
	var envelope dto.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return fmt.Errorf("HTTP %d", status)
	}

	msg := fmt.Sprintf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	for _, field := range slices.Sorted(maps.Keys(envelope.Error.Details)) {
		msg += fmt.Sprintf("\n  %s: %s", field, envelope.Error.Details[field])
	}

	return errors.New(msg)
}

// printJSON writes a response body indented.
func (a *app) printJSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := a.out.Write(raw)
		return werr
	}

	buf.WriteByte('\n')
	_, err := buf.WriteTo(a.out)

	return err
}

func (a *app) run(ctx context.Context, method, path string, body any) error {
	var payload []byte

	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	_, raw, err := a.call(ctx, method, path, payload)
	if err != nil {
		return err
	}

	return a.printJSON(raw)
}
