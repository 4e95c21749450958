package acl

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// Defaults used when RemoteQuoteConfig leaves a field empty.
const (
	defaultMaxRecords     = 20
	defaultTextLimit      = 200
	defaultServerCategory = "Server"
	defaultRemoteName     = "remote-quotes"
)

// RemoteQuoteConfig configures the remote quote adapter.
type RemoteQuoteConfig struct {
	// Client is the HTTP client. Its BaseURL is the remote collection URL.
	Client *clients.Client

	// Name identifies the endpoint in errors, logs, and health checks.
	Name string

	// MaxRecords caps how many post-shaped records are adapted per fetch.
	MaxRecords int

	// TextLimit is the number of characters kept from a post title or body.
	TextLimit int

	// ServerCategory is assigned to every adapted post.
	ServerCategory string

	Logger *slog.Logger

	// Now returns the time used for adapted records. Defaults to time.Now.
	Now func() time.Time
}

// RemoteQuoteClient implements ports.RemoteQuotes against an endpoint that
// returns either quote-shaped records or blog-post-shaped records
// (jsonplaceholder style). Post-shaped payloads are adapted here so the
// rest of the service only ever sees domain.Quote.
type RemoteQuoteClient struct {
	BaseAdapter

	maxRecords     int
	textLimit      int
	serverCategory string
	logger         *slog.Logger
	now            func() time.Time
}

// NewRemoteQuoteClient creates the remote quote adapter.
// Panics if Client is nil.
func NewRemoteQuoteClient(cfg RemoteQuoteConfig) *RemoteQuoteClient {
	if cfg.Client == nil {
		panic("RemoteQuoteClient: Client is required")
	}

	name := cmp.Or(cfg.Name, defaultRemoteName)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &RemoteQuoteClient{
		BaseAdapter:    NewBaseAdapter(cfg.Client, name),
		maxRecords:     positiveOr(cfg.MaxRecords, defaultMaxRecords),
		textLimit:      positiveOr(cfg.TextLimit, defaultTextLimit),
		serverCategory: cmp.Or(cfg.ServerCategory, defaultServerCategory),
		logger:         logger.With(slog.String("component", "acl.RemoteQuoteClient")),
		now:            now,
	}
}

// FetchAll downloads the remote snapshot and normalizes it.
// Transport failures and non-2xx responses return a domain error.
func (c *RemoteQuoteClient) FetchAll(ctx context.Context) ([]domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "fetching remote snapshot")

	body, err := c.Get(ctx, "", "fetch quotes")
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(body, maxResponseBody))
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), fmt.Sprintf("reading response: %v", err))
	}

	quotes := c.Normalize(ctx, raw)

	c.logger.DebugContext(ctx, "fetched remote snapshot", slog.Int("records", len(quotes)))

	return quotes, nil
}

// Normalize converts a remote payload into quotes.
//
// An array whose first element has a "title" is treated as posts: the first
// MaxRecords elements become "srv-<id>" records with text cut from the title
// (or body), the configured server category, and the current time. Posts with
// no id or no text are skipped. An array whose every element carries an id
// and non-blank text and category passes through with numeric ids
// stringified. Anything else yields an empty slice.
func (c *RemoteQuoteClient) Normalize(ctx context.Context, raw []byte) []domain.Quote {
	items, err := decodeObjects(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "remote payload is not an array of objects; treating as empty",
			slog.Any("error", err))

		return []domain.Quote{}
	}

	if len(items) == 0 {
		return []domain.Quote{}
	}

	if _, ok := items[0]["title"]; ok {
		return c.fromPosts(ctx, items)
	}

	quotes, err := TranslateSlice(items, translateQuote)
	if err != nil {
		c.logger.WarnContext(ctx, "remote payload has an unrecognized shape; treating as empty",
			slog.Any("error", err))

		return []domain.Quote{}
	}

	return quotes
}

func (c *RemoteQuoteClient) fromPosts(ctx context.Context, items []map[string]any) []domain.Quote {
	stamp := domain.FormatTimestamp(c.now())

	if len(items) > c.maxRecords {
		items = items[:c.maxRecords]
	}

	quotes := make([]domain.Quote, 0, len(items))
	for i, post := range items {
		id, ok := idString(post["id"])
		if !ok {
			c.logger.Log(ctx, logging.LevelTrace, "skipping post without id", slog.Int("index", i))
			continue
		}

		text := firstString(post["title"], post["body"])
		if text == "" {
			c.logger.Log(ctx, logging.LevelTrace, "skipping post without text", slog.String("id", id))
			continue
		}

		quotes = append(quotes, domain.Quote{
			ID:        domain.ServerID(id),
			Text:      truncateRunes(text, c.textLimit),
			Category:  c.serverCategory,
			UpdatedAt: stamp,
		})
	}

	c.logger.Log(ctx, logging.LevelTrace, "adapted post-shaped payload", slog.Int("records", len(quotes)))

	return quotes
}

// translateQuote accepts one quote-shaped element.
func translateQuote(item *map[string]any) (*domain.Quote, error) {
	m := *item

	id, ok := idString(m["id"])
	if !ok {
		return nil, errors.New("missing id")
	}

	text, ok := m["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("record %s: text is missing or blank", id)
	}

	category, ok := m["category"].(string)
	if !ok || strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("record %s: category is missing or blank", id)
	}

	updatedAt, _ := m["updatedAt"].(string)

	return &domain.Quote{ID: id, Text: text, Category: category, UpdatedAt: updatedAt}, nil
}

// pushResponse is whatever the remote echoes back for a created record.
type pushResponse map[string]any

// Push posts one record. The returned server version takes the remote's id
// (namespaced) when one is echoed back and falls back to the local values
// for any field the remote omits.
func (c *RemoteQuoteClient) Push(ctx context.Context, quote domain.Quote) (*domain.PushedQuote, error) {
	payload, err := json.Marshal(quote)
	if err != nil {
		return nil, fmt.Errorf("encoding quote %s: %w", quote.ID, err)
	}

	c.logger.Log(ctx, logging.LevelTrace, "pushing record", slog.String("quote_id", quote.ID))

	body, err := c.Post(ctx, "", payload, "push quote", quote.ID)
	if err != nil {
		return nil, err
	}

	created, err := DecodeResponse[pushResponse](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), fmt.Sprintf("push %s: %v", quote.ID, err))
	}

	server := domain.Quote{
		ID:        quote.ID,
		Text:      cmp.Or(firstString((*created)["text"], (*created)["title"]), quote.Text),
		Category:  cmp.Or(firstString((*created)["category"]), quote.Category),
		UpdatedAt: cmp.Or(firstString((*created)["updatedAt"]), domain.FormatTimestamp(c.now())),
	}

	if id, ok := idString((*created)["id"]); ok {
		server.ID = domain.ServerID(id)
	}

	return &domain.PushedQuote{Local: quote, Server: server}, nil
}

// Name implements ports.HealthChecker.
func (c *RemoteQuoteClient) Name() string {
	return c.ServiceName()
}

// Optional marks the remote as non-critical: the service keeps serving the
// local collection while the remote is down.
func (c *RemoteQuoteClient) Optional() bool {
	return true
}

// Check implements ports.HealthChecker by issuing a GET against the collection URL.
func (c *RemoteQuoteClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, "", "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

func decodeObjects(raw []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}

	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("element %d is null", i)
		}
	}

	return items, nil
}

// idString stringifies a non-empty string id or a non-zero numeric id.
func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), id.String() != "0"
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), id != 0
	default:
		return "", false
	}
}

// firstString returns the first non-blank string among vs.
func firstString(vs ...any) string {
	for _, v := range vs {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}

func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}

	return fallback
}
