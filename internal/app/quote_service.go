package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// exportLayout renders the timestamp embedded in export file names.
const exportLayout = "2006-01-02-15-04-05"

// StoreKeys names the keys the services read and write.
type StoreKeys struct {
	Quotes       string
	LastCategory string
	LastSyncAt   string
	LastViewed   string
}

// DefaultStoreKeys returns the key names used when none are configured.
func DefaultStoreKeys() StoreKeys {
	return StoreKeys{
		Quotes:       "quotes",
		LastCategory: "lastCategory",
		LastSyncAt:   "lastSyncAt",
		LastViewed:   "lastQuote",
	}
}

// QuoteService owns the local collection. Every mutation is persisted in
// full before it becomes visible to readers.
type QuoteService struct {
	store   ports.KVStore
	session ports.KVStore
	keys    StoreKeys
	exec    *Executor
	logger  *slog.Logger
	now     func() time.Time
	intn    func(n int) int

	mu     sync.RWMutex
	quotes []domain.Quote
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	// Store survives restarts and holds the collection and preferences.
	Store ports.KVStore

	// Session holds per-process state such as the last viewed quote.
	Session ports.KVStore

	// Keys defaults to DefaultStoreKeys when zero.
	Keys StoreKeys

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// Intn picks a random index in [0, n). Defaults to math/rand/v2.IntN.
	Intn func(n int) int
}

// NewQuoteService creates a quote service. The collection is empty until Load is called.
// Panics if Store or Session is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("QuoteService: Store is required")
	}

	if cfg.Session == nil {
		panic("QuoteService: Session is required")
	}

	if cfg.Keys == (StoreKeys{}) {
		cfg.Keys = DefaultStoreKeys()
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Intn == nil {
		cfg.Intn = rand.IntN
	}

	logger := cfg.Logger.With(slog.String("component", "app.QuoteService"))

	return &QuoteService{
		store:   cfg.Store,
		session: cfg.Session,
		keys:    cfg.Keys,
		exec:    NewExecutor(logger),
		logger:  logger,
		now:     cfg.Now,
		intn:    cfg.Intn,
	}
}

// Load hydrates the collection from the store. A missing or corrupt value is
// replaced by the seed quotes, which are persisted so the next load is
// identical. Records repeating an earlier id are dropped.
func (s *QuoteService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.store.Read(ctx, s.keys.Quotes)
	if err != nil {
		return fmt.Errorf("reading quotes: %w", err)
	}

	if !found {
		s.logger.InfoContext(ctx, "no stored quotes; seeding collection")
		return s.commit(ctx, domain.SeedQuotes(s.now()))
	}

	var stored []domain.Quote
	if err := json.Unmarshal(raw, &stored); err != nil || stored == nil {
		s.logger.WarnContext(ctx, "stored quotes are corrupt; reseeding collection",
			slog.Any("error", err))

		return s.commit(ctx, domain.SeedQuotes(s.now()))
	}

	deduped, dropped := domain.Dedupe(stored)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped stored quotes with duplicate ids",
			slog.Int("dropped", dropped))

		return s.commit(ctx, deduped)
	}

	s.quotes = deduped

	s.logger.DebugContext(ctx, "loaded quotes", slog.Int("count", len(deduped)))

	return nil
}

// List returns the quotes in category, or every quote for "all" or "".
func (s *QuoteService) List(category string) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.FilterByCategory(s.quotes, category)
}

// Snapshot returns a copy of the whole collection.
func (s *QuoteService) Snapshot() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Categories returns the distinct categories currently in the collection.
func (s *QuoteService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Categories(s.quotes)
}

// Add validates and appends a new local record.
func (s *QuoteService) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	quote, err := domain.NewQuote(text, category, s.now())
	if err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, append(slices.Clone(s.quotes), quote)); err != nil {
		return domain.Quote{}, err
	}

	s.logger.InfoContext(ctx, "quote added",
		slog.String("quote_id", quote.ID),
		slog.String("category", quote.Category),
	)

	return quote, nil
}

// RandomQuote picks a quote from category and records both the category and
// the pick. An empty category means the last selected one.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	if category == "" {
		last, err := s.LastCategory(ctx)
		if err != nil {
			return domain.Quote{}, err
		}

		category = last
	}

	if err := s.SetLastCategory(ctx, category); err != nil {
		return domain.Quote{}, err
	}

	pool := s.List(category)
	if len(pool) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quotes in category", category)
	}

	quote := pool[s.intn(len(pool))]

	raw, err := json.Marshal(quote)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("encoding last viewed quote: %w", err)
	}

	if err := s.session.Write(ctx, s.keys.LastViewed, raw); err != nil {
		s.logger.WarnContext(ctx, "failed to remember last viewed quote", slog.Any("error", err))
	}

	return quote, nil
}

// LastViewed returns the quote most recently picked by RandomQuote in this process.
func (s *QuoteService) LastViewed(ctx context.Context) (domain.Quote, error) {
	raw, found, err := s.session.Read(ctx, s.keys.LastViewed)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("reading last viewed quote: %w", err)
	}

	if !found {
		return domain.Quote{}, domain.NewNotFoundError("last viewed quote", "")
	}

	var quote domain.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		s.logger.WarnContext(ctx, "last viewed quote is corrupt", slog.Any("error", err))
		return domain.Quote{}, domain.NewNotFoundError("last viewed quote", "")
	}

	return quote, nil
}

// LastCategory returns the persisted category selection, defaulting to "all".
func (s *QuoteService) LastCategory(ctx context.Context) (string, error) {
	raw, found, err := s.store.Read(ctx, s.keys.LastCategory)
	if err != nil {
		return "", fmt.Errorf("reading last category: %w", err)
	}

	if !found || len(raw) == 0 {
		return domain.CategoryAll, nil
	}

	return string(raw), nil
}

// SetLastCategory persists the category selection.
func (s *QuoteService) SetLastCategory(ctx context.Context, category string) error {
	if category == "" {
		return domain.NewValidationError("category", "is required")
	}

	if err := s.store.Write(ctx, s.keys.LastCategory, []byte(category)); err != nil {
		return fmt.Errorf("writing last category: %w", err)
	}

	return nil
}

// ExportFile is a serialized copy of the collection ready for download.
type ExportFile struct {
	Filename string
	Data     []byte
	Count    int
}

// Export renders the collection as indented JSON with a timestamped file name.
func (s *QuoteService) Export(ctx context.Context) (*ExportFile, error) {
	quotes := s.Snapshot()

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	file := &ExportFile{
		Filename: fmt.Sprintf("quotes_export_%s.json", s.now().UTC().Format(exportLayout)),
		Data:     data,
		Count:    len(quotes),
	}

	s.logger.InfoContext(ctx, "collection exported",
		slog.String("filename", file.Filename),
		slog.Int("count", file.Count),
	)

	return file, nil
}

// ApplyReplacements overwrites the records sharing an id with one of
// replacements and persists the result. Ids absent from the collection are
// ignored. It returns the number of records replaced.
func (s *QuoteService) ApplyReplacements(ctx context.Context, replacements []domain.Quote) (int, error) {
	if len(replacements) == 0 {
		return 0, nil
	}

	byID := domain.IndexByID(replacements)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.quotes)
	replaced := 0

	for i, q := range next {
		if r, ok := byID[q.ID]; ok {
			next[i] = r
			replaced++
		}
	}

	if replaced == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}

	return replaced, nil
}

// AppendAbsent appends the records whose id is not yet in the collection and
// persists the result. It returns the records actually appended.
func (s *QuoteService) AppendAbsent(ctx context.Context, quotes []domain.Quote) ([]domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := domain.IndexByID(s.quotes)
	added := make([]domain.Quote, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := present[q.ID]; ok {
			continue
		}

		present[q.ID] = q
		added = append(added, q)
	}

	if len(added) == 0 {
		return added, nil
	}

	if err := s.commit(ctx, append(slices.Clone(s.quotes), added...)); err != nil {
		return nil, err
	}

	return added, nil
}

// ReplaceRecord overwrites the record with quote.ID and persists the result.
func (s *QuoteService) ReplaceRecord(ctx context.Context, quote domain.Quote) error {
	return s.swap(ctx, quote.ID, quote)
}

// Adopt replaces the record at localID with quote, which may carry a
// different id. It is a no-op when quote.ID already names another record.
func (s *QuoteService) Adopt(ctx context.Context, localID string, quote domain.Quote) (bool, error) {
	s.mu.RLock()
	taken := quote.ID != localID && slices.ContainsFunc(s.quotes, func(q domain.Quote) bool { return q.ID == quote.ID })
	s.mu.RUnlock()

	if taken {
		s.logger.Log(ctx, logging.LevelTrace, "not adopting pushed id already in use",
			slog.String("quote_id", localID),
			slog.String("server_id", quote.ID),
		)

		return false, nil
	}

	if err := s.swap(ctx, localID, quote); err != nil {
		return false, err
	}

	return true, nil
}

func (s *QuoteService) swap(ctx context.Context, id string, quote domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.quotes, func(q domain.Quote) bool { return q.ID == id })
	if idx < 0 {
		return domain.NewNotFoundError("quote", id)
	}

	if quote.ID != id && slices.ContainsFunc(s.quotes, func(q domain.Quote) bool { return q.ID == quote.ID }) {
		return domain.NewConflictError("quote", fmt.Sprintf("id %q already exists", quote.ID))
	}

	next := slices.Clone(s.quotes)
	next[idx] = quote

	return s.commit(ctx, next)
}

// commit persists next and makes it the live collection. Callers hold s.mu.
func (s *QuoteService) commit(ctx context.Context, next []domain.Quote) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if err := s.store.Write(ctx, s.keys.Quotes, raw); err != nil {
		return fmt.Errorf("persisting quotes: %w", err)
	}

	s.quotes = next

	s.logger.Log(ctx, logging.LevelTrace, "quotes persisted", slog.Int("count", len(next)))

	return nil
}
