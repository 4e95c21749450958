package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

var testNow = time.Date(2025, 10, 28, 12, 0, 0, 0, time.UTC)

const testStamp = "2025-10-28T12:00:00.000Z"

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newQuoteService(t *testing.T, store ports.KVStore) *QuoteService {
	t.Helper()

	svc := NewQuoteService(QuoteServiceConfig{
		Store:   store,
		Session: memory.New(),
		Logger:  discardLogger(),
		Now:     func() time.Time { return testNow },
		Intn:    func(int) int { return 0 },
	})

	return svc
}

// loaded returns a service hydrated with quotes.
func loaded(t *testing.T, quotes ...domain.Quote) (*QuoteService, *memory.KV) {
	t.Helper()

	store := memory.New()
	if quotes != nil {
		raw, err := json.Marshal(quotes)
		require.NoError(t, err)
		require.NoError(t, store.Write(context.Background(), "quotes", raw))
	}

	svc := newQuoteService(t, store)
	require.NoError(t, svc.Load(context.Background()))

	return svc, store
}

func stored(t *testing.T, store ports.KVStore) []domain.Quote {
	t.Helper()

	raw, found, err := store.Read(context.Background(), "quotes")
	require.NoError(t, err)
	require.True(t, found)

	var quotes []domain.Quote
	require.NoError(t, json.Unmarshal(raw, &quotes))

	return quotes
}

func ids(quotes []domain.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.ID
	}

	return out
}

func TestNewQuoteService_PanicsWithoutStores(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Session: memory.New()})
	})
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Store: memory.New()})
	})
}

func TestLoad_SeedsWhenAbsent(t *testing.T) {
	svc, store := loaded(t)

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(svc.Snapshot()))
	assert.Equal(t, svc.Snapshot(), stored(t, store))
}

func TestLoad_ReseedsCorruptValue(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":  `{{{`,
		"object":    `{"id":"1"}`,
		"null":      `null`,
		"bad items": `[1, 2]`,
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.New()
			require.NoError(t, store.Write(context.Background(), "quotes", []byte(raw)))

			svc := newQuoteService(t, store)
			require.NoError(t, svc.Load(context.Background()))

			assert.Len(t, svc.Snapshot(), 4)
			assert.Len(t, stored(t, store), 4)
		})
	}
}

func TestLoad_IsIdempotent(t *testing.T) {
	svc, store := loaded(t)
	first := svc.Snapshot()

	again := newQuoteService(t, store)
	require.NoError(t, again.Load(context.Background()))

	assert.Equal(t, first, again.Snapshot())
}

func TestLoad_CollapsesDuplicateIDs(t *testing.T) {
	svc, store := loaded(t,
		domain.Quote{ID: "1", Text: "first", Category: "A", UpdatedAt: testStamp},
		domain.Quote{ID: "1", Text: "second", Category: "A", UpdatedAt: testStamp},
		domain.Quote{ID: "2", Text: "other", Category: "B", UpdatedAt: testStamp},
	)

	assert.Equal(t, []string{"1", "2"}, ids(svc.Snapshot()))
	assert.Equal(t, "first", svc.Snapshot()[0].Text)
	assert.Len(t, stored(t, store), 2)
}

func TestLoad_KeepsEmptyCollection(t *testing.T) {
	svc, store := loaded(t, []domain.Quote{}...)

	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, stored(t, store))
}

func TestLoad_StoreReadError(t *testing.T) {
	store := mocks.NewMockKVStore(t)
	store.EXPECT().Read(mock.Anything, "quotes").Return(nil, false, errors.New("disk I/O error"))

	svc := newQuoteService(t, store)

	err := svc.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestAdd(t *testing.T) {
	svc, store := loaded(t)

	quote, err := svc.Add(context.Background(), "  Ship it.  ", " Work ")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(quote.ID, "local-"))
	assert.Equal(t, "Ship it.", quote.Text)
	assert.Equal(t, "Work", quote.Category)
	assert.Equal(t, testStamp, quote.UpdatedAt)
	assert.Len(t, svc.Snapshot(), 5)
	assert.Contains(t, stored(t, store), quote)
	assert.Contains(t, svc.Categories(), "Work")
}

func TestAdd_RejectsBlankFields(t *testing.T) {
	svc, _ := loaded(t)

	_, err := svc.Add(context.Background(), " ", "Work")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Add(context.Background(), "text", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	assert.Len(t, svc.Snapshot(), 4)
}

func TestAdd_PersistFailureLeavesCollectionUnchanged(t *testing.T) {
	store := mocks.NewMockKVStore(t)
	store.EXPECT().Read(mock.Anything, "quotes").Return([]byte(`[]`), true, nil)
	store.EXPECT().Write(mock.Anything, "quotes", mock.Anything).Return(errors.New("read-only file system"))

	svc := newQuoteService(t, store)
	require.NoError(t, svc.Load(context.Background()))

	_, err := svc.Add(context.Background(), "text", "cat")

	require.Error(t, err)
	assert.Empty(t, svc.Snapshot())
}

func TestList_FiltersByCategory(t *testing.T) {
	svc, _ := loaded(t)

	assert.Len(t, svc.List("Motivation"), 2)
	assert.Len(t, svc.List(domain.CategoryAll), 4)
	assert.Len(t, svc.List(""), 4)
	assert.Empty(t, svc.List("Nope"))
	assert.Equal(t, []string{"Design", "Motivation", "Programming"}, svc.Categories())
}

func TestRandomQuote_RemembersCategoryAndPick(t *testing.T) {
	svc, store := loaded(t)
	ctx := context.Background()

	quote, err := svc.RandomQuote(ctx, "Design")
	require.NoError(t, err)
	assert.Equal(t, "3", quote.ID)

	last, err := svc.LastCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Design", last)

	raw, found, err := store.Read(ctx, "lastCategory")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Design", string(raw))

	viewed, err := svc.LastViewed(ctx)
	require.NoError(t, err)
	assert.Equal(t, quote, viewed)
}

func TestRandomQuote_EmptyCategoryUsesLastSelection(t *testing.T) {
	svc, _ := loaded(t)
	ctx := context.Background()

	require.NoError(t, svc.SetLastCategory(ctx, "Programming"))

	quote, err := svc.RandomQuote(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, "2", quote.ID)
}

func TestRandomQuote_EmptyPool(t *testing.T) {
	svc, _ := loaded(t)

	_, err := svc.RandomQuote(context.Background(), "Nope")

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestLastCategory_DefaultsToAll(t *testing.T) {
	svc, _ := loaded(t)

	last, err := svc.LastCategory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryAll, last)
}

func TestSetLastCategory_RejectsBlank(t *testing.T) {
	svc, _ := loaded(t)

	err := svc.SetLastCategory(context.Background(), "")

	assert.True(t, domain.IsValidation(err))
}

func TestLastViewed_NothingViewedYet(t *testing.T) {
	svc, _ := loaded(t)

	_, err := svc.LastViewed(context.Background())

	assert.True(t, domain.IsNotFound(err))
}

func TestExport(t *testing.T) {
	svc, _ := loaded(t)

	file, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "quotes_export_2025-10-28-12-00-00.json", file.Filename)
	assert.Equal(t, 4, file.Count)
	assert.Contains(t, string(file.Data), "\n  {\n    \"id\": \"1\"")

	var decoded []domain.Quote
	require.NoError(t, json.Unmarshal(file.Data, &decoded))
	assert.Equal(t, svc.Snapshot(), decoded)
}

func TestImport(t *testing.T) {
	svc, store := loaded(t)

	doc := `[
		{"id":"1","text":"dup of seed","category":"X"},
		{"id":"9","text":"nine","category":"X","updatedAt":"2025-01-01T00:00:00.000Z"},
		{"id":"9","text":"nine again","category":"X"},
		{"id":42,"text":"numeric","category":"Y"},
		{"text":"no id","category":"Y"},
		{"text":"no category"},
		{"id":"7","text":5,"category":"Y"},
		"just a string"
	]`

	result, err := svc.Import(context.Background(), []byte(doc))

	require.NoError(t, err)
	require.Len(t, result.Added, 3)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 3, result.Invalid)

	assert.Equal(t, domain.Quote{ID: "9", Text: "nine", Category: "X", UpdatedAt: "2025-01-01T00:00:00.000Z"}, result.Added[0])
	assert.Equal(t, "42", result.Added[1].ID)
	assert.Equal(t, testStamp, result.Added[1].UpdatedAt)
	assert.True(t, strings.HasPrefix(result.Added[2].ID, "local-"))

	assert.Len(t, svc.Snapshot(), 7)
	assert.Len(t, stored(t, store), 7)
}

func TestImport_BlankFieldsAreInvalid(t *testing.T) {
	svc, store := loaded(t)
	before := svc.Snapshot()

	for name, doc := range map[string]string{
		"empty text and category": `[{"text":"","category":""}]`,
		"blank category":          `[{"text":"words","category":"   "}]`,
		"blank text":              `[{"id":"5","text":"\n\t","category":"X"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			result, err := svc.Import(context.Background(), []byte(doc))

			require.NoError(t, err)
			assert.Empty(t, result.Added)
			assert.Equal(t, 1, result.Invalid)
		})
	}

	assert.Equal(t, before, svc.Snapshot())
	assert.Equal(t, before, stored(t, store))
}

func TestImport_RejectsNonArrayDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":    ``,
		"object":   `{"quotes":[]}`,
		"invalid":  `[{"id":`,
		"null":     `null`,
		"a string": `"quotes"`,
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := loaded(t)

			_, err := svc.Import(context.Background(), []byte(doc))

			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, StepValidate, step)
			assert.Len(t, svc.Snapshot(), 4)
		})
	}
}

func TestImport_NothingNewSkipsWrite(t *testing.T) {
	store := mocks.NewMockKVStore(t)
	store.EXPECT().Read(mock.Anything, "quotes").Return([]byte(`[{"id":"1","text":"a","category":"b","updatedAt":"t"}]`), true, nil)

	svc := newQuoteService(t, store)
	require.NoError(t, svc.Load(context.Background()))

	result, err := svc.Import(context.Background(), []byte(`[{"id":"1","text":"a","category":"b"}]`))

	require.NoError(t, err)
	assert.Empty(t, result.Added)
	assert.Equal(t, 1, result.Duplicates)
}

func TestExportImport_RoundTrip(t *testing.T) {
	source, _ := loaded(t)
	_, err := source.Add(context.Background(), "extra", "Misc")
	require.NoError(t, err)

	file, err := source.Export(context.Background())
	require.NoError(t, err)

	target, _ := loaded(t, []domain.Quote{}...)

	result, err := target.Import(context.Background(), file.Data)

	require.NoError(t, err)
	assert.Len(t, result.Added, 5)
	assert.ElementsMatch(t, source.Snapshot(), target.Snapshot())
}

func TestApplyReplacements(t *testing.T) {
	svc, store := loaded(t)
	remote := domain.Quote{ID: "2", Text: "server text", Category: "Programming", UpdatedAt: "T2"}

	n, err := svc.ApplyReplacements(context.Background(), []domain.Quote{remote, {ID: "missing"}})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, remote, svc.Snapshot()[1])
	assert.Equal(t, remote, stored(t, store)[1])
	assert.Len(t, svc.Snapshot(), 4)
}

func TestAppendAbsent(t *testing.T) {
	svc, _ := loaded(t)

	added, err := svc.AppendAbsent(context.Background(), []domain.Quote{
		{ID: "1", Text: "exists"},
		{ID: "srv-1", Text: "new"},
		{ID: "srv-1", Text: "repeat"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"srv-1"}, ids(added))
	assert.Equal(t, []string{"1", "2", "3", "4", "srv-1"}, ids(svc.Snapshot()))
}

func TestReplaceRecord(t *testing.T) {
	svc, _ := loaded(t)

	err := svc.ReplaceRecord(context.Background(), domain.Quote{ID: "3", Text: "x", Category: "y", UpdatedAt: "z"})
	require.NoError(t, err)
	assert.Equal(t, "x", svc.Snapshot()[2].Text)

	err = svc.ReplaceRecord(context.Background(), domain.Quote{ID: "nope"})
	assert.True(t, domain.IsNotFound(err))
}

func TestAdopt(t *testing.T) {
	svc, _ := loaded(t)
	ctx := context.Background()

	adopted, err := svc.Adopt(ctx, "4", domain.Quote{ID: "srv-101", Text: "t", Category: "c", UpdatedAt: "u"})
	require.NoError(t, err)
	assert.True(t, adopted)
	assert.Equal(t, []string{"1", "2", "3", "srv-101"}, ids(svc.Snapshot()))

	adopted, err = svc.Adopt(ctx, "3", domain.Quote{ID: "1"})
	require.NoError(t, err)
	assert.False(t, adopted)
	assert.Equal(t, []string{"1", "2", "3", "srv-101"}, ids(svc.Snapshot()))
}
