package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 10, 28, 12, 0, 0, 0, time.UTC)

func TestNewLocalID_IsNamespacedAndUnique(t *testing.T) {
	seen := make(map[string]struct{})

	for range 500 {
		id := NewLocalID(fixedNow)
		assert.True(t, strings.HasPrefix(id, LocalIDPrefix+"1761652800000-"), id)

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestServerID(t *testing.T) {
	assert.Equal(t, "srv-42", ServerID("42"))
}

func TestFormatTimestamp(t *testing.T) {
	local := time.Date(2025, 10, 28, 14, 30, 5, 123_456_789, time.FixedZone("CEST", 2*60*60))
	assert.Equal(t, "2025-10-28T12:30:05.123Z", FormatTimestamp(local))
}

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		category  string
		wantField string
	}{
		{name: "valid trims whitespace", text: "  Ship it. ", category: " Work "},
		{name: "missing text", text: "   ", category: "Work", wantField: "text"},
		{name: "missing category", text: "Ship it.", category: "", wantField: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote(tt.text, tt.category, fixedNow)

			if tt.wantField != "" {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.wantField, validationErr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Ship it.", q.Text)
			assert.Equal(t, "Work", q.Category)
			assert.Equal(t, "2025-10-28T12:00:00.000Z", q.UpdatedAt)
			assert.True(t, strings.HasPrefix(q.ID, LocalIDPrefix))
		})
	}
}

func TestSeedQuotes(t *testing.T) {
	seed := SeedQuotes(fixedNow)

	require.Len(t, seed, 4)
	assert.Equal(t, []string{"1", "2", "3", "4"}, []string{seed[0].ID, seed[1].ID, seed[2].ID, seed[3].ID})
	assert.Equal(t, "Simplicity is the soul of efficiency.", seed[2].Text)
	assert.Equal(t, []string{"Design", "Motivation", "Programming"}, Categories(seed))
}

func TestFilterByCategory(t *testing.T) {
	seed := SeedQuotes(fixedNow)

	assert.Len(t, FilterByCategory(seed, "Motivation"), 2)
	assert.Len(t, FilterByCategory(seed, CategoryAll), 4)
	assert.Len(t, FilterByCategory(seed, ""), 4)
	assert.Empty(t, FilterByCategory(seed, "Nope"))
}

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	in := []Quote{
		{ID: "1", Text: "first"},
		{ID: "2", Text: "other"},
		{ID: "1", Text: "second"},
	}

	out, dropped := Dedupe(in)

	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Text)
}
