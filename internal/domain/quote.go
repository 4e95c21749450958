package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// LocalIDPrefix namespaces ids minted by this service.
	LocalIDPrefix = "local-"

	// ServerIDPrefix namespaces ids adapted from the remote endpoint.
	ServerIDPrefix = "srv-"

	// CategoryAll selects every category when filtering.
	CategoryAll = "all"

	// timestampLayout matches the millisecond ISO-8601 form used on the wire.
	timestampLayout = "2006-01-02T15:04:05.000Z"

	// localIDSuffixLen is the number of uuid characters appended to local ids.
	localIDSuffixLen = 8
)

// Quote is a single record in the local collection and the unit of sync.
type Quote struct {
	// ID is unique within the local collection.
	ID string `json:"id"`

	// Text is the quote body.
	Text string `json:"text"`

	// Category is free text; the known set is derived from the collection.
	Category string `json:"category"`

	// UpdatedAt is an ISO-8601 last-write marker. Only equality is meaningful.
	UpdatedAt string `json:"updatedAt"`
}

// SameContent reports whether two records carry the same text and category.
func (q Quote) SameContent(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category
}

// Conflict pairs a local record with the remote record sharing its id.
type Conflict struct {
	// ID is the id both sides share.
	ID string `json:"id"`

	// Local is the record as it was before the remote version replaced it.
	Local Quote `json:"local"`

	// Server is the remote version applied by the pass.
	Server Quote `json:"server"`
}

// NewLocalID mints a collision-resistant id in the local namespace.
func NewLocalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:localIDSuffixLen]
	return fmt.Sprintf("%s%d-%s", LocalIDPrefix, now.UnixMilli(), suffix)
}

// ServerID derives a local id from a remote native id.
func ServerID(raw string) string {
	return ServerIDPrefix + raw
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// NewQuote builds a validated local record stamped with now.
func NewQuote(text, category string, now time.Time) (Quote, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "is required")
	}

	if category == "" {
		return Quote{}, NewValidationError("category", "is required")
	}

	return Quote{
		ID:        NewLocalID(now),
		Text:      text,
		Category:  category,
		UpdatedAt: FormatTimestamp(now),
	}, nil
}

// SeedQuotes returns the built-in collection used when nothing valid is stored.
func SeedQuotes(now time.Time) []Quote {
	ts := FormatTimestamp(now)

	return []Quote{
		{ID: "1", Text: "The best way to predict the future is to invent it.", Category: "Motivation", UpdatedAt: ts},
		{ID: "2", Text: "Code is like humor. When you have to explain it, it’s bad.", Category: "Programming", UpdatedAt: ts},
		{ID: "3", Text: "Simplicity is the soul of efficiency.", Category: "Design", UpdatedAt: ts},
		{ID: "4", Text: "Don’t watch the clock; do what it does. Keep going.", Category: "Motivation", UpdatedAt: ts},
	}
}

// Categories returns the distinct categories in quotes, sorted.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]string, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	slices.SortFunc(out, cmp.Compare[string])

	return out
}

// FilterByCategory returns the quotes in category, or all of them for CategoryAll.
func FilterByCategory(quotes []Quote, category string) []Quote {
	if category == "" || category == CategoryAll {
		return slices.Clone(quotes)
	}

	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// Dedupe drops records whose id already appeared earlier in quotes.
// It returns the kept records and the number dropped.
func Dedupe(quotes []Quote) ([]Quote, int) {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := seen[q.ID]; ok {
			continue
		}

		seen[q.ID] = struct{}{}
		out = append(out, q)
	}

	return out, len(quotes) - len(out)
}
