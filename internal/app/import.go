package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// ImportResult reports what an import did with each element of the document.
type ImportResult struct {
	// Added holds the records appended to the collection.
	Added []domain.Quote `json:"added"`

	// Duplicates counts elements whose id was already present.
	Duplicates int `json:"duplicates"`

	// Invalid counts elements without string text and category.
	Invalid int `json:"invalid"`
}

// importCandidates are the well-formed elements of a document.
type importCandidates struct {
	quotes  []domain.Quote
	invalid int
}

// importPlan is the verified set of records to append.
type importPlan struct {
	add        []domain.Quote
	duplicates int
	invalid    int
	added      []domain.Quote
}

// Import appends the records of a JSON array document. The document as a
// whole must be an array; elements lacking string text or category are
// skipped, missing ids and timestamps are filled in, and elements whose id
// is already known are skipped.
func (s *QuoteService) Import(ctx context.Context, doc []byte) (*ImportResult, error) {
	op := Operation[[]byte, importCandidates, *importPlan, *ImportResult]{
		Name:     "import-quotes",
		Validate: validateImportDocument,
		Perform:  s.parseImport,
		Verify:   s.planImport,
		Archive:  s.archiveImport,
		Respond:  respondImport,
	}

	return Execute(ctx, s.exec, op, doc)
}

func validateImportDocument(_ context.Context, doc []byte) error {
	if len(bytes.TrimSpace(doc)) == 0 {
		return domain.NewValidationError("document", "is empty")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(doc, &elements); err != nil || elements == nil {
		return domain.NewValidationError("document", "must be a JSON array")
	}

	return nil
}

func (s *QuoteService) parseImport(ctx context.Context, doc []byte) (importCandidates, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var elements []any
	if err := dec.Decode(&elements); err != nil {
		return importCandidates{}, domain.NewValidationError("document", "must be a JSON array")
	}

	now := s.now()
	stamp := domain.FormatTimestamp(now)

	var out importCandidates

	for i, el := range elements {
		quote, ok := importElement(el, now, stamp)
		if !ok {
			s.logger.DebugContext(ctx, "skipping invalid import element", slog.Int("index", i))
			out.invalid++

			continue
		}

		out.quotes = append(out.quotes, quote)
	}

	return out, nil
}

// importElement converts one array element. Numeric ids are stringified.
func importElement(el any, now time.Time, stamp string) (domain.Quote, bool) {
	obj, ok := el.(map[string]any)
	if !ok {
		return domain.Quote{}, false
	}

	text, textOK := obj["text"].(string)
	category, categoryOK := obj["category"].(string)

	if !textOK || !categoryOK || strings.TrimSpace(text) == "" || strings.TrimSpace(category) == "" {
		return domain.Quote{}, false
	}

	quote := domain.Quote{Text: text, Category: category, UpdatedAt: stamp}

	switch id := obj["id"].(type) {
	case string:
		quote.ID = id
	case json.Number:
		if id.String() != "0" {
			quote.ID = id.String()
		}
	}

	if quote.ID == "" {
		quote.ID = domain.NewLocalID(now)
	}

	if updatedAt, ok := obj["updatedAt"].(string); ok && updatedAt != "" {
		quote.UpdatedAt = updatedAt
	}

	return quote, true
}

func (s *QuoteService) planImport(_ context.Context, _ []byte, parsed importCandidates) (*importPlan, error) {
	unique, repeated := domain.Dedupe(parsed.quotes)
	present := domain.IndexByID(s.Snapshot())

	plan := &importPlan{
		duplicates: repeated,
		invalid:    parsed.invalid,
	}

	for _, q := range unique {
		if _, ok := present[q.ID]; ok {
			plan.duplicates++
			continue
		}

		plan.add = append(plan.add, q)
	}

	return plan, nil
}

func (s *QuoteService) archiveImport(ctx context.Context, _ []byte, plan *importPlan) error {
	added, err := s.AppendAbsent(ctx, plan.add)
	if err != nil {
		return err
	}

	// A concurrent add may have claimed an id between planning and archiving.
	plan.duplicates += len(plan.add) - len(added)
	plan.added = added

	return nil
}

func respondImport(_ context.Context, _ []byte, plan *importPlan) (*ImportResult, error) {
	added := plan.added
	if added == nil {
		added = []domain.Quote{}
	}

	return &ImportResult{
		Added:      added,
		Duplicates: plan.duplicates,
		Invalid:    plan.invalid,
	}, nil
}
