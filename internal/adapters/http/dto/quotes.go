package dto

import "github.com/jsamuelsen/quote-sync/internal/domain"

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	Text     string `json:"text"     validate:"notblank,max=2000"`
	Category string `json:"category" validate:"notblank,max=100,quotecategory"`
}

// RandomQuoteQuery is the query string of GET /quotes/random.
type RandomQuoteQuery struct {
	Category string `form:"category" validate:"max=100,singleline"`
}

// QuoteListResponse lists quotes with a total.
type QuoteListResponse struct {
	Quotes []domain.Quote `json:"quotes"`
	Count  int            `json:"count"`
}

// NewQuoteListResponse wraps quotes, rendering nil as an empty list.
func NewQuoteListResponse(quotes []domain.Quote) QuoteListResponse {
	quotes = nonNil(quotes)
	return QuoteListResponse{Quotes: quotes, Count: len(quotes)}
}

// CategoriesResponse lists the known categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// CategoryPreference is the body and response of /preferences/category.
type CategoryPreference struct {
	Category string `json:"category" validate:"notblank,max=100,singleline"`
}

// ImportResponse reports the outcome of POST /import.
type ImportResponse struct {
	Added      []domain.Quote `json:"added"`
	Count      int            `json:"count"`
	Duplicates int            `json:"duplicates"`
	Invalid    int            `json:"invalid"`
}
