// Package acl is the anti-corruption layer between quote-sync and the
// remote quote endpoint.
//
// The remote is owned by someone else and its payloads are not guaranteed to
// look like quotes. Everything that knows about remote shapes lives here:
//
//   - [RemoteQuoteClient] fetches and pushes records and adapts
//     post-shaped payloads ({id,title,body}) into [domain.Quote].
//   - [MapHTTPError] turns statuses and transport failures into domain errors.
//   - [BaseAdapter], [DecodeResponse] and [TranslateSlice] are the shared plumbing.
//
// Error mapping:
//
//	404                     domain.ErrNotFound
//	409                     domain.ErrConflict
//	400, 422, other 4xx     domain.ErrValidation
//	401, 403, 429, 5xx      domain.ErrUnavailable
//	circuit open, transport domain.ErrUnavailable
package acl
