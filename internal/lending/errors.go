package lending

import "errors"

// Failure classes surfaced by the engine. Controllers map these onto
// HTTP behavior (redirects, flashes, 404s); the engine never retries and
// never leaves partial writes behind any of them.
var (
	ErrForbidden    = errors.New("operation not permitted for this role")
	ErrNotFound     = errors.New("record not found")
	ErrOutOfStock   = errors.New("no copies available")
	ErrConflict     = errors.New("an active reservation for this book already exists")
	ErrInvalidState = errors.New("reservation is not waiting")
)
