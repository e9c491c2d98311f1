// Package auth provides authentication and access control for the web
// interface.
//
// Identity is the account email; passwords are stored as bcrypt hashes.
// Sessions are backed by SQLite through alexedwards/scs, mutating form
// posts are CSRF-protected via gorilla/csrf, and the login endpoint is
// rate limited with a sliding window per IP+email.
//
// The package also exposes the gin middlewares that gate route groups by
// role: authentication for everything, staff (non-student) for catalog
// and lending management, admin for account administration.
package auth
