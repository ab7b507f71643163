package ports

import "context"

// SessionStore holds per-browser-session attributes. Implementations must
// be safe for concurrent use across sessions.
type SessionStore interface {
	// Get retrieves an attribute value; core.ErrAttributeNotFound when unset
	Get(ctx context.Context, sessionKey, attr string) (string, error)

	// Set writes an attribute value
	Set(ctx context.Context, sessionKey, attr, value string) error

	// Delete removes an attribute
	Delete(ctx context.Context, sessionKey, attr string) error

	// Save marks the session modified so the backend persists it
	Save(ctx context.Context, sessionKey string) error
}
