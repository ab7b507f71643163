package ports

import "context"

// Mailer dispatches a message through the outbound mail transport.
// Implementations return core.ErrBadHeader when a header field contains
// forbidden characters.
type Mailer interface {
	Send(ctx context.Context, subject, body, from string, to []string) error
}
