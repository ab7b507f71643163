package ports

import (
	"context"

	"github.com/openrba/stepgate/core"
)

// EventPublisher publishes login lifecycle events to notify other systems
type EventPublisher interface {
	// PublishLogin publishes the outcome of one authentication attempt
	PublishLogin(ctx context.Context, event core.LoginEvent) error
}
