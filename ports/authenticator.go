package ports

import (
	"context"

	"github.com/openrba/stepgate/core"
)

// Authenticator is the opaque remote identity provider. It never returns a
// Go error: transport and protocol failures are folded into the classified
// outcome so the orchestrator has a single result to act on.
type Authenticator interface {
	// Authenticate performs one attempt against the provider at authURL.
	// features must be nil on a challenge retry (non-empty passcode).
	Authenticate(ctx context.Context, authURL string, attempt core.LoginAttempt, features *core.FeatureBundle) core.Result
}
