package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

const passcodeSubject = "Your personal security code"

const passcodeBodyTemplate = "Dear user,\n" +
	"someone just tried to sign in to your account.\n" +
	"If you were prompted for a security code, please enter the following to complete your sign-in: %s\n" +
	"If you were not prompted, please change your password immediately in the profile settings."

// Notifier delivers step-up passcodes out-of-band. Delivery is best-effort:
// failures are logged and structurally incapable of affecting the login
// outcome.
type Notifier struct {
	mailer ports.Mailer
	from   string
	logger zerolog.Logger
}

// NewNotifier creates a new passcode notifier. An empty from address
// disables delivery entirely.
func NewNotifier(mailer ports.Mailer, from string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		from:   from,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// Notify dispatches the challenge payload's passcode to its contact
// address. A missing payload, contact or passcode is a no-op.
func (n *Notifier) Notify(ctx context.Context, payload *core.ChallengePayload) {
	if payload == nil || payload.Contact == "" || payload.Passcode == "" {
		return
	}

	if n.from == "" {
		n.logger.Debug().Msg("no sender address configured, skipping passcode delivery")
		return
	}

	body := passcodeBody(payload.Passcode)

	if err := n.mailer.Send(ctx, passcodeSubject, body, n.from, []string{payload.Contact}); err != nil {
		n.logger.Warn().Err(err).Msg("failed to deliver passcode notification")
	}
}

func passcodeBody(passcode string) string {
	return fmt.Sprintf(passcodeBodyTemplate, passcode)
}
