package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRegion is returned when the submitted region is not configured
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidPasscode is returned when the submitted passcode is malformed
	ErrInvalidPasscode = errors.New("invalid passcode format")

	// ErrInvalidCredentials is returned when the provider rejects the credentials
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConnectionFailure is returned when the provider cannot be reached
	ErrConnectionFailure = errors.New("unable to establish connection to the identity provider")

	// ErrTransientAuth is returned for unclassified provider errors
	ErrTransientAuth = errors.New("an error occurred authenticating")

	// ErrBadHeader is returned when an outbound mail header contains
	// forbidden characters
	ErrBadHeader = errors.New("bad header content")

	// ErrAttributeNotFound is returned when a session attribute is unset
	ErrAttributeNotFound = errors.New("session attribute not found")

	// ErrSessionRequired is returned when an operation needs a resolvable
	// session key and none is present
	ErrSessionRequired = errors.New("session key required")

	// ErrConnectionActive is returned when a session already has an open
	// timing connection
	ErrConnectionActive = errors.New("timing connection already active for session")

	// ErrInvalidToken is returned when a session token fails validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("token has expired")
)

// PasswordExpiredError reports that the provider refused the login because
// the password must be changed. Recoverable reflects the deployment policy:
// when true the caller may start a password-change flow.
type PasswordExpiredError struct {
	UserID      string
	Recoverable bool
}

func (e *PasswordExpiredError) Error() string {
	return fmt.Sprintf("password expired for user %s", e.UserID)
}
