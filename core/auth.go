package core

import "time"

// Outcome classifies the result of one authentication attempt against the
// identity provider.
type Outcome int

const (
	// OutcomeSuccess means the provider accepted the attempt and issued a token
	OutcomeSuccess Outcome = iota

	// OutcomeChallengeRequired means the provider demands a second factor
	OutcomeChallengeRequired

	// OutcomePasswordExpired means the password must be changed before login
	OutcomePasswordExpired

	// OutcomeInvalidCredentials means the provider rejected the credentials
	OutcomeInvalidCredentials

	// OutcomeConnectionFailure means the provider could not be reached
	OutcomeConnectionFailure

	// OutcomeTransientError means an unclassified provider error occurred
	OutcomeTransientError
)

// String returns the outcome name used in logs and published events.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeChallengeRequired:
		return "challenge_required"
	case OutcomePasswordExpired:
		return "password_expired"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeConnectionFailure:
		return "connection_failure"
	default:
		return "transient_error"
	}
}

// FeatureBundle carries the contextual signals attached to a first-pass
// authentication attempt. An unavailable signal is the empty string.
type FeatureBundle struct {
	IP        string `json:"ip"`
	UserAgent string `json:"ua"`
	RTT       string `json:"rtt"`
}

// LoginAttempt is one form submission. Passcode is empty on the first pass
// and carries the one-time code on a challenge retry.
type LoginAttempt struct {
	Username string
	Password string
	Domain   string
	Passcode string
}

// ChallengePayload is the optional out-of-band delivery payload embedded in
// a step-up challenge. It is consumed by the notifier and never persisted.
type ChallengePayload struct {
	Contact  string
	Passcode string
}

// Result is the classified outcome of one provider call.
type Result struct {
	Outcome Outcome

	// Token is the provider token, set when Outcome is OutcomeSuccess
	Token string

	// UserID identifies the affected user when Outcome is OutcomePasswordExpired
	UserID string

	// Challenge is the optional delivery payload when Outcome is
	// OutcomeChallengeRequired
	Challenge *ChallengePayload
}

// LoginState is the logical form state surfaced to the presentation layer.
type LoginState string

const (
	// LoginStateInitial shows username, password, domain and region fields
	LoginStateInitial LoginState = "initial"

	// LoginStateChallenge shows the passcode field, credentials pre-filled
	LoginStateChallenge LoginState = "challenge"

	// LoginStateSuccess means a session has been granted
	LoginStateSuccess LoginState = "success"
)

// Region is one configured identity endpoint a user may log in against.
type Region struct {
	ID      string
	AuthURL string
}

// LoginEvent is published after every authentication attempt.
type LoginEvent struct {
	Username string    `json:"username"`
	Domain   string    `json:"domain"`
	RemoteIP string    `json:"remote_ip"`
	Outcome  string    `json:"outcome"`
	At       time.Time `json:"at"`
}
