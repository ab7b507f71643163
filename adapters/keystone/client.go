package keystone

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

// subjectTokenHeader carries the issued token on a successful response
const subjectTokenHeader = "X-Subject-Token"

// Client authenticates against a Keystone-style identity endpoint using the
// combined password + rba method and classifies failure details into
// outcomes the orchestrator can act on.
type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a new identity provider client
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "keystone").Logger(),
	}
}

type domainRef struct {
	Name string `json:"name"`
}

type userRef struct {
	Name     string    `json:"name"`
	Domain   domainRef `json:"domain"`
	Password string    `json:"password,omitempty"`
}

type passwordMethod struct {
	User userRef `json:"user"`
}

type rbaMethod struct {
	User     userRef             `json:"user"`
	Passcode *string             `json:"passcode,omitempty"`
	Features *core.FeatureBundle `json:"features,omitempty"`
}

type identitySection struct {
	Methods  []string       `json:"methods"`
	Password passwordMethod `json:"password"`
	RBA      rbaMethod      `json:"rba"`
}

type authRequest struct {
	Auth struct {
		Identity identitySection `json:"identity"`
	} `json:"auth"`
}

// Authenticate performs one attempt against the provider. It never returns
// a Go error; every failure mode maps to a classified Result.
func (c *Client) Authenticate(ctx context.Context, authURL string, attempt core.LoginAttempt, features *core.FeatureBundle) core.Result {
	body, err := json.Marshal(buildRequest(attempt, features))
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode auth request")
		return core.Result{Outcome: core.OutcomeTransientError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL+"/auth/tokens", bytes.NewReader(body))
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to build auth request")
		return core.Result{Outcome: core.OutcomeTransientError}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Covers refused connections, DNS failures and provider timeouts
		c.logger.Error().Err(err).Str("auth_url", authURL).Msg("identity provider unreachable")
		return core.Result{Outcome: core.OutcomeConnectionFailure}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read provider response")
		return core.Result{Outcome: core.OutcomeConnectionFailure}
	}

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		token := resp.Header.Get(subjectTokenHeader)
		if token == "" {
			c.logger.Warn().Msg("provider response missing subject token")
			return core.Result{Outcome: core.OutcomeTransientError}
		}
		return core.Result{Outcome: core.OutcomeSuccess, Token: token}
	}

	result := Classify(resp.StatusCode, respBody)
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("outcome", result.Outcome.String()).
		Msg("classified provider failure")

	return result
}

func buildRequest(attempt core.LoginAttempt, features *core.FeatureBundle) authRequest {
	user := userRef{
		Name:   attempt.Username,
		Domain: domainRef{Name: attempt.Domain},
	}

	var passcode *string
	if attempt.Passcode != "" {
		passcode = &attempt.Passcode
	}

	var req authRequest
	req.Auth.Identity = identitySection{
		Methods: []string{"password", "rba"},
		Password: passwordMethod{
			User: userRef{
				Name:     attempt.Username,
				Domain:   domainRef{Name: attempt.Domain},
				Password: attempt.Password,
			},
		},
		RBA: rbaMethod{
			User:     user,
			Passcode: passcode,
			Features: features,
		},
	}

	return req
}

var _ ports.Authenticator = (*Client)(nil)
