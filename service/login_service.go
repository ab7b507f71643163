package service

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
	"github.com/openrba/stepgate/rtt"
)

// passcodeRe accepts the 6 to 8 digit one-time codes the provider issues
var passcodeRe = regexp.MustCompile(`^\d{6,8}$`)

// AdvisoryMessage is surfaced when the provider demands a second factor
const AdvisoryMessage = "For security reasons we would like to verify your identity. " +
	"This is required when something about your sign-in activity changes, " +
	"like signing in from a new location or a new device. " +
	"We've sent a security code to your deposited contact address. " +
	"Please enter the code to log in."

// LoginRequest is one login form submission together with its request
// metadata.
type LoginRequest struct {
	SessionKey string

	Username string
	Password string
	Domain   string
	Region   string
	Passcode string

	ClientIP  string
	UserAgent string
}

// LoginResult is the orchestrator's answer to one submission. State tells
// the presentation layer which logical fields to render.
type LoginResult struct {
	State core.LoginState

	// Message is the user-facing advisory when State is LoginStateChallenge
	Message string

	// ProviderToken is the provider-issued token on success
	ProviderToken string

	// SessionToken is stepgate's own session grant on success
	SessionToken string
}

// LoginService drives the step-up authentication state machine: it tries a
// password-only attempt augmented with collected signals, interprets a
// challenge response, and retries with the passcode.
type LoginService struct {
	store    ports.SessionStore
	auth     ports.Authenticator
	events   ports.EventPublisher
	notifier *Notifier
	tokens   *TokenIssuer

	regions            []core.Region
	defaultDomain      string
	allowExpiredChange bool

	logger zerolog.Logger
}

// NewLoginService creates a new login service
func NewLoginService(
	store ports.SessionStore,
	auth ports.Authenticator,
	events ports.EventPublisher,
	notifier *Notifier,
	tokens *TokenIssuer,
	regions []core.Region,
	defaultDomain string,
	allowExpiredChange bool,
	logger zerolog.Logger,
) *LoginService {
	return &LoginService{
		store:              store,
		auth:               auth,
		events:             events,
		notifier:           notifier,
		tokens:             tokens,
		regions:            regions,
		defaultDomain:      defaultDomain,
		allowExpiredChange: allowExpiredChange,
		logger:             logger.With().Str("component", "login").Logger(),
	}
}

// Regions returns the configured region choices for the login form
func (s *LoginService) Regions() []core.Region {
	return s.regions
}

// Tokens exposes the issuer for the session-token middleware
func (s *LoginService) Tokens() *TokenIssuer {
	return s.tokens
}

// Submit processes one login submission. Local validation (region,
// passcode syntax) happens before anything reaches the authenticator.
// Features are assembled only on a first pass: once a passcode is
// supplied, the passcode itself is the proof and risk signals must not be
// re-assessed.
func (s *LoginService) Submit(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	region, err := s.resolveRegion(req.Region)
	if err != nil {
		return nil, err
	}

	if req.Passcode != "" && !passcodeRe.MatchString(req.Passcode) {
		return nil, core.ErrInvalidPasscode
	}

	domain := req.Domain
	if domain == "" {
		domain = s.defaultDomain
	}

	attempt := core.LoginAttempt{
		Username: req.Username,
		Password: req.Password,
		Domain:   domain,
		Passcode: req.Passcode,
	}

	var features *core.FeatureBundle
	if req.Passcode == "" {
		features = s.assembleFeatures(ctx, req)
	}

	result := s.auth.Authenticate(ctx, region.AuthURL, attempt, features)
	s.publish(ctx, req, domain, result.Outcome)

	switch result.Outcome {
	case core.OutcomeSuccess:
		return s.grantSession(ctx, req, domain, result)

	case core.OutcomeChallengeRequired:
		s.notifier.Notify(ctx, result.Challenge)
		return &LoginResult{
			State:   core.LoginStateChallenge,
			Message: AdvisoryMessage,
		}, nil

	case core.OutcomePasswordExpired:
		s.logger.Info().
			Str("username", req.Username).
			Str("domain", domain).
			Str("remote_ip", req.ClientIP).
			Msg("login failed: password expired")
		return nil, &core.PasswordExpiredError{
			UserID:      result.UserID,
			Recoverable: s.allowExpiredChange,
		}

	case core.OutcomeInvalidCredentials:
		s.logFailure(req, domain)
		return nil, core.ErrInvalidCredentials

	case core.OutcomeConnectionFailure:
		s.logFailure(req, domain)
		return nil, core.ErrConnectionFailure

	default:
		s.logFailure(req, domain)
		return nil, core.ErrTransientAuth
	}
}

// grantSession issues stepgate's own session token alongside the provider
// token and retires the consumed RTT measurement.
func (s *LoginService) grantSession(ctx context.Context, req LoginRequest, domain string, result core.Result) (*LoginResult, error) {
	sessionToken, err := s.tokens.Issue(req.Username, domain)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue session token")
		return nil, core.ErrTransientAuth
	}

	// The measurement belongs to this attempt cycle only
	if err := s.store.Delete(ctx, req.SessionKey, rtt.SessionAttr); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear rtt attribute")
	}

	s.logger.Info().
		Str("username", req.Username).
		Str("domain", domain).
		Str("remote_ip", req.ClientIP).
		Msg("login successful")

	return &LoginResult{
		State:         core.LoginStateSuccess,
		ProviderToken: result.Token,
		SessionToken:  sessionToken,
	}, nil
}

// resolveRegion validates the user-chosen endpoint against the configured
// list; an unknown selection never reaches the authenticator.
func (s *LoginService) resolveRegion(regionID string) (core.Region, error) {
	for _, region := range s.regions {
		if region.ID == regionID {
			return region, nil
		}
	}

	return core.Region{}, core.ErrInvalidRegion
}

func (s *LoginService) publish(ctx context.Context, req LoginRequest, domain string, outcome core.Outcome) {
	if s.events == nil {
		return
	}

	event := core.LoginEvent{
		Username: req.Username,
		Domain:   domain,
		RemoteIP: req.ClientIP,
		Outcome:  outcome.String(),
		At:       time.Now(),
	}

	if err := s.events.PublishLogin(ctx, event); err != nil {
		// The attempt outcome stands regardless of event delivery
		s.logger.Warn().Err(err).Msg("failed to publish login event")
	}
}

func (s *LoginService) logFailure(req LoginRequest, domain string) {
	s.logger.Info().
		Str("username", req.Username).
		Str("domain", domain).
		Str("remote_ip", req.ClientIP).
		Msg("login failed")
}
