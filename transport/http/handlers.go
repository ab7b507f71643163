package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
	"github.com/openrba/stepgate/rtt"
	"github.com/openrba/stepgate/service"
)

// Failure messages must not disclose which of username or password was
// wrong; the provider-unreachable case gets distinct wording.
const (
	msgInvalidCredentials = "Invalid credentials."
	msgTransient          = "An error occurred authenticating. Please try again later."
	msgConnection         = "Unable to establish connection to the identity provider."
	msgPasswordExpired    = "Password expired."
	msgInvalidRegion      = "Invalid region."
	msgInvalidPasscode    = "The security code must be 6 to 8 digits."
)

// AuthHandlers contains HTTP handlers for the login endpoints
type AuthHandlers struct {
	login *service.LoginService
	store ports.SessionStore
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(login *service.LoginService, store ports.SessionStore) *AuthHandlers {
	return &AuthHandlers{
		login: login,
		store: store,
	}
}

// ShowLogin serves the login form descriptor. Loading a fresh login page
// clears any previous RTT measurement: the signal belongs to one attempt
// cycle.
func (h *AuthHandlers) ShowLogin(c *gin.Context) {
	_ = h.store.Delete(c.Request.Context(), SessionKey(c), rtt.SessionAttr)

	regions := make([]string, 0)
	for _, region := range h.login.Regions() {
		regions = append(regions, region.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"state":   core.LoginStateInitial,
		"regions": regions,
		"fields":  []string{"username", "password", "domain", "region"},
	})
}

// Login handles a login submission
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Domain   string `json:"domain"`
		Region   string `json:"region" binding:"required"`
		Passcode string `json:"passcode"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.login.Submit(c.Request.Context(), service.LoginRequest{
		SessionKey: SessionKey(c),
		Username:   req.Username,
		Password:   req.Password,
		Domain:     req.Domain,
		Region:     req.Region,
		Passcode:   req.Passcode,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		h.renderFailure(c, err)
		return
	}

	switch result.State {
	case core.LoginStateChallenge:
		// The submission is rejected; the form flips to passcode mode
		c.JSON(http.StatusUnauthorized, gin.H{
			"state":   result.State,
			"message": result.Message,
			"fields":  []string{"passcode"},
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"state":          result.State,
			"session_token":  result.SessionToken,
			"provider_token": result.ProviderToken,
		})
	}
}

// renderFailure maps orchestrator errors onto responses. Every failure
// resets the form to its initial presentation except a malformed passcode,
// which keeps the challenge mode so the user can retry the code.
func (h *AuthHandlers) renderFailure(c *gin.Context, err error) {
	var expired *core.PasswordExpiredError

	switch {
	case errors.Is(err, core.ErrInvalidRegion):
		c.JSON(http.StatusBadRequest, gin.H{
			"state": core.LoginStateInitial,
			"field": "region",
			"error": msgInvalidRegion,
		})

	case errors.Is(err, core.ErrInvalidPasscode):
		c.JSON(http.StatusBadRequest, gin.H{
			"state": core.LoginStateChallenge,
			"field": "passcode",
			"error": msgInvalidPasscode,
		})

	case errors.As(err, &expired):
		status := http.StatusUnauthorized
		if expired.Recoverable {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"state":           core.LoginStateInitial,
			"error":           msgPasswordExpired,
			"user_id":         expired.UserID,
			"password_change": expired.Recoverable,
		})

	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"state": core.LoginStateInitial,
			"error": msgInvalidCredentials,
		})

	case errors.Is(err, core.ErrConnectionFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"state": core.LoginStateInitial,
			"error": msgConnection,
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"state": core.LoginStateInitial,
			"error": msgTransient,
		})
	}
}

// Me returns the authenticated user of a granted session
func (h *AuthHandlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username": c.GetString("username"),
		"domain":   c.GetString("domain"),
	})
}
