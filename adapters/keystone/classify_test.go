package keystone

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrba/stepgate/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome core.Outcome
		userID  string
	}{
		{
			name:    "password expired captures user id",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"The password is expired and needs to be changed for user: alice. Please contact support."}}`,
			outcome: core.OutcomePasswordExpired,
			userID:  "alice",
		},
		{
			name:    "additional steps required",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Additional authentications steps required."}}`,
			outcome: core.OutcomeChallengeRequired,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"The request you have made requires authentication."}}`,
			outcome: core.OutcomeInvalidCredentials,
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			body:    `{"error":{"message":"You are not authorized to perform the requested action."}}`,
			outcome: core.OutcomeInvalidCredentials,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"error":{"message":"Could not find user."}}`,
			outcome: core.OutcomeInvalidCredentials,
		},
		{
			name:    "server error is transient",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"An unexpected error prevented the server from fulfilling your request."}}`,
			outcome: core.OutcomeTransientError,
		},
		{
			name:    "bad request is transient",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"Expecting to find identity in auth."}}`,
			outcome: core.OutcomeTransientError,
		},
		{
			name:    "unparseable body degrades to transient",
			status:  http.StatusInternalServerError,
			body:    `<html>gateway error</html>`,
			outcome: core.OutcomeTransientError,
		},
		{
			name:    "raw body still matches expired detail",
			status:  http.StatusUnauthorized,
			body:    `The password is expired and needs to be changed for user: bob.`,
			outcome: core.OutcomePasswordExpired,
			userID:  "bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.status, []byte(tt.body))

			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.userID, result.UserID)
		})
	}
}

func TestClassifyChallengePayload(t *testing.T) {
	t.Run("payload present", func(t *testing.T) {
		body := `{"error":{"message":"Additional authentications steps required.",` +
			`"identity":{"rba":{"contact":"a@x.com","passcode":"123456"}}}}`

		result := Classify(http.StatusUnauthorized, []byte(body))

		assert.Equal(t, core.OutcomeChallengeRequired, result.Outcome)
		require.NotNil(t, result.Challenge)
		assert.Equal(t, "a@x.com", result.Challenge.Contact)
		assert.Equal(t, "123456", result.Challenge.Passcode)
	})

	t.Run("missing payload yields challenge without delivery", func(t *testing.T) {
		body := `{"error":{"message":"Additional authentications steps required."}}`

		result := Classify(http.StatusUnauthorized, []byte(body))

		assert.Equal(t, core.OutcomeChallengeRequired, result.Outcome)
		assert.Nil(t, result.Challenge)
	})

	t.Run("partial payload yields challenge without delivery", func(t *testing.T) {
		body := `{"error":{"message":"Additional authentications steps required.",` +
			`"identity":{"rba":{"contact":"a@x.com"}}}}`

		result := Classify(http.StatusUnauthorized, []byte(body))

		assert.Equal(t, core.OutcomeChallengeRequired, result.Outcome)
		assert.Nil(t, result.Challenge)
	})
}
