package keystone

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/openrba/stepgate/core"
)

var (
	passwordExpiredRe = regexp.MustCompile(
		`The password is expired and needs to be changed for user: ([^.]*)\.`)

	additionalStepsRe = regexp.MustCompile(
		`Additional authentications steps required\.`)
)

// errorEnvelope is the provider's failure detail document
type errorEnvelope struct {
	Error struct {
		Message  string `json:"message"`
		Identity struct {
			RBA struct {
				Contact  string `json:"contact"`
				Passcode string `json:"passcode"`
			} `json:"rba"`
		} `json:"identity"`
	} `json:"error"`
}

// Classify maps a provider failure response onto an outcome. Precedence:
// password-expired detail, additional-steps detail, unauthorized/forbidden/
// not-found, then transient. Connectivity failures are classified by the
// caller before a status code exists. Unparseable detail degrades to a
// transient error, never a panic.
func Classify(status int, body []byte) core.Result {
	detail := failureDetail(body)

	if m := passwordExpiredRe.FindStringSubmatch(detail); m != nil {
		return core.Result{Outcome: core.OutcomePasswordExpired, UserID: m[1]}
	}

	if additionalStepsRe.MatchString(detail) {
		return core.Result{
			Outcome:   core.OutcomeChallengeRequired,
			Challenge: challengePayload(body),
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return core.Result{Outcome: core.OutcomeInvalidCredentials}
	}

	return core.Result{Outcome: core.OutcomeTransientError}
}

// failureDetail extracts the provider's failure reason text. A body that is
// not the documented envelope is used verbatim so the regexes still get a
// chance to match.
func failureDetail(body []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	return string(body)
}

// challengePayload parses the embedded delivery payload of a step-up
// challenge. A missing or malformed payload yields nil: the challenge
// stands, the notifier simply has nothing to send.
func challengePayload(body []byte) *core.ChallengePayload {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	rba := envelope.Error.Identity.RBA
	if rba.Contact == "" || rba.Passcode == "" {
		return nil
	}

	return &core.ChallengePayload{
		Contact:  rba.Contact,
		Passcode: rba.Passcode,
	}
}
