package audit

import "time"

// Event is emitted from the onboarding workflow to capture key actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	SessionID string
	Action    string
	Channel   string
	Decision  string
	Reason    string
	RequestID string
}

// Actions emitted by the onboarding workflow.
const (
	ActionSessionCreated     = "session_created"
	ActionSessionAbandoned   = "session_abandoned"
	ActionOTPInitiated       = "bvn_otp_initiated"
	ActionFieldVerified      = "field_verified"
	ActionFieldFailed        = "field_verification_failed"
	ActionProfileSubmitted   = "profile_submitted"
	ActionProfileConflict    = "profile_submit_conflict"
	ActionProfileSubmitError = "profile_submit_failed"
)
