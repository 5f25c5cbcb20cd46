// Package otp models the BVN OTP challenge exchange as an explicit state
// machine: NotStarted → Sent → Verifying → {Verified, Invalid}, with Sent →
// Expired on session-window timeout.
package otp

import (
	"fmt"
	"time"
)

// State is the position of a challenge in its lifecycle.
type State string

const (
	StateNotStarted State = "not_started"
	StateSent       State = "sent"
	StateVerifying  State = "verifying"
	StateVerified   State = "verified"
	StateInvalid    State = "invalid"
	StateExpired    State = "expired"
)

// ErrState reports a transition attempted from the wrong state.
type ErrState struct {
	Op   string
	From State
}

func (e *ErrState) Error() string {
	return fmt.Sprintf("otp: cannot %s while %s", e.Op, e.From)
}

// Challenge is the live BVN OTP exchange for one session.
// The zero value is a NotStarted challenge. Not safe for concurrent use; the
// owning session serializes access.
type Challenge struct {
	state             State
	sessionHandle     string
	maskedDestination string
	sentAt            time.Time
	ttl               time.Duration
}

// New returns a NotStarted challenge whose session handle stays usable for ttl
// after each send.
func New(ttl time.Duration) *Challenge {
	return &Challenge{state: StateNotStarted, ttl: ttl}
}

// State returns the current state, accounting for session-window expiry.
func (c *Challenge) State(now time.Time) State {
	if c.state == "" {
		return StateNotStarted
	}
	if c.expired(now) {
		return StateExpired
	}
	return c.state
}

func (c *Challenge) expired(now time.Time) bool {
	return (c.state == StateSent || c.state == StateInvalid) &&
		c.ttl > 0 && now.After(c.sentAt.Add(c.ttl))
}

// SessionHandle returns the opaque token issued at challenge initiation.
func (c *Challenge) SessionHandle() string {
	return c.sessionHandle
}

// MaskedDestination returns the partially-redacted phone number the code went to.
func (c *Challenge) MaskedDestination() string {
	return c.maskedDestination
}

// MarkSent records a successful challenge initiation, clearing any prior
// verified or invalid outcome. Allowed from any state: re-initiating is how a
// user requests a resend or recovers from expiry.
func (c *Challenge) MarkSent(sessionHandle, maskedDestination string, now time.Time) {
	c.state = StateSent
	c.sessionHandle = sessionHandle
	c.maskedDestination = maskedDestination
	c.sentAt = now
}

// BeginVerify moves Sent → Verifying. A challenge that was Invalid may also be
// retried with the same session handle; no re-initiation required.
func (c *Challenge) BeginVerify(now time.Time) error {
	state := c.State(now)
	if state != StateSent && state != StateInvalid {
		return &ErrState{Op: "submit code", From: state}
	}
	c.state = StateVerifying
	return nil
}

// MarkVerified resolves a Verifying challenge as successful.
func (c *Challenge) MarkVerified() error {
	if c.state != StateVerifying {
		return &ErrState{Op: "mark verified", From: c.state}
	}
	c.state = StateVerified
	return nil
}

// MarkInvalid resolves a Verifying challenge as rejected. The session handle
// remains valid for another attempt.
func (c *Challenge) MarkInvalid() error {
	if c.state != StateVerifying {
		return &ErrState{Op: "mark invalid", From: c.state}
	}
	c.state = StateInvalid
	return nil
}

// Reset force-returns the challenge to NotStarted and discards the session
// handle. Called whenever the underlying BVN digits change.
func (c *Challenge) Reset() {
	c.state = StateNotStarted
	c.sessionHandle = ""
	c.maskedDestination = ""
	c.sentAt = time.Time{}
}
