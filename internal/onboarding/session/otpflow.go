package session

import (
	"context"

	"scoutpay/internal/audit"
	"scoutpay/internal/verification/channels"
	"scoutpay/internal/verification/otp"
	"scoutpay/internal/verification/tracer"
	dErrors "scoutpay/pkg/domain-errors"
	"scoutpay/pkg/strutil"
)

// otpCodeLength is the fixed OTP length; entry of the final digit submits.
const otpCodeLength = 6

// ApplyOTPCode feeds the latest raw OTP input into the session. The code is
// digit-filtered and capped at six; the moment it reaches full length with a
// live challenge, submission fires automatically. Editing the code never
// resets the BVN field itself.
func (s *Session) ApplyOTPCode(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	if _, ok := s.fields[FieldBVN]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "no otp flow for this profile variant")
	}
	s.touch()

	code := strutil.TruncateDigits(raw, otpCodeLength)
	if code == s.otpCode {
		return nil
	}
	s.otpCode = code
	s.otpMessage = ""

	if len(code) < otpCodeLength {
		return nil
	}

	switch s.otp.State(s.deps.Now()) {
	case otp.StateSent, otp.StateInvalid:
		s.startOTPSubmitLocked()
	case otp.StateNotStarted:
		// A code typed while the challenge is still initiating is held and
		// submitted when the handle arrives.
		if s.fields[FieldBVN].State != StatePending {
			return dErrors.New(dErrors.CodeInvalidInput, "no verification code has been sent")
		}
	case otp.StateExpired:
		return dErrors.New(dErrors.CodeInvalidInput, "verification session expired, request a new code")
	}
	return nil
}

// ResendOTP re-initiates the BVN challenge immediately with the current
// digits, issuing a fresh session handle. Works from any challenge state; a
// resend is how users recover from expiry or a lost SMS.
func (s *Session) ResendOTP() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	field, ok := s.fields[FieldBVN]
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "no otp flow for this profile variant")
	}
	if len(field.RawValue) != BVNLength {
		return dErrors.New(dErrors.CodeInvalidInput, "enter a complete bvn first")
	}
	s.touch()

	s.otpCode = ""
	s.otpMessage = ""
	s.otpGen++
	gen := s.bumpGeneration(FieldBVN)
	s.schedule(FieldBVN, field.RawValue, gen, 0)
	return nil
}

// startOTPSubmitLocked transitions the challenge to Verifying and launches the
// code round-trip. Callers hold s.mu and have checked the state allows it.
func (s *Session) startOTPSubmitLocked() {
	if err := s.otp.BeginVerify(s.deps.Now()); err != nil {
		return
	}
	s.recordOTPTransition(otp.StateVerifying)

	s.otpGen++
	gen := s.otpGen
	handle := s.otp.SessionHandle()
	code := s.otpCode

	go s.submitOTP(handle, code, gen)
}

// submitOTP performs the SubmitCode round-trip and applies its outcome under
// the same generation discipline as field dispatches: a BVN edit or a resend
// between launch and landing bumps otpGen and the response is dropped.
func (s *Session) submitOTP(handle, code string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.Config.CallTimeout)
	defer cancel()

	ctx, span := s.deps.Tracer.Start(ctx, tracer.SpanOTPSubmit,
		tracer.String(tracer.AttrChannel, string(FieldBVN)),
		tracer.Int64(tracer.AttrGeneration, int64(gen)),
	)
	start := s.deps.Now()
	result, err := s.deps.Channels.BVN.SubmitCode(ctx, handle, code)
	span.SetAttributes(tracer.Duration(tracer.AttrDuration, s.deps.Now().Sub(start)))

	s.mu.Lock()
	defer s.mu.Unlock()
	stale := gen != s.otpGen
	span.SetAttributes(tracer.Bool(tracer.AttrStale, stale))
	span.End(err)
	if stale {
		s.recordVerification(string(FieldBVN), "stale")
		return
	}

	if err != nil {
		if markErr := s.otp.MarkInvalid(); markErr == nil {
			s.recordOTPTransition(otp.StateInvalid)
		}
		s.otpMessage = channels.UserMessage(err)
		s.otpCode = ""
		s.recordVerification(string(FieldBVN), "failed")
		s.emitAudit(audit.ActionFieldFailed, string(FieldBVN), "failed", s.otpMessage)
		s.deps.Logger.Warn("otp submission failed",
			"session_id", s.ID,
			"error", err,
		)
		return
	}

	if !result.Success {
		if markErr := s.otp.MarkInvalid(); markErr == nil {
			s.recordOTPTransition(otp.StateInvalid)
		}
		s.otpMessage = result.Message
		s.otpCode = ""
		s.recordVerification(string(FieldBVN), "failed")
		s.emitAudit(audit.ActionFieldFailed, string(FieldBVN), "failed", result.Message)
		return
	}

	if markErr := s.otp.MarkVerified(); markErr != nil {
		return
	}
	s.recordOTPTransition(otp.StateVerified)
	s.otpMessage = ""

	field := s.fields[FieldBVN]
	field.State = StateVerified
	field.Message = ""
	field.ExtractedName = result.FullName
	field.ExtractedFirst = result.FirstName
	field.ExtractedMid = result.MiddleName
	field.ExtractedLast = result.LastName
	field.ExtractedDate = result.Date

	// BVN is the strongest birth-date source and displaces a NIN or manual one.
	if result.Date != "" {
		s.draft.DateOfBirth = result.Date
		s.draft.dateSource = dobBVN
	}

	s.recordVerification(string(FieldBVN), "verified")
	s.emitAudit(audit.ActionFieldVerified, string(FieldBVN), "verified", "")
}
