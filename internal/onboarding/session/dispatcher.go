package session

import (
	"context"

	"scoutpay/internal/audit"
	"scoutpay/internal/verification/channels"
	"scoutpay/internal/verification/otp"
	"scoutpay/internal/verification/tracer"
)

// dispatch runs one verification call for a field. It fires from a debounce
// timer goroutine, re-checks the generation token before marking the field
// Pending, performs the remote call without holding the lock, and re-checks
// the token again before applying the outcome. A stale response — one whose
// generation was superseded by a later edit — is counted and dropped.
func (s *Session) dispatch(kind FieldKind, value string, gen uint64) {
	s.mu.Lock()
	if gen != s.gens[kind] {
		s.mu.Unlock()
		return
	}
	field := s.fields[kind]
	field.State = StatePending
	field.Message = ""
	bankCode, bankName := s.bankCode, s.bankName
	phone := s.phone
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.deps.Config.CallTimeout)
	defer cancel()

	spanName := tracer.SpanVerifyField
	if kind == FieldBVN {
		spanName = tracer.SpanOTPInitiate
	}
	ctx, span := s.deps.Tracer.Start(ctx, spanName,
		tracer.String(tracer.AttrChannel, string(kind)),
		tracer.Int64(tracer.AttrGeneration, int64(gen)),
		tracer.String(tracer.AttrIdentity, tracer.HashIdentity(value)),
	)

	start := s.deps.Now()
	var (
		result    *channels.Result
		challenge *channels.Challenge
		err       error
	)
	switch kind {
	case FieldBVN:
		challenge, err = s.deps.Channels.BVN.InitiateChallenge(ctx, value, phone)
	case FieldNIN:
		result, err = s.deps.Channels.NIN.Verify(ctx, value)
	case FieldBankAccount:
		result, err = s.deps.Channels.BankAccount.Resolve(ctx, bankCode, bankName, value)
	case FieldBusinessRC:
		result, err = s.deps.Channels.Business.Search(ctx, value)
	}
	elapsed := s.deps.Now().Sub(start)
	span.SetAttributes(tracer.Duration(tracer.AttrDuration, elapsed))

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveVerificationDuration(string(kind), elapsed.Seconds())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stale := gen != s.gens[kind]
	span.SetAttributes(tracer.Bool(tracer.AttrStale, stale))
	span.End(err)
	if stale {
		s.recordVerification(string(kind), "stale")
		return
	}

	if err != nil {
		s.applyFailure(kind, channels.UserMessage(err))
		s.deps.Logger.Warn("verification call failed",
			"session_id", s.ID,
			"channel", kind,
			"category", channels.Category(err),
			"error", err,
		)
		return
	}

	if kind == FieldBVN {
		s.applyChallenge(challenge)
		return
	}
	s.applyResult(kind, result)
}

// applyFailure moves a field to Failed with a user-facing message.
// Callers hold s.mu.
func (s *Session) applyFailure(kind FieldKind, message string) {
	field := s.fields[kind]
	field.State = StateFailed
	field.Message = message
	s.recordVerification(string(kind), "failed")
	s.emitAudit(audit.ActionFieldFailed, string(kind), "failed", message)
}

// applyChallenge records a successful BVN OTP initiation. The BVN field stays
// Pending until the code round-trip completes.
func (s *Session) applyChallenge(challenge *channels.Challenge) {
	s.otp.MarkSent(challenge.SessionHandle, challenge.MaskedDestination, s.deps.Now())
	s.otpMessage = ""
	s.recordOTPTransition(otp.StateSent)
	s.emitAudit(audit.ActionOTPInitiated, string(FieldBVN), "sent", "")

	// A code typed before the challenge landed (or a retry after expiry)
	// submits as soon as the new handle arrives.
	if len(s.otpCode) == otpCodeLength {
		s.startOTPSubmitLocked()
	}
}

// applyResult applies a single-phase channel outcome to its field.
// Callers hold s.mu.
func (s *Session) applyResult(kind FieldKind, result *channels.Result) {
	field := s.fields[kind]
	if !result.Success {
		s.applyFailure(kind, result.Message)
		if kind == FieldBankAccount {
			s.accountName = ""
		}
		return
	}

	field.State = StateVerified
	field.Message = ""
	field.ExtractedName = result.FullName
	field.ExtractedFirst = result.FirstName
	field.ExtractedMid = result.MiddleName
	field.ExtractedLast = result.LastName
	field.ExtractedDate = result.Date

	switch kind {
	case FieldNIN:
		// NIN populates the shared birth date only when BVN hasn't already.
		if result.Date != "" && s.draft.dateSource < dobNIN {
			s.draft.DateOfBirth = result.Date
			s.draft.dateSource = dobNIN
		}
	case FieldBankAccount:
		s.accountName = result.AccountName
		field.ExtractedName = result.AccountName
	case FieldBusinessRC:
		// The registry-approved record overwrites whatever was typed.
		if result.FullName != "" {
			s.draft.Business.CompanyName = result.FullName
		}
		if result.Date != "" {
			s.draft.Business.IncorporationDate = result.Date
		}
		if result.NatureOfBusiness != "" {
			s.draft.Business.NatureOfBusiness = result.NatureOfBusiness
		}
	}

	s.recordVerification(string(kind), "verified")
	s.emitAudit(audit.ActionFieldVerified, string(kind), "verified", "")
}
