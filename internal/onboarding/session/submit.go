package session

import (
	"context"
	"strings"

	"scoutpay/internal/audit"
	"scoutpay/internal/profile/client"
	"scoutpay/internal/profile/store"
	"scoutpay/internal/verification/tracer"
	dErrors "scoutpay/pkg/domain-errors"
)

// Submit re-validates the draft and, when clean, performs the one-shot wallet
// profile creation. Exactly one submission can be in flight per session; a
// confirmed success locks the draft permanently and records the wallet flag.
// Any failure leaves the draft editable — including a conflict, which means a
// profile already exists upstream and no flag may be written locally.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.draft.Locked {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	if s.submitting {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeSubmissionInFlight, "a submission is already in progress")
	}
	verdict := s.evaluateLocked(s.deps.Now())
	if !verdict.Valid {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeNotSubmittable, verdict.BlockingReasons[0])
	}

	s.submitting = true
	s.touch()
	variant := s.draft.Variant
	individual := s.buildIndividualLocked()
	business := s.buildBusinessLocked()
	s.mu.Unlock()

	ctx, span := s.deps.Tracer.Start(ctx, tracer.SpanProfileSubmit,
		tracer.String(tracer.AttrVariant, string(variant)),
	)
	var err error
	if variant == VariantBusiness {
		err = s.deps.Profiles.CreateBusiness(ctx, business)
	} else {
		err = s.deps.Profiles.CreateIndividual(ctx, individual)
	}
	outcome := "created"
	if err != nil {
		outcome, _ = submitFailure(err)
	}
	span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome))
	span.End(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if err != nil {
		_, action := submitFailure(err)
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordSubmission(outcome)
		}
		s.emitAudit(action, "", outcome, err.Error())
		s.deps.Logger.Warn("profile submission failed",
			"session_id", s.ID,
			"variant", variant,
			"outcome", outcome,
			"error", err,
		)
		return err
	}

	s.draft.Locked = true
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSubmission("created")
	}
	s.emitAudit(audit.ActionProfileSubmitted, "", "created", "")

	if s.deps.Flags != nil {
		flag := store.WalletFlag{
			UserID:      s.UserID,
			ProfileType: string(variant),
			CreatedAt:   s.deps.Now(),
		}
		if saveErr := s.deps.Flags.Save(ctx, flag); saveErr != nil {
			// The profile exists upstream; a flag write failure is logged and
			// repaired by the next lookup, never surfaced as a submit failure.
			s.deps.Logger.Error("failed to record wallet flag",
				"session_id", s.ID,
				"user_id", s.UserID,
				"error", saveErr,
			)
		}
	}
	return nil
}

func submitFailure(err error) (outcome, action string) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return "conflict", audit.ActionProfileConflict
	case dErrors.HasCode(err, dErrors.CodeValidation):
		return "validation", audit.ActionProfileSubmitError
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		return "auth", audit.ActionProfileSubmitError
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return "timeout", audit.ActionProfileSubmitError
	default:
		return "server", audit.ActionProfileSubmitError
	}
}

// nameParts resolves the individual's name with fixed source preference:
// BVN-extracted parts, then NIN-extracted parts, then a split of the manually
// typed full name as the last resort.
func (s *Session) namePartsLocked() (first, middle, last string) {
	for _, kind := range []FieldKind{FieldBVN, FieldNIN} {
		f := s.fields[kind]
		if f.State == StateVerified && (f.ExtractedFirst != "" || f.ExtractedLast != "") {
			return f.ExtractedFirst, f.ExtractedMid, f.ExtractedLast
		}
	}
	return splitFullName(s.draft.ManualFullName)
}

// splitFullName breaks a typed full name into parts: first token is the first
// name, last token the surname, anything between the middle name.
func splitFullName(full string) (first, middle, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func (s *Session) buildIndividualLocked() client.IndividualProfile {
	if s.draft.Variant != VariantIndividual {
		return client.IndividualProfile{}
	}
	first, middle, last := s.namePartsLocked()
	return client.IndividualProfile{
		UserID:        s.UserID,
		Title:         s.draft.Selections[SelectionTitle],
		FirstName:     first,
		MiddleName:    middle,
		LastName:      last,
		Gender:        s.draft.Selections[SelectionGender],
		MaritalStatus: s.draft.Selections[SelectionMaritalStatus],
		Country:       s.draft.Selections[SelectionCountry],
		DateOfBirth:   s.draft.DateOfBirth,
		BVN:           s.fields[FieldBVN].RawValue,
		NIN:           s.fields[FieldNIN].RawValue,
		BankCode:      s.bankCode,
		BankName:      s.bankName,
		AccountNumber: s.fields[FieldBankAccount].RawValue,
		AccountName:   s.accountName,
	}
}

func (s *Session) buildBusinessLocked() client.BusinessProfile {
	if s.draft.Variant != VariantBusiness {
		return client.BusinessProfile{}
	}
	return client.BusinessProfile{
		UserID:            s.UserID,
		CompanyName:       s.draft.Business.CompanyName,
		RCNumber:          s.fields[FieldBusinessRC].RawValue,
		IncorporationDate: s.draft.Business.IncorporationDate,
		NatureOfBusiness:  s.draft.Business.NatureOfBusiness,
		Country:           s.draft.Selections[SelectionCountry],
		BankCode:          s.bankCode,
		BankName:          s.bankName,
		AccountNumber:     s.fields[FieldBankAccount].RawValue,
		AccountName:       s.accountName,
		CACDocumentID:     s.draft.Business.CACDocumentID,
	}
}
