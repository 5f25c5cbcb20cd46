package session

import (
	"time"

	"scoutpay/internal/verification/otp"
	"scoutpay/pkg/dates"
	"scoutpay/pkg/domain"
)

// Verdict is the aggregate-validation outcome for a profile draft.
// BlockingReasons are ordered by fixed precedence: syntactic completeness,
// then BVN OTP, then per-field verification outcomes, then selections, then
// birth date and age, then the business document checks.
type Verdict struct {
	Valid           bool
	BlockingReasons []string
}

// EvaluateInput is a pure snapshot of everything the validator inspects.
// Keeping the function free of session internals makes every precedence rule
// testable without timers or channel stubs.
type EvaluateInput struct {
	Variant      Variant
	Fields       map[FieldKind]IdentityField
	OTPState     otp.State
	Selections   map[SelectionField]string
	BankSelected bool
	DateOfBirth  string
	Business     BusinessData
	Now          time.Time
}

// Evaluate runs the aggregate form validation. It is pure: same input, same
// verdict, no side effects. A Pending field is its own blocking reason,
// distinct from a failure, so callers can render "still checking" instead of
// an error.
func Evaluate(in EvaluateInput) Verdict {
	var reasons []string
	add := func(r string) { reasons = append(reasons, r) }

	// 1. Syntactic completeness of the identity fields.
	for _, kind := range requiredFields(in.Variant) {
		f := in.Fields[kind]
		switch kind {
		case FieldBVN:
			if len(f.RawValue) != BVNLength {
				add("bvn must be 11 digits")
			}
		case FieldNIN:
			if len(f.RawValue) != NINLength {
				add("nin must be 11 digits")
			}
		case FieldBankAccount:
			if len(f.RawValue) != AccountNumberLength {
				add("account number must be 10 digits")
			}
		case FieldBusinessRC:
			if len(f.RawValue) < MinRCSearchLength {
				add("rc number or business name is required")
			}
		}
	}

	// 2. BVN ownership proof via OTP (individual only).
	if in.Variant == VariantIndividual {
		if f := in.Fields[FieldBVN]; len(f.RawValue) == BVNLength {
			switch {
			case f.State == StateFailed:
				add("bvn verification failed")
			case f.State == StatePending && in.OTPState == otp.StateNotStarted:
				add("bvn verification pending")
			default:
				switch in.OTPState {
				case otp.StateVerified:
				case otp.StateNotStarted:
					add("bvn verification has not started")
				case otp.StateSent:
					add("enter the code sent to your phone")
				case otp.StateVerifying:
					add("bvn verification pending")
				case otp.StateInvalid:
					add("the code entered was not accepted")
				case otp.StateExpired:
					add("bvn verification session expired")
				}
			}
		}
	}

	// 3. Remaining field verification outcomes, in form order.
	for _, kind := range requiredFields(in.Variant) {
		if kind == FieldBVN {
			continue
		}
		f := in.Fields[kind]
		if kind == FieldBankAccount && !in.BankSelected {
			add("select a bank")
			continue
		}
		complete := (kind == FieldBankAccount && len(f.RawValue) == AccountNumberLength) ||
			(kind == FieldNIN && len(f.RawValue) == NINLength) ||
			(kind == FieldBusinessRC && len(f.RawValue) >= MinRCSearchLength)
		if !complete {
			continue
		}
		label := fieldLabel(kind)
		switch f.State {
		case StateVerified:
		case StatePending:
			add(label + " verification pending")
		case StateFailed:
			add(label + " verification failed")
		default:
			add(label + " not verified")
		}
	}

	// 4. Required dropdown selections.
	required := []SelectionField{SelectionCountry}
	if in.Variant == VariantIndividual {
		required = []SelectionField{
			SelectionTitle, SelectionGender, SelectionMaritalStatus, SelectionCountry,
		}
	}
	for _, sel := range required {
		if in.Selections[sel] == "" {
			add(string(sel) + " is required")
		}
	}

	// 5. Birth date and minimum age (individual only).
	if in.Variant == VariantIndividual {
		if in.DateOfBirth == "" {
			add("date of birth is required")
		} else if canonical, ok := dates.Normalize(in.DateOfBirth); !ok {
			add("date of birth is not a valid date")
		} else if birth, err := time.Parse("2006-01-02", canonical); err != nil {
			add("date of birth is not a valid date")
		} else if !domain.MeetsAgeRequirement(birth, in.Now) {
			add("you must be at least 18 years old")
		}
	}

	// 6. Business document requirements.
	if in.Variant == VariantBusiness {
		if in.Business.CompanyName == "" {
			add("company name is required")
		}
		if in.Business.IncorporationDate == "" {
			add("incorporation date is required")
		}
		if in.Business.CACDocumentID == "" {
			add("cac certificate is not attached")
		}
	}

	return Verdict{Valid: len(reasons) == 0, BlockingReasons: reasons}
}

func fieldLabel(kind FieldKind) string {
	switch kind {
	case FieldNIN:
		return "nin"
	case FieldBankAccount:
		return "account"
	case FieldBusinessRC:
		return "business"
	default:
		return string(kind)
	}
}

// evaluateLocked builds the pure validator input from current session state.
// Callers hold s.mu.
func (s *Session) evaluateLocked(now time.Time) Verdict {
	fields := make(map[FieldKind]IdentityField, len(s.fields))
	for kind, f := range s.fields {
		fields[kind] = *f
	}
	return Evaluate(EvaluateInput{
		Variant:      s.draft.Variant,
		Fields:       fields,
		OTPState:     s.otp.State(now),
		Selections:   s.draft.Selections,
		BankSelected: s.bankCode != "",
		DateOfBirth:  s.draft.DateOfBirth,
		Business:     s.draft.Business,
		Now:          now,
	})
}
