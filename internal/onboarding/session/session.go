// Package session implements the wallet onboarding session engine: debounced
// per-field identity verification, the BVN OTP sub-flow, live aggregate
// validation of the profile draft, and one-shot profile submission.
//
// A Session owns all mutable workflow state for one user's onboarding attempt
// and serializes access with a single mutex. Verification calls run in
// background goroutines; generation tokens guarantee that only the response
// matching the latest input is ever applied.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scoutpay/internal/audit"
	"scoutpay/internal/onboarding/metrics"
	"scoutpay/internal/profile/client"
	"scoutpay/internal/profile/store"
	"scoutpay/internal/verification/channels"
	"scoutpay/internal/verification/otp"
	"scoutpay/internal/verification/tracer"
	dErrors "scoutpay/pkg/domain-errors"
	"scoutpay/pkg/strutil"
)

// Channels bundles the verification channels a session dispatches to.
type Channels struct {
	BVN         channels.BVNChannel
	NIN         channels.NINChannel
	BankAccount channels.BankAccountChannel
	Business    channels.BusinessChannel
}

// ProfileCreator submits completed wallet profiles to the wallet service.
type ProfileCreator interface {
	CreateIndividual(ctx context.Context, profile client.IndividualProfile) error
	CreateBusiness(ctx context.Context, profile client.BusinessProfile) error
}

// AuditSink receives workflow audit events.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the session timing knobs. Tests shrink the debounce windows
// to keep runs fast.
type Config struct {
	// DigitDebounce is the quiet window after the last keystroke on a
	// fixed-length digit field before its verification call fires.
	DigitDebounce time.Duration

	// BusinessDebounce is the quiet window for the free-text RC/name field.
	BusinessDebounce time.Duration

	// CallTimeout bounds every remote verification call.
	CallTimeout time.Duration

	// OTPSessionTTL is how long a BVN OTP session handle stays usable.
	OTPSessionTTL time.Duration
}

// Deps are the session's collaborators, all injected so tests can stub the
// channel boundary.
type Deps struct {
	Channels Channels
	Profiles ProfileCreator
	Flags    store.Store
	Audit    AuditSink
	Metrics  *metrics.Metrics
	Tracer   tracer.Tracer
	Logger   *slog.Logger
	Config   Config
	Now      func() time.Time
}

// Session is one user's live onboarding workflow.
//
// All exported methods are safe for concurrent use. Verification results are
// applied by background goroutines under the same mutex, so a Snapshot taken
// at any moment is internally consistent.
type Session struct {
	ID     string
	UserID string

	deps Deps

	mu     sync.Mutex
	draft  ProfileDraft
	fields map[FieldKind]*IdentityField

	// BVN OTP sub-flow state.
	otp        *otp.Challenge
	otpCode    string
	otpMessage string
	phone      string

	// Bank selection and the resolved account name.
	bankCode    string
	bankName    string
	accountName string

	// Debounce timers and generation tokens, one lane per field. A bumped
	// generation logically cancels every in-flight dispatch for that field.
	timers map[FieldKind]*time.Timer
	gens   map[FieldKind]uint64
	otpGen uint64

	submitting   bool
	lastActivity time.Time
}

func newSession(id, userID string, variant Variant, phone string, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = tracer.NewNoop()
	}

	s := &Session{
		ID:     id,
		UserID: userID,
		deps:   deps,
		draft: ProfileDraft{
			Variant:    variant,
			Selections: make(map[SelectionField]string),
		},
		fields: make(map[FieldKind]*IdentityField),
		otp:    otp.New(deps.Config.OTPSessionTTL),
		phone:  strutil.DigitsOnly(phone),
		timers: make(map[FieldKind]*time.Timer),
		gens:   make(map[FieldKind]uint64),
	}
	for _, kind := range requiredFields(variant) {
		s.fields[kind] = &IdentityField{Kind: kind, State: StateUnverified}
	}
	s.lastActivity = deps.Now()
	return s
}

// Variant returns the profile variant the session is drafting.
func (s *Session) Variant() Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Variant
}

// touch refreshes the idle clock. Callers hold s.mu.
func (s *Session) touch() {
	s.lastActivity = s.deps.Now()
}

// LastActivity returns the time of the most recent user interaction.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// sanitize normalizes raw keyboard input for a field kind: digit fields are
// stripped and hard-capped at their fixed length, the business search term is
// trimmed free text.
func sanitize(kind FieldKind, raw string) string {
	switch kind {
	case FieldBVN, FieldNIN:
		return strutil.TruncateDigits(raw, BVNLength)
	case FieldBankAccount:
		return strutil.TruncateDigits(raw, AccountNumberLength)
	default:
		return strings.TrimSpace(raw)
	}
}

// dispatchable reports whether a sanitized value is complete enough to send to
// its verification channel.
func (s *Session) dispatchable(kind FieldKind, value string) bool {
	switch kind {
	case FieldBVN:
		return len(value) == BVNLength
	case FieldNIN:
		return len(value) == NINLength
	case FieldBankAccount:
		return len(value) == AccountNumberLength && s.bankCode != ""
	case FieldBusinessRC:
		return len(value) >= MinRCSearchLength
	default:
		return false
	}
}

func (s *Session) debounceFor(kind FieldKind) time.Duration {
	if kind == FieldBusinessRC {
		return s.deps.Config.BusinessDebounce
	}
	return s.deps.Config.DigitDebounce
}

// ApplyFieldInput feeds the latest raw text of an identity field into the
// session. The value is sanitized, the field's verification state resets, any
// pending dispatch for the field is cancelled, and — when the value is
// complete — a fresh debounced verification is scheduled. Applying a value
// identical to the current one is a no-op so cursor movement and re-renders
// don't discard a verified state.
func (s *Session) ApplyFieldInput(kind FieldKind, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, ok := s.fields[kind]
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "field not part of this profile variant")
	}
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()

	value := sanitize(kind, raw)
	if value == field.RawValue {
		return nil
	}

	field.RawValue = value
	field.reset()
	s.dropDOB(kind)

	switch kind {
	case FieldBVN:
		// Editing the BVN invalidates the whole OTP exchange.
		s.otp.Reset()
		s.otpCode = ""
		s.otpMessage = ""
		s.otpGen++
	case FieldBankAccount:
		s.accountName = ""
	}

	gen := s.bumpGeneration(kind)
	if !s.dispatchable(kind, value) {
		return nil
	}
	s.schedule(kind, value, gen, s.debounceFor(kind))
	return nil
}

// dropDOB clears a channel-sourced date of birth when the channel's field is
// edited, so a stale extracted date never outlives its source digits.
func (s *Session) dropDOB(kind FieldKind) {
	switch {
	case kind == FieldBVN && s.draft.dateSource == dobBVN,
		kind == FieldNIN && s.draft.dateSource == dobNIN:
		s.draft.DateOfBirth = ""
		s.draft.dateSource = dobNone
	}
}

// bumpGeneration cancels any scheduled or in-flight dispatch for the field
// and returns the new current generation. Callers hold s.mu.
func (s *Session) bumpGeneration(kind FieldKind) uint64 {
	if t, ok := s.timers[kind]; ok {
		t.Stop()
		delete(s.timers, kind)
	}
	s.gens[kind]++
	return s.gens[kind]
}

// schedule arms the debounce timer for one dispatch. Callers hold s.mu.
func (s *Session) schedule(kind FieldKind, value string, gen uint64, after time.Duration) {
	s.timers[kind] = time.AfterFunc(after, func() {
		s.dispatch(kind, value, gen)
	})
}

// SelectBank records the user's bank choice. If the account number is already
// complete, resolution fires immediately; the debounce exists to absorb
// keystrokes, and a dropdown pick is a settled input.
func (s *Session) SelectBank(code string) error {
	bank, ok := BankByCode(code)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown bank code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()

	if s.bankCode == bank.Code {
		return nil
	}
	s.bankCode = bank.Code
	s.bankName = bank.Name
	s.accountName = ""

	field := s.fields[FieldBankAccount]
	field.reset()

	gen := s.bumpGeneration(FieldBankAccount)
	if s.dispatchable(FieldBankAccount, field.RawValue) {
		s.schedule(FieldBankAccount, field.RawValue, gen, 0)
	}
	return nil
}

// SetSelection records a dropdown choice. Gender and marital status are
// rejected for business drafts.
func (s *Session) SetSelection(field SelectionField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()

	if s.draft.Variant == VariantBusiness &&
		(field == SelectionGender || field == SelectionMaritalStatus) {
		return dErrors.New(dErrors.CodeInvalidInput, "selection not part of a business profile")
	}
	if !validOption(field, value) {
		return dErrors.New(dErrors.CodeInvalidInput, "value is not one of the allowed options")
	}
	s.draft.Selections[field] = value
	return nil
}

// SetManualName records the typed full name. It is the weakest name source:
// submission prefers channel-extracted name parts when any exist.
func (s *Session) SetManualName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()
	s.draft.ManualFullName = strings.TrimSpace(name)
	return nil
}

// SetDateOfBirth records a manually entered birth date. A channel-extracted
// date always wins; manual entry only fills the gap.
func (s *Session) SetDateOfBirth(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()
	if s.draft.dateSource > dobManual {
		return nil
	}
	s.draft.DateOfBirth = strings.TrimSpace(date)
	if s.draft.DateOfBirth != "" {
		s.draft.dateSource = dobManual
	} else {
		s.draft.dateSource = dobNone
	}
	return nil
}

// SetBusinessDetails records the manually supplied business fields. The
// registry-approved company name and incorporation date overwrite these when
// RC verification succeeds.
func (s *Session) SetBusinessDetails(companyName, incorporationDate, nature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Variant != VariantBusiness {
		return dErrors.New(dErrors.CodeInvalidInput, "not a business profile")
	}
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()

	rc := s.fields[FieldBusinessRC]
	if rc.State != StateVerified {
		if companyName != "" {
			s.draft.Business.CompanyName = strings.TrimSpace(companyName)
		}
		if incorporationDate != "" {
			s.draft.Business.IncorporationDate = strings.TrimSpace(incorporationDate)
		}
	}
	if nature != "" {
		s.draft.Business.NatureOfBusiness = strings.TrimSpace(nature)
	}
	return nil
}

// AttachCACDocument records the uploaded CAC certificate reference.
func (s *Session) AttachCACDocument(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Variant != VariantBusiness {
		return dErrors.New(dErrors.CodeInvalidInput, "not a business profile")
	}
	if s.draft.Locked {
		return dErrors.New(dErrors.CodeLocked, "profile already submitted")
	}
	s.touch()
	s.draft.Business.CACDocumentID = strings.TrimSpace(documentID)
	return nil
}

// Snapshot returns a consistent point-in-time view of the session, including
// the live aggregate-validation verdict.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	now := s.deps.Now()

	views := make([]FieldView, 0, len(s.fields))
	for _, kind := range requiredFields(s.draft.Variant) {
		f := s.fields[kind]
		views = append(views, FieldView{
			Kind:          f.Kind,
			Value:         f.RawValue,
			State:         f.State,
			ExtractedName: f.ExtractedName,
			ExtractedDate: f.ExtractedDate,
			Message:       f.Message,
		})
	}

	selections := make(map[string]string, len(s.draft.Selections))
	for k, v := range s.draft.Selections {
		selections[string(k)] = v
	}

	verdict := s.evaluateLocked(now)

	snap := Snapshot{
		ID:      s.ID,
		UserID:  s.UserID,
		Variant: s.draft.Variant,
		Fields:  views,
		OTP: OTPView{
			State:             s.otp.State(now),
			MaskedDestination: s.otp.MaskedDestination(),
			Message:           s.otpMessage,
		},
		Bank: BankView{
			Code:        s.bankCode,
			Name:        s.bankName,
			AccountName: s.accountName,
		},
		Selections:      selections,
		DateOfBirth:     s.draft.DateOfBirth,
		Locked:          s.draft.Locked,
		Submitting:      s.submitting,
		Valid:           verdict.Valid,
		BlockingReasons: verdict.BlockingReasons,
	}
	if s.draft.Variant == VariantBusiness {
		snap.Business = &BusinessView{
			CompanyName:       s.draft.Business.CompanyName,
			IncorporationDate: s.draft.Business.IncorporationDate,
			NatureOfBusiness:  s.draft.Business.NatureOfBusiness,
			CACAttached:       s.draft.Business.CACDocumentID != "",
		}
	}
	return snap
}

// shutdown stops every armed debounce timer. Called by the manager when the
// session is removed; in-flight dispatches finish but their results are
// discarded by the generation check.
func (s *Session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind, t := range s.timers {
		t.Stop()
		delete(s.timers, kind)
	}
	for kind := range s.gens {
		s.gens[kind]++
	}
	s.otpGen++
}

func (s *Session) emitAudit(action, channel, decision, reason string) {
	if s.deps.Audit == nil {
		return
	}
	_ = s.deps.Audit.Emit(context.Background(), audit.Event{
		Timestamp: s.deps.Now(),
		UserID:    s.UserID,
		SessionID: s.ID,
		Action:    action,
		Channel:   channel,
		Decision:  decision,
		Reason:    reason,
	})
}

func (s *Session) recordVerification(channel, outcome string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordVerification(channel, outcome)
	}
}

func (s *Session) recordOTPTransition(state otp.State) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordOTPTransition(string(state))
	}
}
