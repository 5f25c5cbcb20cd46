package session

import (
	"scoutpay/internal/verification/otp"
)

// FieldKind identifies one piece of identity evidence.
type FieldKind string

const (
	FieldBVN         FieldKind = "bvn"
	FieldNIN         FieldKind = "nin"
	FieldBankAccount FieldKind = "bank_account"
	FieldBusinessRC  FieldKind = "business_rc"
)

// Fixed input lengths for the digit fields.
const (
	BVNLength           = 11
	NINLength           = 11
	AccountNumberLength = 10
	MinRCSearchLength   = 3
)

// FieldState is the verification lifecycle of an identity field.
// Transitions are Unverified → Pending → {Verified, Failed}; any edit to the
// raw value returns the field to Unverified.
type FieldState string

const (
	StateUnverified FieldState = "unverified"
	StatePending    FieldState = "pending"
	StateVerified   FieldState = "verified"
	StateFailed     FieldState = "failed"
)

// IdentityField is one piece of identity evidence supplied by the user.
type IdentityField struct {
	Kind     FieldKind
	RawValue string
	State    FieldState

	// Extracted identity data from the verification channel. Cleared on any
	// edit to RawValue; no stale verified data survives an edit.
	ExtractedName  string
	ExtractedFirst string
	ExtractedMid   string
	ExtractedLast  string
	ExtractedDate  string

	// Message is the user-facing failure description when State is Failed.
	Message string
}

// reset returns the field to Unverified and discards extracted data.
func (f *IdentityField) reset() {
	f.State = StateUnverified
	f.ExtractedName = ""
	f.ExtractedFirst = ""
	f.ExtractedMid = ""
	f.ExtractedLast = ""
	f.ExtractedDate = ""
	f.Message = ""
}

// Variant selects the shape of the wallet profile being drafted.
type Variant string

const (
	VariantIndividual Variant = "individual"
	VariantBusiness   Variant = "business"
)

// SelectionField names a dropdown in the profile form.
type SelectionField string

const (
	SelectionTitle         SelectionField = "title"
	SelectionGender        SelectionField = "gender"
	SelectionMaritalStatus SelectionField = "marital_status"
	SelectionCountry       SelectionField = "country"
)

// dobSource records which channel populated the shared date-of-birth field.
// BVN takes priority over NIN; manual entry is the weakest source.
type dobSource int

const (
	dobNone dobSource = iota
	dobManual
	dobNIN
	dobBVN
)

// BusinessData holds the business-variant profile fields, a mix of
// registry-extracted and manually-entered values.
type BusinessData struct {
	CompanyName       string
	IncorporationDate string
	NatureOfBusiness  string
	CACDocumentID     string
}

// ProfileDraft is the in-progress wallet profile for one session.
// A business draft never carries gender or marital-status selections; the
// selection setters enforce this.
type ProfileDraft struct {
	Variant        Variant
	Selections     map[SelectionField]string
	ManualFullName string
	DateOfBirth    string
	Business       BusinessData
	Locked         bool

	dateSource dobSource
}

// FieldView is the externally visible state of one identity field.
type FieldView struct {
	Kind          FieldKind  `json:"kind"`
	Value         string     `json:"value"`
	State         FieldState `json:"state"`
	ExtractedName string     `json:"extractedName,omitempty"`
	ExtractedDate string     `json:"extractedDate,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// OTPView is the externally visible state of the BVN OTP exchange.
type OTPView struct {
	State             otp.State `json:"state"`
	MaskedDestination string    `json:"maskedDestination,omitempty"`
	Message           string    `json:"message,omitempty"`
}

// BankView is the current bank selection and resolved account name.
type BankView struct {
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	AccountName string `json:"accountName,omitempty"`
}

// BusinessView is the externally visible business draft data.
type BusinessView struct {
	CompanyName       string `json:"companyName,omitempty"`
	IncorporationDate string `json:"incorporationDate,omitempty"`
	NatureOfBusiness  string `json:"natureOfBusiness,omitempty"`
	CACAttached       bool   `json:"cacAttached"`
}

// Snapshot is a point-in-time view of the whole session, including the live
// aggregate-validation verdict.
type Snapshot struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Variant         Variant           `json:"variant"`
	Fields          []FieldView       `json:"fields"`
	OTP             OTPView           `json:"otp"`
	Bank            BankView          `json:"bank"`
	Selections      map[string]string `json:"selections"`
	DateOfBirth     string            `json:"dateOfBirth,omitempty"`
	Business        *BusinessView     `json:"business,omitempty"`
	Locked          bool              `json:"locked"`
	Submitting      bool              `json:"submitting"`
	Valid           bool              `json:"valid"`
	BlockingReasons []string          `json:"blockingReasons"`
}

// requiredFields returns the identity fields a variant must verify.
func requiredFields(v Variant) []FieldKind {
	if v == VariantBusiness {
		return []FieldKind{FieldBusinessRC, FieldBankAccount}
	}
	return []FieldKind{FieldBVN, FieldNIN, FieldBankAccount}
}
