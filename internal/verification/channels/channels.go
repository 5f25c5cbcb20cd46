// Package channels defines the common contract for the external identity
// verification channels (BVN, NIN, bank account, business registry).
//
// Each channel wraps one remote verification call and normalizes its
// heterogeneous response shape into a Result at the boundary. Channels never
// panic past their boundary and never leak raw transport errors; callers
// branch on the structured Result or on a ChannelError category.
package channels

import "context"

// Kind identifies a verification channel.
type Kind string

const (
	KindBVN         Kind = "bvn"
	KindNIN         Kind = "nin"
	KindBankAccount Kind = "bank_account"
	KindBusiness    Kind = "business"
)

// Result is the normalized outcome of any verification channel call.
// It is a transient value, never persisted.
type Result struct {
	Success bool

	// Structured name parts, when the channel returns them.
	FirstName  string
	MiddleName string
	LastName   string

	// FullName is the non-empty name parts joined with single spaces, or the
	// registry-approved business name for the business channel.
	FullName string

	// Date is the canonical YYYY-MM-DD birth date (individuals) or
	// incorporation date (businesses), when the channel returns one.
	Date string

	// AccountName is set by the bank account channel only.
	AccountName string

	// NatureOfBusiness is set by the business channel when present.
	NatureOfBusiness string

	// Message carries the channel's human-readable failure description when
	// Success is false.
	Message string
}

// Challenge is the live handle of a BVN OTP exchange.
type Challenge struct {
	SessionHandle     string
	MaskedDestination string
}

// BVNChannel is the two-phase BVN verification contract.
type BVNChannel interface {
	InitiateChallenge(ctx context.Context, bvn, phoneNumber string) (*Challenge, error)
	SubmitCode(ctx context.Context, sessionHandle, code string) (*Result, error)
}

// NINChannel verifies a national identification number in one call.
type NINChannel interface {
	Verify(ctx context.Context, nin string) (*Result, error)
}

// BankAccountChannel resolves an account number to an account name.
// The bank code must already be resolved from a bank selection.
type BankAccountChannel interface {
	Resolve(ctx context.Context, bankCode, bankName, accountNumber string) (*Result, error)
}

// BusinessChannel searches the business registry by RC number or name.
type BusinessChannel interface {
	Search(ctx context.Context, searchTerm string) (*Result, error)
}

// HealthChecker is implemented by channels that can probe their backing service.
type HealthChecker interface {
	Health(ctx context.Context) error
}
