package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// InitiateRequest is the normalized charge request handed to a
// processor adapter. Reference is our side's correlation id; adapters
// that issue their own reference (card checkout sessions) may ignore it
// and return theirs instead.
type InitiateRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Email       string
	FullName    string
	Phone       string
	Description string
	SuccessURL  string
	CancelURL   string
}

// InitiateResponse carries whichever correlation fields the processor
// issued; unused fields stay empty.
type InitiateResponse struct {
	Reference    string // reference the processor will answer verify calls for
	AccessCode   string // mobile/bank access code
	CheckoutURL  string // hosted checkout redirect
	ClientSecret string // card payment-intent client secret
	IntentID     string // card payment-intent id
	Status       string
}

// VerifyResult is the outcome of a server-to-server status query.
// Verified is authoritative; TransactionID is the processor-side
// transaction id when the processor reports one.
type VerifyResult struct {
	Verified      bool
	TransactionID string
	Status        string // raw processor status, for logging
}

// Provider is implemented once per payment processor. VerifyPayment
// must never trust client-supplied claims; it queries the processor
// directly. A malformed or non-2xx verify response maps to
// Verified=false rather than an error so payment state is never
// corrupted by a flaky processor read.
type Provider interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error)
}

// MinorUnits converts a major-unit amount to the processor's minor
// unit (e.g. 1500.50 NGN -> 150050 kobo).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
