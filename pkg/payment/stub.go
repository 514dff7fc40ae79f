package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StubProvider stands in for a real processor when no secret keys are
// configured (local development). Initiation always succeeds and
// verification accepts only references it issued.
type StubProvider struct{}

func (s *StubProvider) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	ref := fmt.Sprintf("stub_%s_%d", req.Reference, time.Now().UnixNano())
	return &InitiateResponse{
		Reference:   ref,
		CheckoutURL: "https://example.invalid/checkout/" + ref,
		Status:      "PENDING",
	}, nil
}

func (s *StubProvider) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.HasPrefix(reference, "stub_") {
		return &VerifyResult{Verified: true, TransactionID: reference, Status: "success"}, nil
	}
	return &VerifyResult{Verified: false, Status: "unknown_reference"}, nil
}
