package payment

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"
)

const (
	StripeModeCheckout = "checkout"
	StripeModeIntent   = "intent"
)

// StripeProvider charges cards either through a hosted checkout
// session (redirect URL) or a payment intent (client secret), per
// Mode. Both sub-modes verify the same way: retrieve by id and map the
// native status to a boolean.
type StripeProvider struct {
	Mode   string
	logger *zap.Logger
}

func NewStripeProvider(secretKey, mode string, logger *zap.Logger) *StripeProvider {
	stripe.Key = secretKey
	if mode != StripeModeIntent {
		mode = StripeModeCheckout
	}
	return &StripeProvider{Mode: mode, logger: logger}
}

func (p *StripeProvider) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if p.Mode == StripeModeIntent {
		return p.initiateIntent(ctx, req)
	}
	return p.initiateCheckout(ctx, req)
}

func (p *StripeProvider) initiateCheckout(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(MinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		CustomerEmail:     stripe.String(req.Email),
		ClientReferenceID: stripe.String(req.Reference),
	}
	params.Context = ctx
	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	p.logger.Info("stripe checkout session created",
		zap.String("session_id", s.ID),
		zap.String("reference", req.Reference))
	return &InitiateResponse{
		Reference:   s.ID,
		CheckoutURL: s.URL,
		Status:      string(s.Status),
	}, nil
}

func (p *StripeProvider) initiateIntent(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(MinorUnits(req.Amount)),
		Currency:     stripe.String(strings.ToLower(req.Currency)),
		ReceiptEmail: stripe.String(req.Email),
		Description:  stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	p.logger.Info("stripe payment intent created",
		zap.String("intent_id", pi.ID),
		zap.String("reference", req.Reference))
	return &InitiateResponse{
		Reference:    pi.ID,
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// VerifyPayment retrieves the session or intent named by reference and
// maps "paid"/"succeeded" to true. Retrieval errors read as not
// verified rather than propagating, so a flaky processor read never
// corrupts payment state.
func (p *StripeProvider) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.HasPrefix(reference, "pi_") {
		return p.verifyIntent(ctx, reference)
	}
	return p.verifySession(ctx, reference)
}

func (p *StripeProvider) verifySession(ctx context.Context, id string) (*VerifyResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(id, params)
	if err != nil {
		p.logger.Warn("stripe session retrieve failed", zap.String("session_id", id), zap.Error(err))
		return &VerifyResult{Verified: false, Status: "retrieve_failed"}, nil
	}
	verified := s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	res := &VerifyResult{Verified: verified, Status: string(s.PaymentStatus)}
	if s.PaymentIntent != nil {
		res.TransactionID = s.PaymentIntent.ID
	}
	p.logger.Info("stripe session verify",
		zap.String("session_id", id),
		zap.String("payment_status", string(s.PaymentStatus)),
		zap.Bool("verified", verified))
	return res, nil
}

func (p *StripeProvider) verifyIntent(ctx context.Context, id string) (*VerifyResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		p.logger.Warn("stripe intent retrieve failed", zap.String("intent_id", id), zap.Error(err))
		return &VerifyResult{Verified: false, Status: "retrieve_failed"}, nil
	}
	verified := pi.Status == stripe.PaymentIntentStatusSucceeded
	p.logger.Info("stripe intent verify",
		zap.String("intent_id", id),
		zap.String("status", string(pi.Status)),
		zap.Bool("verified", verified))
	return &VerifyResult{Verified: verified, TransactionID: pi.ID, Status: string(pi.Status)}, nil
}
