package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"learnhub/internal/domain"
	"learnhub/internal/models"
	"learnhub/pkg/currency"
	"learnhub/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentStore is the slice of the payment repository the services
// need. GetForStudent applies the ownership filter in the query.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetForStudent(ctx context.Context, id, studentID uint) (*models.Payment, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.Payment, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
}

type enrollmentActivator interface {
	Activate(ctx context.Context, studentID, courseID uint) (uint, error)
}

type rateConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*currency.Conversion, error)
}

type BuyerInfo struct {
	FullName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	Country    string
	PostalCode string
}

type InitiateParams struct {
	CourseID uint
	Amount   decimal.Decimal
	Currency string
	Method   string // card | mobile_bank
	Buyer    BuyerInfo
}

type InitiateResult struct {
	PaymentID    uint            `json:"payment_id"`
	Reference    string          `json:"reference"`
	CheckoutURL  string          `json:"checkout_url,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	AccessCode   string          `json:"access_code,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	RateFallback bool            `json:"rate_fallback,omitempty"`
}

type VerifyOutcome struct {
	Verified     bool
	EnrollmentID uint
}

// paymentMetadata is persisted as JSON on the payment row; the
// original ask and the conversion rate used are kept for disputes and
// reconciliation.
type paymentMetadata struct {
	RequestedAmount   string `json:"requested_amount"`
	RequestedCurrency string `json:"requested_currency"`
	ConversionRate    string `json:"conversion_rate,omitempty"`
	RateFallback      bool   `json:"rate_fallback,omitempty"`
}

// PaymentService orchestrates initiation and verification. Each call
// is stateless; all coordination happens through the store.
type PaymentService struct {
	payments       PaymentStore
	courses        CourseStore
	enrollments    enrollmentActivator
	providers      map[string]payment.Provider
	converter      rateConverter
	settleCurrency string // mobile/bank settlement currency
	clientBaseURL  string
	logger         *zap.Logger
}

func NewPaymentService(
	payments PaymentStore,
	courses CourseStore,
	enrollments enrollmentActivator,
	providers map[string]payment.Provider,
	converter rateConverter,
	settleCurrency, clientBaseURL string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:       payments,
		courses:        courses,
		enrollments:    enrollments,
		providers:      providers,
		converter:      converter,
		settleCurrency: settleCurrency,
		clientBaseURL:  clientBaseURL,
		logger:         logger,
	}
}

// Initiate creates the payment record and opens a charge with the
// selected processor. The PENDING row is inserted before the processor
// is called: a crash mid-flow can orphan a pending row, never a charge
// with no local record. A processor failure leaves the row PENDING for
// later reconciliation and is surfaced to the caller.
func (s *PaymentService) Initiate(ctx context.Context, studentID uint, params InitiateParams) (*InitiateResult, error) {
	if params.CourseID == 0 || params.Amount.LessThanOrEqual(decimal.Zero) ||
		params.Buyer.FullName == "" || params.Buyer.Email == "" {
		return nil, fmt.Errorf("%w: course, amount and buyer details are required", ErrInvalidRequest)
	}
	prov, ok := s.providers[params.Method]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidRequest, params.Method)
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}

	course, err := s.courses.GetByID(ctx, params.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course %d", ErrNotFound, params.CourseID)
		}
		return nil, fmt.Errorf("%w: load course: %v", ErrPersistence, err)
	}

	chargeAmount, chargeCurrency := params.Amount, params.Currency
	var conv *currency.Conversion
	if params.Method == domain.MethodMobileBank && chargeCurrency != s.settleCurrency {
		conv, err = s.converter.Convert(ctx, chargeAmount, chargeCurrency, s.settleCurrency)
		if err != nil {
			return nil, fmt.Errorf("currency conversion: %w", err)
		}
		chargeAmount, chargeCurrency = conv.Amount, s.settleCurrency
	}

	meta := paymentMetadata{
		RequestedAmount:   params.Amount.String(),
		RequestedCurrency: params.Currency,
	}
	if conv != nil {
		meta.ConversionRate = conv.Rate.String()
		meta.RateFallback = conv.FallbackUsed
	}
	metaJSON, _ := json.Marshal(meta)

	pay := &models.Payment{
		StudentID:         studentID,
		CourseID:          params.CourseID,
		FullName:          params.Buyer.FullName,
		Email:             params.Buyer.Email,
		Phone:             params.Buyer.Phone,
		Address:           params.Buyer.Address,
		City:              params.Buyer.City,
		State:             params.Buyer.State,
		Country:           params.Buyer.Country,
		PostalCode:        params.Buyer.PostalCode,
		Method:            params.Method,
		Amount:            chargeAmount,
		Currency:          chargeCurrency,
		RequestedAmount:   params.Amount,
		RequestedCurrency: params.Currency,
		Status:            domain.PaymentPending,
		IdempotencyKey:    uuid.NewString(),
		Metadata:          string(metaJSON),
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("%w: create payment: %v", ErrPersistence, err)
	}

	ref := domain.PaymentRefPrefix + strconv.FormatUint(uint64(pay.ID), 10)
	res, err := prov.InitiatePayment(ctx, payment.InitiateRequest{
		Reference:   ref,
		Amount:      chargeAmount,
		Currency:    chargeCurrency,
		Email:       params.Buyer.Email,
		FullName:    params.Buyer.FullName,
		Phone:       params.Buyer.Phone,
		Description: course.Title,
		SuccessURL:  s.clientBaseURL + "/payments/success",
		CancelURL:   s.clientBaseURL + "/payments/cancel",
	})
	if err != nil {
		s.logger.Error("processor initiate failed, payment left pending",
			zap.Uint("payment_id", pay.ID),
			zap.String("method", params.Method),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}

	fields := map[string]interface{}{"provider_ref": res.Reference}
	if res.AccessCode != "" {
		fields["access_code"] = res.AccessCode
	}
	if res.IntentID != "" {
		fields["intent_id"] = res.IntentID
	}
	if err := s.payments.UpdateFields(ctx, pay.ID, fields); err != nil {
		// A row without its processor reference cannot be verified
		// later; this needs operator attention, never silence.
		s.logger.Error("failed to store processor reference",
			zap.Uint("payment_id", pay.ID),
			zap.String("provider_ref", res.Reference),
			zap.Error(err))
		return nil, fmt.Errorf("%w: store processor reference: %v", ErrPersistence, err)
	}

	s.logger.Info("payment initiated",
		zap.Uint("payment_id", pay.ID),
		zap.String("method", params.Method),
		zap.String("amount", chargeAmount.String()),
		zap.String("currency", chargeCurrency),
		zap.Bool("rate_fallback", conv != nil && conv.FallbackUsed))

	out := &InitiateResult{
		PaymentID:    pay.ID,
		Reference:    res.Reference,
		CheckoutURL:  res.CheckoutURL,
		ClientSecret: res.ClientSecret,
		AccessCode:   res.AccessCode,
		Amount:       chargeAmount,
		Currency:     chargeCurrency,
	}
	if conv != nil {
		out.RateFallback = conv.FallbackUsed
	}
	return out, nil
}

// Verify re-confirms a payment server-to-server with its processor and
// activates the enrollment on success. claimRef is only a lookup hint
// for payments whose processor reference was never stored; it proves
// nothing by itself. A payment already COMPLETED is a fast-path
// success; FAILED is terminal.
func (s *PaymentService) Verify(ctx context.Context, studentID, paymentID uint, claimRef string) (*VerifyOutcome, error) {
	if paymentID == 0 {
		return nil, fmt.Errorf("%w: payment id is required", ErrInvalidRequest)
	}
	pay, err := s.payments.GetForStudent(ctx, paymentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("%w: load payment: %v", ErrPersistence, err)
	}

	switch pay.Status {
	case domain.PaymentCompleted:
		return s.completedFastPath(ctx, pay)
	case domain.PaymentFailed:
		return &VerifyOutcome{Verified: false}, nil
	}

	prov, ok := s.providers[pay.Method]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for method %q", ErrProcessor, pay.Method)
	}
	ref := pay.ProviderRef
	if ref == "" {
		ref = claimRef
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: payment has no processor reference", ErrInvalidRequest)
	}

	res, err := prov.VerifyPayment(ctx, ref)
	if err != nil {
		// The processor is authoritative: an inability to confirm is a
		// negative confirmation, not an unknown.
		s.logger.Warn("processor verify errored, treating as not verified",
			zap.Uint("payment_id", pay.ID),
			zap.String("reference", ref),
			zap.Error(err))
		res = &payment.VerifyResult{Verified: false, Status: "processor_error"}
	}

	if !res.Verified {
		if err := s.payments.UpdateFields(ctx, pay.ID, map[string]interface{}{
			"status": domain.PaymentFailed,
		}); err != nil {
			return nil, fmt.Errorf("%w: mark payment failed: %v", ErrPersistence, err)
		}
		s.logger.Info("payment verification negative",
			zap.Uint("payment_id", pay.ID),
			zap.String("processor_status", res.Status))
		return &VerifyOutcome{Verified: false}, nil
	}

	now := time.Now()
	fields := map[string]interface{}{
		"status":       domain.PaymentCompleted,
		"completed_at": now,
	}
	if res.TransactionID != "" && pay.TransactionID == "" {
		fields["transaction_id"] = res.TransactionID
	}
	if pay.ProviderRef == "" {
		fields["provider_ref"] = ref
	}
	if err := s.payments.UpdateFields(ctx, pay.ID, fields); err != nil {
		return nil, fmt.Errorf("%w: mark payment completed: %v", ErrPersistence, err)
	}

	enrID, err := s.enrollments.Activate(ctx, pay.StudentID, pay.CourseID)
	if err != nil {
		// Completed payment with no enrollment: the next verify call
		// heals this via the fast path, but it still warrants a loud log.
		s.logger.Error("payment completed but enrollment activation failed",
			zap.Uint("payment_id", pay.ID),
			zap.Error(err))
		return nil, err
	}
	if err := s.payments.UpdateFields(ctx, pay.ID, map[string]interface{}{
		"enrollment_id": enrID,
	}); err != nil {
		return nil, fmt.Errorf("%w: link enrollment: %v", ErrPersistence, err)
	}

	s.logger.Info("payment verified, enrollment active",
		zap.Uint("payment_id", pay.ID),
		zap.Uint("enrollment_id", enrID),
		zap.String("transaction_id", res.TransactionID))
	return &VerifyOutcome{Verified: true, EnrollmentID: enrID}, nil
}

// completedFastPath reports success for an already-completed payment
// without another processor round-trip. If the earlier run crashed
// between completing the payment and linking the enrollment, the
// activation is re-run here; it is idempotent.
func (s *PaymentService) completedFastPath(ctx context.Context, pay *models.Payment) (*VerifyOutcome, error) {
	if pay.EnrollmentID != nil {
		return &VerifyOutcome{Verified: true, EnrollmentID: *pay.EnrollmentID}, nil
	}
	enrID, err := s.enrollments.Activate(ctx, pay.StudentID, pay.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.payments.UpdateFields(ctx, pay.ID, map[string]interface{}{
		"enrollment_id": enrID,
	}); err != nil {
		return nil, fmt.Errorf("%w: link enrollment: %v", ErrPersistence, err)
	}
	s.logger.Info("healed enrollment link for completed payment",
		zap.Uint("payment_id", pay.ID),
		zap.Uint("enrollment_id", enrID))
	return &VerifyOutcome{Verified: true, EnrollmentID: enrID}, nil
}

// ListForStudent returns the caller's payments, newest first.
func (s *PaymentService) ListForStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	return s.payments.ListByStudent(ctx, studentID)
}
