package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PaystackProvider charges via Paystack's transaction-initialize /
// transaction-verify REST endpoints. Amounts are sent in kobo (minor
// units); the reference is ours, so verify-by-reference always maps
// back to exactly one local payment.
type PaystackProvider struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
	logger    *zap.Logger
}

func NewPaystackProvider(baseURL, secretKey string, logger *zap.Logger) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

type paystackInitReq struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo
	Currency    string `json:"currency,omitempty"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	payload := paystackInitReq{
		Email:       req.Email,
		Amount:      MinorUnits(req.Amount),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.SuccessURL,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	p.logger.Info("paystack initialize",
		zap.String("reference", req.Reference),
		zap.Int64("amount_kobo", payload.Amount),
		zap.String("currency", req.Currency))
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack initialize: %d %s", resp.StatusCode, string(respBody))
	}
	var out paystackInitResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack initialize: %s", out.Message)
	}
	return &InitiateResponse{
		Reference:   out.Data.Reference,
		AccessCode:  out.Data.AccessCode,
		CheckoutURL: out.Data.AuthorizationURL,
		Status:      "PENDING",
	}, nil
}

type paystackVerifyResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// VerifyPayment queries transaction/verify/:reference. Anything other
// than a clean 200 with data.status == "success" reads as not
// verified; the caller decides what that does to the payment row.
func (p *PaystackProvider) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("paystack verify non-200",
			zap.String("reference", reference),
			zap.Int("status_code", resp.StatusCode))
		return &VerifyResult{Verified: false, Status: "http_" + strconv.Itoa(resp.StatusCode)}, nil
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		p.logger.Warn("paystack verify malformed response", zap.String("reference", reference))
		return &VerifyResult{Verified: false, Status: "malformed"}, nil
	}
	verified := out.Status && strings.EqualFold(out.Data.Status, "success")
	p.logger.Info("paystack verify",
		zap.String("reference", reference),
		zap.String("processor_status", out.Data.Status),
		zap.Bool("verified", verified))
	return &VerifyResult{
		Verified:      verified,
		TransactionID: strconv.FormatInt(out.Data.ID, 10),
		Status:        out.Data.Status,
	}, nil
}
