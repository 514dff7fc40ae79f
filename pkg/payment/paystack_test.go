package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaystackInitiate_SendsMinorUnitsAndReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		var body struct {
			Email     string `json:"email"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			Reference string `json:"reference"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(150050), body.Amount) // 1500.50 NGN in kobo
		assert.Equal(t, "NGN", body.Currency)
		assert.Equal(t, "lh-42", body.Reference)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc123",
			"access_code":"abc123",
			"reference":"lh-42"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_abc", zap.NewNop())
	res, err := p.InitiatePayment(context.Background(), InitiateRequest{
		Reference: "lh-42",
		Amount:    decimal.RequireFromString("1500.50"),
		Currency:  "NGN",
		Email:     "student@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "lh-42", res.Reference)
	assert.Equal(t, "abc123", res.AccessCode)
	assert.Equal(t, "https://checkout.paystack.com/abc123", res.CheckoutURL)
}

func TestPaystackInitiate_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "bad", zap.NewNop())
	_, err := p.InitiatePayment(context.Background(), InitiateRequest{
		Reference: "lh-1",
		Amount:    decimal.NewFromInt(100),
		Currency:  "NGN",
		Email:     "s@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paystack initialize")
}

func TestPaystackVerify_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/lh-42", r.URL.Path)
		w.Write([]byte(`{"status":true,"data":{"id":987654,"status":"success","amount":150050,"currency":"NGN"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_abc", zap.NewNop())
	res, err := p.VerifyPayment(context.Background(), "lh-42")
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "987654", res.TransactionID)
	assert.Equal(t, "success", res.Status)
}

func TestPaystackVerify_FailedStatusNotVerified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":{"id":987655,"status":"abandoned"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_abc", zap.NewNop())
	res, err := p.VerifyPayment(context.Background(), "lh-43")
	require.NoError(t, err)
	assert.False(t, res.Verified)
}

func TestPaystackVerify_Non200IsNotVerifiedNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_abc", zap.NewNop())
	res, err := p.VerifyPayment(context.Background(), "lh-missing")
	require.NoError(t, err)
	assert.False(t, res.Verified)
}

func TestPaystackVerify_MalformedBodyIsNotVerifiedNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_abc", zap.NewNop())
	res, err := p.VerifyPayment(context.Background(), "lh-44")
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Equal(t, "malformed", res.Status)
}
