package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConverter(t *testing.T, handler http.HandlerFunc) *Converter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewConverter(srv.URL, nil, time.Hour, zap.NewNop())
}

func TestConvert_SameCurrency(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no lookup expected for same-currency conversion")
	})
	conv, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, "100", conv.Amount.String())
	assert.Equal(t, "1", conv.Rate.String())
	assert.False(t, conv.FallbackUsed)
}

func TestConvert_LiveRate(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","rates":{"NGN":1600,"EUR":0.92}}`))
	})
	conv, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "NGN")
	require.NoError(t, err)
	assert.Equal(t, "160000", conv.Amount.String())
	assert.Equal(t, "1600", conv.Rate.String())
	assert.False(t, conv.FallbackUsed)
}

func TestConvert_FallbackOnLookupFailure(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	conv, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "NGN")
	require.NoError(t, err)
	assert.Equal(t, "165000", conv.Amount.String())
	assert.Equal(t, "1650", conv.Rate.String())
	assert.True(t, conv.FallbackUsed)
}

func TestConvert_FallbackOnMissingRate(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"EUR":0.92}}`))
	})
	conv, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "NGN")
	require.NoError(t, err)
	assert.True(t, conv.FallbackUsed)
	assert.Equal(t, "165000", conv.Amount.String())
}

func TestConvert_UnsupportedPairFailsLoudly(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Convert(context.Background(), decimal.NewFromInt(100), "EUR", "NGN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fallback rate")
}

func TestConvert_MalformedResponseFallsBack(t *testing.T) {
	c := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	conv, err := c.Convert(context.Background(), decimal.NewFromInt(50), "USD", "NGN")
	require.NoError(t, err)
	assert.True(t, conv.FallbackUsed)
	assert.Equal(t, "82500", conv.Amount.String())
}
