package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fallback rates, one entry per supported pair. A stale fallback is
// preferred to blocking a purchase; a pair with no entry is a
// configuration gap and fails loudly instead of defaulting to 1.
var fallbackRates = map[string]decimal.Decimal{
	"USD:NGN": decimal.NewFromInt(1650),
}

// Conversion reports how an amount was converted. FallbackUsed is
// surfaced to the caller and persisted in payment metadata so degraded
// conversions can be reconciled later.
type Conversion struct {
	Amount       decimal.Decimal
	Rate         decimal.Decimal
	FallbackUsed bool
}

// Converter converts between currencies using a live rate endpoint
// (er-api style rate table keyed by currency code) with an optional
// Redis rate cache in front of it.
type Converter struct {
	BaseURL string
	client  *http.Client
	cache   *redis.Client // nil disables caching
	ttl     time.Duration
	logger  *zap.Logger
}

func NewConverter(baseURL string, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Converter {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Converter{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Convert converts amount from one currency to another, rounding the
// result to 2 decimal places. Same-currency conversions return the
// amount unchanged at rate 1. For the supported pair a failed live
// lookup degrades to the fixed fallback rate; unsupported pairs error.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	if from == to {
		return &Conversion{Amount: amount, Rate: decimal.NewFromInt(1)}, nil
	}
	rate, err := c.liveRate(ctx, from, to)
	if err == nil {
		c.logger.Info("currency conversion via live rate",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("rate", rate.String()))
		return &Conversion{Amount: amount.Mul(rate).Round(2), Rate: rate}, nil
	}
	fallback, ok := fallbackRates[from+":"+to]
	if !ok {
		return nil, fmt.Errorf("convert %s->%s: live lookup failed and no fallback rate configured: %w", from, to, err)
	}
	c.logger.Warn("currency conversion degraded to fallback rate",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("rate", fallback.String()),
		zap.Error(err))
	return &Conversion{Amount: amount.Mul(fallback).Round(2), Rate: fallback, FallbackUsed: true}, nil
}

type rateTable struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (c *Converter) liveRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if r, ok := c.cachedRate(ctx, from, to); ok {
		return r, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+from, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate lookup: %d", resp.StatusCode)
	}
	var table rateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return decimal.Zero, fmt.Errorf("rate lookup: %w", err)
	}
	raw, ok := table.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate lookup: no %s rate in %s table", to, from)
	}
	rate := decimal.NewFromFloat(raw)
	c.storeRate(ctx, from, to, rate)
	return rate, nil
}

func rateKey(from, to string) string {
	return "fx:" + from + ":" + to
}

func (c *Converter) cachedRate(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	if c.cache == nil {
		return decimal.Zero, false
	}
	val, err := c.cache.Get(ctx, rateKey(from, to)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("rate cache read failed", zap.Error(err))
		}
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

func (c *Converter) storeRate(ctx context.Context, from, to string, rate decimal.Decimal) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, rateKey(from, to), rate.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("rate cache write failed", zap.Error(err))
	}
}
