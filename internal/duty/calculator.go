// Package duty computes the itemized duty and fee breakdown for an entry.
// The calculation is pure: no I/O, deterministic for identical inputs.
package duty

import (
	"fmt"
	"math"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
)

// Config holds the regulatory fee constants. These are statutory values
// that change over time, so they are configuration rather than literals;
// the clamp semantics are fixed.
type Config struct {
	MerchandiseFeeRate float64
	MerchandiseFeeMin  float64
	MerchandiseFeeMax  float64
	HarborFeeRate      float64
}

// DefaultConfig returns the fee constants currently in force:
// merchandise processing fee of 0.3464% clamped to [29.66, 575.16] and
// harbor maintenance fee of 0.125%, unclamped.
func DefaultConfig() Config {
	return Config{
		MerchandiseFeeRate: 0.003464,
		MerchandiseFeeMin:  29.66,
		MerchandiseFeeMax:  575.16,
		HarborFeeRate:      0.00125,
	}
}

// Calculator converts an entered value and a rate set into a DutyLineItem.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given fee constants.
func NewCalculator(cfg Config) (*Calculator, error) {
	if cfg.MerchandiseFeeRate < 0 || cfg.HarborFeeRate < 0 {
		return nil, fmt.Errorf("%w: fee rates must be non-negative", common.ErrInvalidConfig)
	}
	if cfg.MerchandiseFeeMin > cfg.MerchandiseFeeMax {
		return nil, fmt.Errorf("%w: merchandise fee floor %v above ceiling %v",
			common.ErrInvalidConfig, cfg.MerchandiseFeeMin, cfg.MerchandiseFeeMax)
	}
	return &Calculator{cfg: cfg}, nil
}

// Compute produces the full breakdown for an entered value and the three
// ad-valorem percentage rates. Negative or non-finite inputs are a caller
// contract violation and fail fast; a silently negative payable amount
// must never be produced.
func (c *Calculator) Compute(value, basicRate, remedyRate, otherRate float64) (model.DutyLineItem, error) {
	for _, v := range []float64{value, basicRate, remedyRate, otherRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.DutyLineItem{}, fmt.Errorf("%w: non-finite input", common.ErrInvalidInput)
		}
		if v < 0 {
			return model.DutyLineItem{}, fmt.Errorf("%w: negative input", common.ErrInvalidInput)
		}
	}

	// The zero-value clamp is deliberate: an entry with no declared value
	// still attracts the minimum merchandise processing fee.
	mpf := clamp(value*c.cfg.MerchandiseFeeRate, c.cfg.MerchandiseFeeMin, c.cfg.MerchandiseFeeMax)

	return model.DutyLineItem{
		EnteredValue:    value,
		BasicDuty:       value * basicRate / 100,
		TradeRemedyDuty: value * remedyRate / 100,
		OtherDuty:       value * otherRate / 100,
		MerchandiseFee:  mpf,
		HarborFee:       value * c.cfg.HarborFeeRate,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
