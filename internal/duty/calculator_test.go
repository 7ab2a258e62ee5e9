package duty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestComputeZeroValue(t *testing.T) {
	c := newTestCalculator(t)

	item, err := c.Compute(0, 2.5, 7.5, 0)
	require.NoError(t, err)

	assert.Equal(t, "0.00", model.Amount(item.BasicDuty))
	assert.Equal(t, "0.00", model.Amount(item.TradeRemedyDuty))
	assert.Equal(t, "0.00", model.Amount(item.OtherDuty))
	assert.Equal(t, "0.00", model.Amount(item.TotalDuty()))
	// A zero-value entry still snaps up to the merchandise fee floor.
	assert.Equal(t, "29.66", model.Amount(item.MerchandiseFee))
	assert.Equal(t, "0.00", model.Amount(item.HarborFee))
	assert.Equal(t, "29.66", model.Amount(item.TotalPayable()))
}

func TestComputeCeilingClamp(t *testing.T) {
	c := newTestCalculator(t)

	item, err := c.Compute(1_000_000, 2.5, 7.5, 0)
	require.NoError(t, err)

	assert.Equal(t, "25000.00", model.Amount(item.BasicDuty))
	assert.Equal(t, "75000.00", model.Amount(item.TradeRemedyDuty))
	assert.Equal(t, "100000.00", model.Amount(item.TotalDuty()))
	// 1,000,000 x 0.003464 = 3464.00, above the statutory ceiling.
	assert.Equal(t, "575.16", model.Amount(item.MerchandiseFee))
	assert.Equal(t, "1250.00", model.Amount(item.HarborFee))
	assert.Equal(t, "101825.16", model.Amount(item.TotalPayable()))
}

func TestComputeMidRangeFee(t *testing.T) {
	c := newTestCalculator(t)

	// 50,000 x 0.003464 = 173.20, between floor and ceiling.
	item, err := c.Compute(50_000, 0, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "173.20", model.Amount(item.MerchandiseFee))
	assert.Equal(t, "62.50", model.Amount(item.HarborFee))
}

func TestComputeTotalsRecomputed(t *testing.T) {
	c := newTestCalculator(t)

	item, err := c.Compute(5100, 2.5, 7.5, 1.25)
	require.NoError(t, err)

	assert.InDelta(t, item.BasicDuty+item.TradeRemedyDuty+item.OtherDuty, item.TotalDuty(), 1e-9)
	assert.InDelta(t, item.MerchandiseFee+item.HarborFee, item.TotalOtherFees(), 1e-9)
	assert.InDelta(t, item.TotalDuty()+item.TotalOtherFees(), item.TotalPayable(), 1e-9)
}

func TestComputeDeterministic(t *testing.T) {
	c := newTestCalculator(t)

	first, err := c.Compute(12345.67, 3.1, 25, 0.5)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := c.Compute(12345.67, 3.1, 25, 0.5)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeContractViolations(t *testing.T) {
	c := newTestCalculator(t)

	tests := []struct {
		name                            string
		value, basic, remedy, otherRate float64
	}{
		{name: "negative value", value: -1, basic: 2.5},
		{name: "negative rate", value: 100, basic: -2.5},
		{name: "NaN value", value: math.NaN()},
		{name: "infinite rate", value: 100, remedy: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compute(tt.value, tt.basic, tt.remedy, tt.otherRate)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestNewCalculatorInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MerchandiseFeeMin = 1000
	cfg.MerchandiseFeeMax = 100

	_, err := NewCalculator(cfg)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
