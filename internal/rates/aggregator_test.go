package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/service"
)

// stubSource is a fixed-answer rate source for tests.
type stubSource struct {
	err   error
	name  string
	note  string
	rate  float64
	delay time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(ctx context.Context, _, _ string) (service.RateResult, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return service.RateResult{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return service.RateResult{}, s.err
	}
	return service.RateResult{Rate: s.rate, Note: s.note}, nil
}

func aggregatorCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]model.TariffRecord{
		{Code: "9401.61.0000", Description: "Upholstered seats", BaseRate: "2.5%", Embedding: []float32{1}},
		{Code: "3304.10.0000", Description: "Lipstick", BaseRate: "Free", Embedding: []float32{0.5}},
	})
	require.NoError(t, err)
	return c
}

func newTestAggregator(t *testing.T, remedy, emergency, reciprocal service.RateSource) *Aggregator {
	t.Helper()
	agg, err := New(aggregatorCatalog(t), remedy, emergency, reciprocal, nil)
	require.NoError(t, err)
	return agg
}

func sourceByName(t *testing.T, set *model.RateSet, name string) model.SourceResult {
	t.Helper()
	for _, s := range set.Sources {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("source %q not in provenance", name)
	return model.SourceResult{}
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)

	_, err = New(empty, nil, nil, nil, nil)
	assert.ErrorIs(t, err, common.ErrEmptyCatalog)

	_, err = New(nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, common.ErrEmptyCatalog)
}

func TestAggregateAllSourcesSucceed(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "CN")

	assert.Equal(t, "success", set.Status)
	assert.InDelta(t, 2.5, set.BaseRate, 1e-9)
	assert.InDelta(t, 7.5, set.TradeRemedyRate, 1e-9)
	assert.InDelta(t, 20, set.EmergencyRate, 1e-9)
	assert.InDelta(t, 125, set.ReciprocalRate, 1e-9)
	assert.InDelta(t, 155, set.TotalRate(), 1e-9)
	assert.Len(t, set.Sources, 4)
}

func TestAggregateTotalIsSumOfSources(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "CN")

	var sum float64
	for _, s := range set.Sources {
		sum += s.Rate
	}
	assert.InDelta(t, sum, set.TotalRate(), 1e-9)
}

func TestAggregateSingleSourceFailureIsIsolated(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, err: errors.New("search timed out")},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "CN")

	// The aggregate still succeeds; the failed source contributes exactly 0.
	assert.Equal(t, "success", set.Status)
	assert.Zero(t, set.TradeRemedyRate)
	assert.InDelta(t, 2.5+20+125, set.TotalRate(), 1e-9)

	remedy := sourceByName(t, set, model.SourceTradeRemedy)
	assert.False(t, remedy.Succeeded)
	assert.Contains(t, remedy.Note, "timed out")

	emergency := sourceByName(t, set, model.SourceEmergency)
	assert.True(t, emergency.Succeeded)
	assert.InDelta(t, 20, emergency.Rate, 1e-9)
}

func TestAggregateAllExternalSourcesFail(t *testing.T) {
	boom := errors.New("unreachable")
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, err: boom},
		&stubSource{name: model.SourceEmergency, err: boom},
		&stubSource{name: model.SourceReciprocal, err: boom})

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "CN")

	assert.Equal(t, "success", set.Status)
	assert.InDelta(t, 2.5, set.TotalRate(), 1e-9, "base rate survives external failures")
	for _, name := range []string{model.SourceTradeRemedy, model.SourceEmergency, model.SourceReciprocal} {
		assert.False(t, sourceByName(t, set, name).Succeeded)
	}
}

func TestAggregateUnsupportedCountry(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "DE")

	assert.Zero(t, set.TotalRate())
	assert.Empty(t, set.Sources, "external sources must not be invoked")
	assert.Contains(t, set.Status, "only CN imports are supported")
}

func TestAggregateUnknownCode(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 0})

	set := agg.Aggregate(context.Background(), "0101.21.0000", "horses", "CN")

	assert.Zero(t, set.BaseRate)
	// No base provenance entry for an unknown code; the externals remain.
	assert.Len(t, set.Sources, 3)
	assert.InDelta(t, 27.5, set.TotalRate(), 1e-9)
}

func TestAggregateNilSourceReportsNotConfigured(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		nil,
		nil)

	set := agg.Aggregate(context.Background(), "9401.61.0000", "sofa", "CN")

	emergency := sourceByName(t, set, model.SourceEmergency)
	assert.False(t, emergency.Succeeded)
	assert.Contains(t, emergency.Note, "not configured")
	assert.InDelta(t, 2.5+7.5, set.TotalRate(), 1e-9)
}

func TestAggregateCancelledLookupDegradesLikeFailure(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5, delay: 5 * time.Second},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	set := agg.Aggregate(ctx, "9401.61.0000", "sofa", "CN")

	assert.Equal(t, "success", set.Status)
	assert.Zero(t, set.TradeRemedyRate)
	assert.False(t, sourceByName(t, set, model.SourceTradeRemedy).Succeeded)
	assert.InDelta(t, 2.5+20+125, set.TotalRate(), 1e-9)
}

func TestAggregateRepeatedCallsAreIndependent(t *testing.T) {
	agg := newTestAggregator(t,
		&stubSource{name: model.SourceTradeRemedy, rate: 7.5},
		&stubSource{name: model.SourceEmergency, rate: 20},
		&stubSource{name: model.SourceReciprocal, rate: 125})

	first := agg.Aggregate(context.Background(), "3304.10.0000", "lipstick", "CN")
	second := agg.Aggregate(context.Background(), "3304.10.0000", "lipstick", "CN")

	assert.Equal(t, first.TotalRate(), second.TotalRate())
	assert.NotSame(t, first, second)
}
