// Package rates aggregates tariff-rate signals from independently-fallible
// sources into one combined, provenance-carrying rate set.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/service"
)

// SupportedCountry is the only country of origin rate aggregation covers.
// This is a deliberate scope restriction, not a failure mode.
const SupportedCountry = "CN"

// Aggregator fans a single classification code out to every rate source
// and merges the answers. The aggregate never fails because one source
// failed: each failure becomes a zero contribution with a flagged
// provenance entry, so a rates request always returns a number.
type Aggregator struct {
	catalog    *catalog.Catalog
	remedy     service.RateSource
	emergency  service.RateSource
	reciprocal service.RateSource
	logger     *slog.Logger
}

// New creates an aggregator. Rate aggregation reads base rates from the
// catalog, so an empty catalog is a configuration error here, unlike in
// the matcher where it degrades to an empty result. Any of the external
// sources may be nil, in which case its slot reports a not-configured
// failure instead of a rate.
func New(cat *catalog.Catalog, remedy, emergency, reciprocal service.RateSource, logger *slog.Logger) (*Aggregator, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("rate aggregation requires a loaded catalog: %w", common.ErrEmptyCatalog)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		catalog:    cat,
		remedy:     remedy,
		emergency:  emergency,
		reciprocal: reciprocal,
		logger:     logger,
	}, nil
}

// Aggregate combines every rate source's answer for one classification
// code. The three external lookups run concurrently, each writing its own
// slot; a cancelled or timed-out lookup degrades exactly like a failed
// source. The returned set's total is always the sum of its components.
func (a *Aggregator) Aggregate(ctx context.Context, code, description, country string) *model.RateSet {
	set := &model.RateSet{
		Code:        code,
		Description: description,
		Country:     country,
	}

	if country != SupportedCountry {
		set.Status = fmt.Sprintf("only %s imports are supported for tariff calculation", SupportedCountry)
		return set
	}

	// Base rate comes straight from the loaded catalog; no external call.
	// An unknown code contributes 0 with no provenance entry.
	if rate, found := a.catalog.BaseRate(code); found {
		set.BaseRate = rate
		set.Sources = append(set.Sources, model.SourceResult{
			Name:      model.SourceBaseRate,
			Rate:      rate,
			Succeeded: true,
			Note:      "Harmonized Tariff Schedule",
		})
	}

	results := a.fanOut(ctx, code, description)
	set.TradeRemedyRate = results[0].Rate
	set.EmergencyRate = results[1].Rate
	set.ReciprocalRate = results[2].Rate
	set.Sources = append(set.Sources, results[:]...)

	set.Status = "success"

	a.logger.Info("aggregated tariff rates",
		"code", code,
		"total_rate", set.TotalRate(),
		"sources", len(set.Sources))

	return set
}

// fanOut queries the three external sources concurrently. Slots are fixed
// and write-once: remedy, emergency, reciprocal.
func (a *Aggregator) fanOut(ctx context.Context, code, description string) [3]model.SourceResult {
	var results [3]model.SourceResult

	slots := []struct {
		source service.RateSource
		name   string
		idx    int
	}{
		{a.remedy, model.SourceTradeRemedy, 0},
		{a.emergency, model.SourceEmergency, 1},
		{a.reciprocal, model.SourceReciprocal, 2},
	}

	var wg sync.WaitGroup
	for _, slot := range slots {
		slot := slot
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[slot.idx] = a.query(ctx, slot.source, slot.name, code, description)
		}()
	}
	wg.Wait()

	return results
}

// query invokes a single source and absorbs its failure at this boundary.
func (a *Aggregator) query(ctx context.Context, source service.RateSource, name, code, description string) model.SourceResult {
	if source == nil {
		return model.SourceResult{Name: name, Note: "source not configured"}
	}

	res, err := source.Lookup(ctx, code, description)
	if err != nil {
		a.logger.Warn("rate source failed",
			"source", name,
			"code", code,
			"error", err)
		return model.SourceResult{Name: name, Note: err.Error()}
	}

	return model.SourceResult{
		Name:      name,
		Rate:      res.Rate,
		Succeeded: true,
		Note:      res.Note,
	}
}
