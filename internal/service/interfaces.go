// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/marhaven/tariffdesk/internal/model"
)

// Storage defines the contract for catalog persistence. The catalog is
// loaded in full before the first query and is immutable thereafter.
type Storage interface {
	SaveRecords(ctx context.Context, records []model.TariffRecord) error
	LoadAll(ctx context.Context) ([]model.TariffRecord, error)
	Count(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// RateSource is one independently-fallible external tariff-rate lookup.
// A returned error means this source contributed nothing; the aggregator
// converts it into a zero-rate provenance entry and carries on.
type RateSource interface {
	Name() string
	Lookup(ctx context.Context, code, description string) (RateResult, error)
}

// RateResult is a single source's raw answer before aggregation.
type RateResult struct {
	Note string
	Rate float64
}

// Embedder produces a fixed-length embedding vector for free text. The
// vector dimensionality must match the one the catalog was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
