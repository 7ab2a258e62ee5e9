package llm

import (
	"context"
	"time"
)

// Client defines the interface for knowledge-service providers. A provider
// answers a structured natural-language tariff question with free text that
// must contain a fenced JSON block matching the RateAnswer contract.
type Client interface {
	LookupRate(ctx context.Context, prompt string) (RateAnswer, error)
}

// RateAnswer is the structured contract every knowledge-source answer must
// satisfy. Any violation of the contract is treated as a source failure by
// the aggregator, never reproduced or repaired here.
type RateAnswer struct {
	Reason     string
	Rate       float64
	Applicable bool
}

// Config holds configuration for knowledge-service clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}
