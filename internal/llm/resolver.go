package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/service"
)

// Resolver wraps a knowledge-service client with the operational plumbing
// every lookup needs: retry with backoff, rate limiting, and a short-lived
// answer cache. Surcharge answers are time-varying, so the cache TTL stays
// well below the retry horizon of a typical session.
type Resolver struct {
	client      Client
	cache       *answerCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	retryOpts   service.RetryOptions
}

// NewResolver creates a resolver around the configured provider.
func NewResolver(cfg Config, logger *slog.Logger) (*Resolver, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge-service client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Resolver{
		client:      client,
		cache:       newAnswerCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
		retryOpts:   retryOpts,
	}, nil
}

// LookupRate answers a tariff question, consulting the cache first and
// retrying transient provider failures.
func (r *Resolver) LookupRate(ctx context.Context, prompt string) (RateAnswer, error) {
	if answer, found := r.cache.get(prompt); found {
		r.logger.Debug("knowledge-service cache hit")
		return answer, nil
	}

	if err := r.rateLimiter.wait(ctx); err != nil {
		return RateAnswer{}, err
	}

	var answer RateAnswer
	err := common.WithRetry(ctx, func() error {
		var lookupErr error
		answer, lookupErr = r.client.LookupRate(ctx, prompt)
		return lookupErr
	}, r.retryOpts)
	if err != nil {
		return RateAnswer{}, err
	}

	r.cache.set(prompt, answer)

	r.logger.Debug("knowledge-service answer",
		"applicable", answer.Applicable,
		"rate", answer.Rate)

	return answer, nil
}

// Close releases the resolver's background resources.
func (r *Resolver) Close() {
	r.cache.Close()
	r.rateLimiter.Close()
}
