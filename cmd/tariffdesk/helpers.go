package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/config"
	"github.com/marhaven/tariffdesk/internal/llm"
	"github.com/marhaven/tariffdesk/internal/matcher"
	"github.com/marhaven/tariffdesk/internal/rates"
	"github.com/marhaven/tariffdesk/internal/service"
	"github.com/marhaven/tariffdesk/internal/storage"
)

const defaultDBPath = "$HOME/.local/share/tariffdesk/tariffdesk.db"

// initStorage opens the tariff database with proper path expansion and
// runs migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCatalog loads the classification catalog. A configured catalog.path
// reads the JSONL file directly; otherwise the database is the source.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if path := viper.GetString("catalog.path"); path != "" {
		cat, err := catalog.LoadJSONL(config.ExpandPath(path))
		if err != nil {
			return nil, common.NewUserError("Could not read the catalog file. Check the catalog.path setting.", err)
		}
		return cat, nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close database", common.Fields{"path": viper.GetString("database.path")})
		}
	}()

	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog records: %w", err)
	}

	return catalog.New(records)
}

// newEmbedder creates the query embedder matching the catalog's dimension.
func newEmbedder(cat *catalog.Catalog) (service.Embedder, error) {
	return matcher.NewOpenAIEmbedder(matcher.EmbedderConfig{
		APIKey:    viper.GetString("embeddings.api_key"),
		Model:     viper.GetString("embeddings.model"),
		Dimension: cat.Dimension(),
	})
}

// newResolver creates the knowledge-service client used for the tariff
// questions that have no machine-readable source.
func newResolver() (*llm.Resolver, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	return llm.NewResolver(cfg, slog.Default())
}

// newAggregator wires the rate sources behind the aggregator. The
// resolver is shared by both knowledge sources; callers own its Close.
func newAggregator(cat *catalog.Catalog) (*rates.Aggregator, *llm.Resolver, error) {
	resolver, err := newResolver()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create knowledge client: %w", err)
	}

	agg, err := rates.New(cat,
		rates.NewTradeRemedySource(viper.GetString("sources.ustr_search_url")),
		rates.NewEmergencySource(resolver),
		rates.NewReciprocalSource(resolver),
		slog.Default(),
	)
	if err != nil {
		resolver.Close()
		if errors.Is(err, common.ErrEmptyCatalog) {
			return nil, nil, common.NewUserError("The tariff catalog is empty. Import records with 'tariffdesk import' first.", err)
		}
		return nil, nil, err
	}

	return agg, resolver, nil
}

// sourceTimeout bounds a single rate aggregation run.
func sourceTimeout() time.Duration {
	if d := viper.GetDuration("sources.timeout"); d > 0 {
		return d
	}
	return 45 * time.Second
}
