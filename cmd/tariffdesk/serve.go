package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/duty"
	"github.com/marhaven/tariffdesk/internal/forms"
	"github.com/marhaven/tariffdesk/internal/matcher"
	"github.com/marhaven/tariffdesk/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the classification, rate and duty pipeline over a JSON HTTP
API. The catalog is loaded once at startup.

Endpoints:
  POST /api/search   rank catalog candidates for a description
  POST /api/rates    aggregate the applicable tariff rates
  POST /api/duty     itemize duties and fees for a value
  POST /api/form     populate the entry-summary form fields
  GET  /api/health   liveness and catalog stats`,
		RunE: runServe,
	}

	cmd.Flags().String("host", "0.0.0.0", "Listen address")
	cmd.Flags().IntP("port", "p", 8899, "Listen port")
	_ = viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cat, err := loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("catalog loaded", "records", cat.Len(), "dimension", cat.Dimension())

	embedder, err := newEmbedder(cat)
	if err != nil {
		return err
	}

	agg, resolver, err := newAggregator(cat)
	if err != nil {
		return err
	}
	defer resolver.Close()

	calc, err := duty.NewCalculator(duty.DefaultConfig())
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	cfg.Host = viper.GetString("server.host")
	cfg.Port = viper.GetInt("server.port")
	cfg.SourceTimeout = sourceTimeout()

	srv := server.NewServer(cfg, cat,
		matcher.New(cat, embedder),
		agg, calc,
		forms.NewPopulator(forms.DefaultConfig()),
		slog.Default(),
	)

	return srv.Run(ctx)
}
