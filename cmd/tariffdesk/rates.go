package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/cli"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates <hts-code>",
		Short: "Resolve the applicable tariff rates for a classification",
		Long: `Aggregate the duty rates that apply to an HTS classification: the
statutory base rate from the catalog, the Section 301 trade-remedy rate
from the USTR search page, and the IEEPA and reciprocal surcharges from
the knowledge service.

A source that cannot be reached contributes a zero rate and is flagged
in the output; the remaining sources still apply.

Examples:
  tariffdesk rates 3304.99.50.00
  tariffdesk rates 8471.30.01.00 --description "portable computer"`,
		Args: cobra.ExactArgs(1),
		RunE: runRates,
	}

	cmd.Flags().StringP("description", "d", "", "Product description passed to the knowledge sources")
	cmd.Flags().StringP("country", "c", "CN", "Country of origin (ISO code)")
	_ = viper.BindPFlag("rates.description", cmd.Flags().Lookup("description"))
	_ = viper.BindPFlag("rates.country", cmd.Flags().Lookup("country"))

	return cmd
}

func runRates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	code := args[0]
	description := viper.GetString("rates.description")
	country := viper.GetString("rates.country")

	cat, err := loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	agg, resolver, err := newAggregator(cat)
	if err != nil {
		return err
	}
	defer resolver.Close()

	lookupCtx, cancel := context.WithTimeout(ctx, sourceTimeout())
	defer cancel()

	set := agg.Aggregate(lookupCtx, code, description, country)
	cli.NewPrompter(nil, nil).ShowRateSet(set)

	return nil
}
