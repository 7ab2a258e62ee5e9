package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/cli"
	"github.com/marhaven/tariffdesk/internal/config"
	"github.com/marhaven/tariffdesk/internal/duty"
	"github.com/marhaven/tariffdesk/internal/forms"
	"github.com/marhaven/tariffdesk/internal/matcher"
	"github.com/marhaven/tariffdesk/internal/model"
)

func flowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Interactive classification, rate and duty walkthrough",
		Long: `Walk one shipment item through the whole pipeline: describe the
goods, pick a classification from the ranked candidates, resolve the
applicable rates, enter the declared value, and get the itemized duty
breakdown plus the populated entry-summary form fields.

Examples:
  tariffdesk flow
  tariffdesk flow --output entry.json`,
		RunE: runFlow,
	}

	cmd.Flags().IntP("top", "t", 3, "Number of candidates to show")
	cmd.Flags().StringP("output", "o", "", "Write the populated form fields to this JSON file")
	_ = viper.BindPFlag("flow.top", cmd.Flags().Lookup("top"))
	_ = viper.BindPFlag("flow.output", cmd.Flags().Lookup("output"))

	return cmd
}

func runFlow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	prompter := cli.NewPrompter(nil, nil)

	cat, err := loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

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

	// Step 1: describe and classify
	query, err := prompter.PromptLine(ctx, "Describe the goods")
	if err != nil {
		return err
	}

	candidates, err := matcher.New(cat, embedder).Match(ctx, query, viper.GetInt("flow.top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println(cli.FormatWarning("No matches found."))
		return nil
	}

	picked, err := prompter.SelectCandidate(ctx, query, candidates)
	if err != nil {
		return err
	}

	// Step 2: resolve rates
	lookupCtx, cancel := context.WithTimeout(ctx, sourceTimeout())
	set := agg.Aggregate(lookupCtx, picked.Code, picked.Description, "CN")
	cancel()
	prompter.ShowRateSet(set)

	// Step 3: declared value and duty breakdown
	value, err := prompter.PromptValue(ctx, "Declared value (USD)")
	if err != nil {
		return err
	}

	breakdown, err := calc.Compute(value, set.BaseRate, set.TradeRemedyRate, set.SurchargeRate())
	if err != nil {
		return fmt.Errorf("duty calculation failed: %w", err)
	}
	prompter.ShowBreakdown(breakdown)

	// Step 4: entry-summary form fields
	output := viper.GetString("flow.output")
	if output == "" {
		return nil
	}

	item := model.EntryItem{
		HTSNumber:   picked.Code,
		Origin:      "CN",
		Description: picked.Description,
		Value:       model.Amount(value),
		BasicRate:   fmt.Sprintf("%g", set.BaseRate),
		RemedyRate:  fmt.Sprintf("%g", set.TradeRemedyRate),
		OtherRate:   fmt.Sprintf("%g", set.SurchargeRate()),
		GrossWeight: "10.00",
		ManifestQty: "100",
		NetQuantity: "100",
	}

	fields, err := forms.NewPopulator(forms.DefaultConfig()).Populate(item, breakdown)
	if err != nil {
		return fmt.Errorf("failed to populate form fields: %w", err)
	}

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode form fields: %w", err)
	}

	output = config.ExpandPath(output)
	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write form fields: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Form fields written to %s", output)))
	return nil
}
