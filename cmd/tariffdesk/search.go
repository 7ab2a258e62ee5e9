// Package main contains the tariffdesk CLI commands.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/cli"
	"github.com/marhaven/tariffdesk/internal/matcher"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <description>",
		Short: "Find tariff classifications for a product description",
		Long: `Rank the harmonized tariff catalog against a free-text product
description using semantic similarity.

Examples:
  tariffdesk search "stainless steel kitchen knife"
  tariffdesk search --top 5 "lithium ion battery pack"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntP("top", "t", 3, "Number of candidates to show")
	_ = viper.BindPFlag("search.top", cmd.Flags().Lookup("top"))

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")
	topN := viper.GetInt("search.top")

	cat, err := loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	embedder, err := newEmbedder(cat)
	if err != nil {
		return err
	}

	candidates, err := matcher.New(cat, embedder).Match(ctx, query, topN)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Println(cli.FormatWarning("No matches found."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Matches for %q", query)))
	for i, c := range candidates {
		fmt.Printf("%s %s  %s\n", cli.BoldStyle.Render(fmt.Sprintf("[%d]", i+1)), c.Code, c.Description)
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("    base rate %.1f%%  similarity %.3f", c.BaseRate, c.Score)))
	}

	return nil
}
