package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marhaven/tariffdesk/internal/cli"
	"github.com/marhaven/tariffdesk/internal/duty"
)

func dutyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duty",
		Short: "Itemize duties and fees for an entered value",
		Long: `Compute the itemized duty and fee breakdown for a customs entry:
ad-valorem duties from the supplied rates plus the Merchandise
Processing Fee and Harbor Maintenance Fee.

Examples:
  tariffdesk duty --value 10000 --basic 2.5 --remedy 7.5 --other 30`,
		RunE: runDuty,
	}

	cmd.Flags().Float64P("value", "v", 0, "Entered value in USD")
	cmd.Flags().Float64("basic", 0, "Basic duty rate (percent)")
	cmd.Flags().Float64("remedy", 0, "Section 301 rate (percent)")
	cmd.Flags().Float64("other", 0, "Other duty rate (percent)")
	_ = viper.BindPFlag("duty.value", cmd.Flags().Lookup("value"))
	_ = viper.BindPFlag("duty.basic", cmd.Flags().Lookup("basic"))
	_ = viper.BindPFlag("duty.remedy", cmd.Flags().Lookup("remedy"))
	_ = viper.BindPFlag("duty.other", cmd.Flags().Lookup("other"))

	return cmd
}

func runDuty(_ *cobra.Command, _ []string) error {
	calc, err := duty.NewCalculator(duty.DefaultConfig())
	if err != nil {
		return err
	}

	item, err := calc.Compute(
		viper.GetFloat64("duty.value"),
		viper.GetFloat64("duty.basic"),
		viper.GetFloat64("duty.remedy"),
		viper.GetFloat64("duty.other"),
	)
	if err != nil {
		return fmt.Errorf("duty calculation failed: %w", err)
	}

	cli.NewPrompter(nil, nil).ShowBreakdown(item)
	return nil
}
