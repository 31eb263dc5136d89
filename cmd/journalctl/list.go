package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"trade-journal-go/internal/models"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions, factory apiFactory) *cobra.Command {
	var clock24 bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := factory(opts)
			if err != nil {
				return err
			}
			trades, err := api.ListTrades(cmd.Context(), clock24)
			if err != nil {
				return err
			}
			return printTrades(cmd.OutOrStdout(), trades)
		},
	}

	cmd.Flags().BoolVar(&clock24, "24h", false, "show times on a 24-hour clock")
	return cmd
}

func printTrades(out io.Writer, trades []models.Trade) error {
	if len(trades) == 0 {
		_, err := fmt.Fprintln(out, "No trades found. Please file your first trade.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVESTOR\tCATEGORY\tINVESTED\tPROFIT/LOSS\tBROKERAGE\tPERCENTAGE\tDATE\tTIME")
	for _, t := range trades {
		sign := "+"
		if t.Side == models.SideLoss {
			sign = "-"
		}
		category := t.Category.String()
		if t.SubCategory != "" {
			category += " / " + t.SubCategory
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s%.2f\t%.2f\t%.2f%%\t%s\t%s\n",
			t.InvestorName, category, t.Investment, sign, t.ProfitLoss, t.Brokerage, t.Percentage, t.Date, t.Time)
	}
	return tw.Flush()
}
