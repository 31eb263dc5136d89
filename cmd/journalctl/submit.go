package main

import (
	"fmt"

	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeofday"

	"github.com/spf13/cobra"
)

type submitOptions struct {
	investor    string
	date        string
	clock       string
	investment  float64
	side        string
	profitLoss  float64
	brokerage   float64
	category    string
	subCategory string
}

func newSubmitCmd(opts *rootOptions, factory apiFactory) *cobra.Command {
	so := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File one trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := so.submission(cmd)
			if err != nil {
				return err
			}

			api, err := factory(opts)
			if err != nil {
				return err
			}
			id, err := api.CreateTrade(cmd.Context(), sub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trade saved: %s\n", id)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.investor, "investor", "", "investor name")
	f.StringVar(&so.date, "date", "", "trade date, YYYY-MM-DD")
	f.StringVar(&so.clock, "time", "", `trade time, "14:30" or "2:30 PM"`)
	f.Float64Var(&so.investment, "investment", 0, "amount invested")
	f.StringVar(&so.side, "side", string(models.SideProfit), "Profit or Loss")
	f.Float64Var(&so.profitLoss, "profit-loss", 0, "size of the gain or loss")
	f.Float64Var(&so.brokerage, "brokerage", 0, "brokerage paid")
	f.StringVar(&so.category, "category", string(models.CategoryAll), "All, Price Action, Indicator, Candlestick or Pattern")
	f.StringVar(&so.subCategory, "sub-category", "", "optional setup detail, e.g. \"EMA crossover\"")

	return cmd
}

// submission builds the request body. Amount flags that were not given stay unset so
// the server can reject them.
func (so *submitOptions) submission(cmd *cobra.Command) (journal.Submission, error) {
	clock := so.clock
	if timeofday.Is24Hour(clock) {
		t12, err := timeofday.To12Hour(clock)
		if err != nil {
			return journal.Submission{}, err
		}
		clock = t12
	}

	sub := journal.Submission{
		InvestorName: so.investor,
		Date:         so.date,
		Time:         clock,
		Side:         so.side,
		Category:     so.category,
		SubCategory:  so.subCategory,
	}

	flags := cmd.Flags()
	if flags.Changed("investment") {
		v := so.investment
		sub.Investment = &v
	}
	if flags.Changed("profit-loss") {
		v := so.profitLoss
		sub.ProfitLoss = &v
	}
	if flags.Changed("brokerage") {
		v := so.brokerage
		sub.Brokerage = &v
	}
	return sub, nil
}
