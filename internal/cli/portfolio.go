package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/quote"
)

func newPortfolioCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage portfolio lots",
		Long: `Each purchase is its own lot; buying the same symbol twice adds a
second lot. Cost basis is the price paid per share.

Examples:
  finance portfolio add AAPL 10 150.25 --date 2024-01-15
  finance portfolio list
  finance portfolio value --best-effort`,
	}

	cmd.AddCommand(
		newPortfolioAddCmd(rc),
		newPortfolioListCmd(rc),
		newPortfolioDeleteCmd(rc),
		newPortfolioValueCmd(rc),
	)
	return cmd
}

func newPortfolioAddCmd(rc *RootConfig) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <symbol> <shares> <cost-basis>",
		Short: "Record a purchase lot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseFloat("shares", args[1])
			if err != nil {
				return err
			}
			basis, err := parseFloat("cost basis", args[2])
			if err != nil {
				return err
			}
			if date == "" {
				date = today()
			}

			svc, err := rc.Service()
			if err != nil {
				return err
			}
			return svc.AddPortfolioEntry(cmd.Context(), args[0], shares, basis, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "purchase date (default today, YYYY-MM-DD)")
	return cmd
}

func newPortfolioListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lots by symbol, then purchase date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			entries, err := svc.GetPortfolio(cmd.Context())
			if err != nil {
				return err
			}
			if rc.JSON {
				return printJSON(cmd, entries)
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tSYMBOL\tSHARES\tCOST BASIS\tPURCHASED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%g\t%s\t%s\n", e.ID, e.Symbol, e.Shares, usd(e.CostBasis), e.PurchaseDate)
			}
			return tw.Flush()
		},
	}
}

func newPortfolioDeleteCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			return svc.DeletePortfolioEntry(cmd.Context(), id)
		},
	}
}

func newPortfolioValueCmd(rc *RootConfig) *cobra.Command {
	var bestEffort bool

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Price every lot with live quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := quote.FailFast
			if bestEffort {
				policy = quote.BestEffort
			}

			svc, err := rc.Service()
			if err != nil {
				return err
			}
			v, err := svc.GetPortfolioValuation(cmd.Context(), policy)
			if err != nil {
				return err
			}
			if rc.JSON {
				return printJSON(cmd, v)
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SYMBOL\tSHARES\tAVG COST\tPRICE\tCHANGE\tVALUE\tGAIN/LOSS")
			for _, p := range v.Positions {
				price := "-"
				if p.Quoted {
					price = usd(p.Price)
				}
				fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\t%s\t%s\n",
					p.Symbol, p.Shares, usd(p.AvgCost), price, pct(p.Change), usd(p.Value), signedUSD(p.Gain))
			}
			fmt.Fprintf(tw, "TOTAL\t\t\t\t\t%s\t%s\n", usd(v.Value), signedUSD(v.Gain))
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, sym := range slices.Sorted(maps.Keys(v.Failures)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s not priced: %s\n", sym, v.Failures[sym])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "value what can be priced when a quote fails")
	return cmd
}
