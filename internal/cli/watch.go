package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/quote"
	"github.com/rustyeddy/finance/service"
)

func newWatchCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"watchlist", "stocks"},
		Short:   "Manage the stock watchlist",
		Long: `Track ticker symbols independently of what you own.

Symbols are stored upper-cased and each symbol is kept once.

Examples:
  finance watch add aapl msft
  finance watch list
  finance watch quotes --best-effort`,
	}

	cmd.AddCommand(
		newWatchAddCmd(rc),
		newWatchListCmd(rc),
		newWatchDeleteCmd(rc),
		newWatchQuotesCmd(rc),
	)
	return cmd
}

func newWatchAddCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "add <symbol>...",
		Short: "Watch one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			for _, s := range args {
				if err := svc.AddStock(cmd.Context(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newWatchListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			entries, err := svc.GetStocks(cmd.Context())
			if err != nil {
				return err
			}
			if rc.JSON {
				return printJSON(cmd, entries)
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tSYMBOL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\n", e.ID, e.Symbol)
			}
			return tw.Flush()
		},
	}
}

func newWatchDeleteCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop watching a symbol",
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
			return svc.DeleteStock(cmd.Context(), id)
		},
	}
}

func newWatchQuotesCmd(rc *RootConfig) *cobra.Command {
	var bestEffort bool

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Quote every watched symbol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			symbols, err := svc.WatchedSymbols(cmd.Context())
			if err != nil {
				return err
			}
			return printQuotes(cmd, rc, svc, symbols, bestEffort)
		},
	}
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "keep going when a symbol fails")
	return cmd
}

// printQuotes fetches and prints symbols with the chosen policy.
func printQuotes(cmd *cobra.Command, rc *RootConfig, svc *service.Service, symbols []string, bestEffort bool) error {
	var (
		quotes   []quote.StockQuote
		failures map[string]string
	)
	if bestEffort {
		data, err := svc.FetchStockDataBestEffort(cmd.Context(), symbols)
		if err != nil {
			return err
		}
		quotes, failures = data.Quotes, data.Failures
		if rc.JSON {
			return printJSON(cmd, data)
		}
	} else {
		var err error
		quotes, err = svc.FetchStockData(cmd.Context(), symbols)
		if err != nil {
			return err
		}
		if rc.JSON {
			return printJSON(cmd, quotes)
		}
	}

	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tCHANGE")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Symbol, usd(q.Price), pct(q.Change))
	}
	for _, sym := range slices.Sorted(maps.Keys(failures)) {
		fmt.Fprintf(tw, "%s\t-\t%s\n", sym, failures[sym])
	}
	return tw.Flush()
}
