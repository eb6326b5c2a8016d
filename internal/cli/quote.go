package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/quote"
)

func newQuoteCmd(rc *RootConfig) *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "quote <symbol>...",
		Short: "Fetch live quotes",
		Long: `Fetch the current price and percent change for each symbol, one
request per symbol in the order given.

With the default fail-fast policy one failing symbol fails the whole
call. Use --policy best-effort to get every quote that succeeded.

Examples:
  finance quote AAPL MSFT
  finance quote AAPL BOGUS --policy best-effort`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := quote.ParsePolicy(policy)
			if err != nil {
				return err
			}
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			symbols := make([]string, len(args))
			for i, a := range args {
				symbols[i] = strings.ToUpper(a)
			}
			return printQuotes(cmd, rc, svc, symbols, p == quote.BestEffort)
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "fail-fast", "fail-fast|best-effort")
	return cmd
}
