package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTxCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Manage cash transactions",
		Long: `Add, list and delete ledger transactions.

There is no edit: delete the transaction and add the corrected one.

Examples:
  finance tx add "Groceries" -- -52.37
  finance tx add "Salary" 3000 --date 2024-07-31
  finance tx list
  finance tx delete 4`,
	}

	cmd.AddCommand(
		newTxAddCmd(rc),
		newTxListCmd(rc),
		newTxDeleteCmd(rc),
	)
	return cmd
}

func newTxAddCmd(rc *RootConfig) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record a transaction (negative amounts are spending)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseFloat("amount", args[1])
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
			return svc.AddTransaction(cmd.Context(), args[0], amount, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "transaction date (default today, YYYY-MM-DD)")
	return cmd
}

func newTxListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transactions in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rc.Service()
			if err != nil {
				return err
			}
			txs, err := svc.GetTransactions(cmd.Context())
			if err != nil {
				return err
			}
			if rc.JSON {
				return printJSON(cmd, txs)
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT")
			var total float64
			for _, tx := range txs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", tx.ID, tx.Date, tx.Description, signedUSD(tx.Amount))
				total += tx.Amount
			}
			fmt.Fprintf(tw, "\t\tBALANCE\t%s\n", signedUSD(total))
			return tw.Flush()
		},
	}
}

func newTxDeleteCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
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
			return svc.DeleteTransaction(cmd.Context(), id)
		},
	}
}
