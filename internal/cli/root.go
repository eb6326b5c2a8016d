package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/config"
	"github.com/rustyeddy/finance/internal/logging"
	"github.com/rustyeddy/finance/service"
)

// RootConfig holds the global flags and what PersistentPreRunE builds
// from them.
type RootConfig struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	NoColor    bool
	JSON       bool

	cfg    *config.Config
	logger *logging.Logger
	// logOut overrides the console writer; tests point it at a buffer
	logOut io.Writer
}

// Config returns the loaded configuration.
func (rc *RootConfig) Config() *config.Config { return rc.cfg }

// Service builds the operation layer for one command run.
func (rc *RootConfig) Service() (*service.Service, error) {
	return service.New(rc.cfg, rc.logger)
}

func (rc *RootConfig) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if rc.ConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return err
		}
	}
	cfg.ApplyEnv()

	// explicit flags win over file and environment
	if cmd.Flags().Changed("data-dir") {
		cfg.App.DataDir = rc.DataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = rc.LogLevel
	}
	if cmd.Flags().Changed("no-color") {
		cfg.Log.NoColor = rc.NoColor
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	rc.cfg = cfg

	if rc.logOut != nil {
		rc.logger = logging.New(cfg.Log.Level, rc.logOut)
	} else {
		rc.logger = logging.NewConsole(cfg.Log.Level, cfg.Log.NoColor)
	}
	return nil
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&RootConfig{})
}

func newRootCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finance",
		Short: "Personal finance ledger, watchlist and portfolio",
		Long: `Finance keeps cash transactions, a stock watchlist and portfolio lots
in a local SQLite database and prices holdings with live quotes.

The quote provider key is read from the config file (quote.api_key) or
the FINNHUB_API_KEY environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DataDir, "data-dir", "", "Directory holding finance.db (default: per-user data dir)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.NoColor, "no-color", false, "Disable colored log output")
	cmd.PersistentFlags().BoolVar(&rc.JSON, "json", false, "Print results as JSON")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load(cmd)
	}

	cmd.AddCommand(
		newTxCmd(rc),
		newWatchCmd(rc),
		newPortfolioCmd(rc),
		newQuoteCmd(rc),
		newServeCmd(rc),
		newConfigCmd(rc),
		newVersionCmd(),
	)

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
