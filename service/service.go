// Package service exposes the caller-facing finance operations. Every
// operation opens its own database handle, runs to completion, and
// reports failure as a single message string.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/finance/config"
	"github.com/rustyeddy/finance/internal/logging"
	"github.com/rustyeddy/finance/ledger"
	"github.com/rustyeddy/finance/pkg/id"
	"github.com/rustyeddy/finance/portfolio"
	"github.com/rustyeddy/finance/quote"
	"github.com/rustyeddy/finance/store"
	"github.com/rustyeddy/finance/valuation"
	"github.com/rustyeddy/finance/watchlist"
)

// Error is what crosses the operation boundary: a message and nothing to
// discriminate on.
type Error struct {
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// StockData is the best-effort result of fetch_stock_data.
type StockData struct {
	Quotes   []quote.StockQuote `json:"quotes"`
	Failures map[string]string  `json:"failures,omitempty"`
}

// PortfolioValuation is a valuation plus the symbols that could not be
// priced.
type PortfolioValuation struct {
	valuation.Summary
	Failures map[string]string `json:"failures,omitempty"`
}

type Service struct {
	opener    *store.Opener
	ledger    *ledger.Ledger
	watchlist *watchlist.Watchlist
	portfolio *portfolio.Portfolio
	quotes    *quote.Client
	logger    *logging.Logger
}

// New builds a Service from configuration. The data directory is
// cfg.App.DataDir when set, the resolved per-application directory
// otherwise.
func New(cfg *config.Config, logger *logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewSilent()
	}

	dir := cfg.App.DataDir
	if dir == "" {
		var err error
		dir, err = store.DataDir(cfg.App.Name)
		if err != nil {
			return nil, err
		}
	}

	timeout, err := cfg.Quote.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("quote timeout: %w", err)
	}
	if cfg.Quote.APIKey == "" {
		logger.Debug().Msgf("no quote api key configured; set quote.api_key or %s", config.EnvAPIKey)
	}

	opener := store.NewOpener(dir, store.WithLogger(logger))
	client := quote.NewClient(cfg.Quote.APIKey,
		quote.WithBaseURL(cfg.Quote.BaseURL),
		quote.WithTimeout(timeout),
		quote.WithRateLimit(cfg.Quote.RateLimit),
		quote.WithLogger(logger),
	)
	return NewWith(opener, client, logger), nil
}

// NewWith assembles a Service from already built parts.
func NewWith(opener *store.Opener, quotes *quote.Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Service{
		opener:    opener,
		ledger:    ledger.New(opener),
		watchlist: watchlist.New(opener),
		portfolio: portfolio.New(opener),
		quotes:    quotes,
		logger:    logger,
	}
}

// DBPath is the database file the service writes to.
func (s *Service) DBPath() string { return s.opener.Path() }

func (s *Service) run(ctx context.Context, op string, fn func(context.Context, *logging.Logger) error) error {
	log := s.logger.With("req", id.New())
	start := time.Now()

	err := fn(ctx, log)
	if err != nil {
		log.Error().Err(err).Str("op", op).Dur("took", time.Since(start)).Msg("operation failed")
		return &Error{Message: err.Error()}
	}
	log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("operation done")
	return nil
}

func (s *Service) AddTransaction(ctx context.Context, description string, amount float64, date string) error {
	return s.run(ctx, CmdAddTransaction, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Str("description", description).Float64("amount", amount).Str("date", date).Msg("inserting transaction")
		_, err := s.ledger.Add(ctx, description, amount, date)
		return err
	})
}

func (s *Service) GetTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	err := s.run(ctx, CmdGetTransactions, func(ctx context.Context, _ *logging.Logger) error {
		var err error
		out, err = s.ledger.List(ctx)
		return err
	})
	return out, err
}

func (s *Service) DeleteTransaction(ctx context.Context, txID int64) error {
	return s.run(ctx, CmdDeleteTransaction, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Int64("id", txID).Msg("deleting transaction")
		return s.ledger.Delete(ctx, txID)
	})
}

func (s *Service) AddStock(ctx context.Context, symbol string) error {
	return s.run(ctx, CmdAddStock, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Str("symbol", symbol).Msg("watching symbol")
		return s.watchlist.Add(ctx, symbol)
	})
}

func (s *Service) GetStocks(ctx context.Context) ([]watchlist.Entry, error) {
	var out []watchlist.Entry
	err := s.run(ctx, CmdGetStocks, func(ctx context.Context, _ *logging.Logger) error {
		var err error
		out, err = s.watchlist.List(ctx)
		return err
	})
	return out, err
}

// WatchedSymbols lists the watchlist symbols, sorted.
func (s *Service) WatchedSymbols(ctx context.Context) ([]string, error) {
	var out []string
	err := s.run(ctx, CmdGetStocks, func(ctx context.Context, _ *logging.Logger) error {
		var err error
		out, err = s.watchlist.Symbols(ctx)
		return err
	})
	return out, err
}

func (s *Service) DeleteStock(ctx context.Context, stockID int64) error {
	return s.run(ctx, CmdDeleteStock, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Int64("id", stockID).Msg("unwatching symbol")
		return s.watchlist.Delete(ctx, stockID)
	})
}

func (s *Service) AddPortfolioEntry(ctx context.Context, symbol string, shares, costBasis float64, purchaseDate string) error {
	return s.run(ctx, CmdAddPortfolioEntry, func(ctx context.Context, log *logging.Logger) error {
		log.Info().
			Str("symbol", symbol).
			Float64("shares", shares).
			Float64("cost_basis", costBasis).
			Str("purchase_date", purchaseDate).
			Msg("inserting portfolio entry")
		_, err := s.portfolio.AddEntry(ctx, symbol, shares, costBasis, purchaseDate)
		return err
	})
}

func (s *Service) GetPortfolio(ctx context.Context) ([]portfolio.Entry, error) {
	var out []portfolio.Entry
	err := s.run(ctx, CmdGetPortfolio, func(ctx context.Context, _ *logging.Logger) error {
		var err error
		out, err = s.portfolio.List(ctx)
		return err
	})
	return out, err
}

func (s *Service) DeletePortfolioEntry(ctx context.Context, entryID int64) error {
	return s.run(ctx, CmdDeletePortfolioEntry, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Int64("id", entryID).Msg("deleting portfolio entry")
		return s.portfolio.DeleteEntry(ctx, entryID)
	})
}

// FetchStockData quotes symbols fail-fast: one bad symbol fails the call
// and no quotes are returned.
func (s *Service) FetchStockData(ctx context.Context, symbols []string) ([]quote.StockQuote, error) {
	var out []quote.StockQuote
	err := s.run(ctx, CmdFetchStockData, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Strs("symbols", symbols).Msg("fetching symbols")
		var err error
		out, err = s.quotes.Fetch(ctx, symbols)
		return err
	})
	return out, err
}

// FetchStockDataBestEffort quotes every symbol and reports failures per
// symbol instead of failing the call.
func (s *Service) FetchStockDataBestEffort(ctx context.Context, symbols []string) (StockData, error) {
	var out StockData
	err := s.run(ctx, CmdFetchStockData, func(ctx context.Context, log *logging.Logger) error {
		log.Info().Strs("symbols", symbols).Msg("fetching symbols, best effort")
		results := s.quotes.FetchAll(ctx, symbols)
		out = StockData{Quotes: quote.Quotes(results), Failures: quote.Failures(results)}
		return nil
	})
	return out, err
}

// GetPortfolioValuation prices every lot with a fresh quote for each held
// symbol.
func (s *Service) GetPortfolioValuation(ctx context.Context, policy quote.Policy) (PortfolioValuation, error) {
	var out PortfolioValuation
	err := s.run(ctx, CmdGetPortfolioValuation, func(ctx context.Context, log *logging.Logger) error {
		entries, err := s.portfolio.List(ctx)
		if err != nil {
			return err
		}
		symbols, err := s.portfolio.Symbols(ctx)
		if err != nil {
			return err
		}
		log.Info().Strs("symbols", symbols).Stringer("policy", policy).Msg("valuing portfolio")

		results, err := s.quotes.FetchPolicy(ctx, symbols, policy)
		if err != nil {
			return err
		}
		out = PortfolioValuation{
			Summary:  valuation.Value(entries, quote.Quotes(results)),
			Failures: quote.Failures(results),
		}
		return nil
	})
	return out, err
}
