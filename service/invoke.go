package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/finance/quote"
)

// Command names, as called by the UI host.
const (
	CmdAddTransaction        = "add_transaction"
	CmdGetTransactions       = "get_transactions"
	CmdDeleteTransaction     = "delete_transaction"
	CmdAddStock              = "add_stock"
	CmdGetStocks             = "get_stocks"
	CmdDeleteStock           = "delete_stock"
	CmdAddPortfolioEntry     = "add_portfolio_entry"
	CmdGetPortfolio          = "get_portfolio"
	CmdDeletePortfolioEntry  = "delete_portfolio_entry"
	CmdFetchStockData        = "fetch_stock_data"
	CmdGetPortfolioValuation = "get_portfolio_valuation"
)

// Commands lists every name Invoke accepts.
func Commands() []string {
	return []string{
		CmdAddTransaction,
		CmdGetTransactions,
		CmdDeleteTransaction,
		CmdAddStock,
		CmdGetStocks,
		CmdDeleteStock,
		CmdAddPortfolioEntry,
		CmdGetPortfolio,
		CmdDeletePortfolioEntry,
		CmdFetchStockData,
		CmdGetPortfolioValuation,
	}
}

// Argument shapes use the UI's camelCase names.
type (
	transactionArgs struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Date        string  `json:"date"`
	}
	idArgs struct {
		ID int64 `json:"id"`
	}
	symbolArgs struct {
		Symbol string `json:"symbol"`
	}
	portfolioArgs struct {
		Symbol       string  `json:"symbol"`
		Shares       float64 `json:"shares"`
		CostBasis    float64 `json:"costBasis"`
		PurchaseDate string  `json:"purchaseDate"`
	}
	fetchArgs struct {
		Symbols    []string `json:"symbols"`
		BestEffort bool     `json:"bestEffort"`
	}
	valuationArgs struct {
		BestEffort bool `json:"bestEffort"`
	}
)

// Invoke runs the operation called name with JSON encoded args. The
// result is nil for operations that return nothing.
func (s *Service) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case CmdAddTransaction:
		var a transactionArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.AddTransaction(ctx, a.Description, a.Amount, a.Date)

	case CmdGetTransactions:
		return s.GetTransactions(ctx)

	case CmdDeleteTransaction:
		var a idArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteTransaction(ctx, a.ID)

	case CmdAddStock:
		var a symbolArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.AddStock(ctx, a.Symbol)

	case CmdGetStocks:
		return s.GetStocks(ctx)

	case CmdDeleteStock:
		var a idArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteStock(ctx, a.ID)

	case CmdAddPortfolioEntry:
		var a portfolioArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.AddPortfolioEntry(ctx, a.Symbol, a.Shares, a.CostBasis, a.PurchaseDate)

	case CmdGetPortfolio:
		return s.GetPortfolio(ctx)

	case CmdDeletePortfolioEntry:
		var a idArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeletePortfolioEntry(ctx, a.ID)

	case CmdFetchStockData:
		var a fetchArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		if a.BestEffort {
			return s.FetchStockDataBestEffort(ctx, a.Symbols)
		}
		return s.FetchStockData(ctx, a.Symbols)

	case CmdGetPortfolioValuation:
		var a valuationArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		policy := quote.FailFast
		if a.BestEffort {
			policy = quote.BestEffort
		}
		return s.GetPortfolioValuation(ctx, policy)
	}

	return nil, &Error{Message: fmt.Sprintf("unknown command %q", name)}
}

// IsUnknownCommand reports whether Invoke would reject name.
func IsUnknownCommand(name string) bool {
	for _, c := range Commands() {
		if c == name {
			return false
		}
	}
	return true
}

func decode(name string, args json.RawMessage, v any) error {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{Message: fmt.Sprintf("invalid arguments for %s: %v", name, err)}
	}
	return nil
}
