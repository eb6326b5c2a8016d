package quote

import (
	"context"
	"fmt"
	"strings"
)

// Policy selects how a batch reacts to a failing symbol.
type Policy int

const (
	// FailFast aborts on the first failure and returns nothing.
	FailFast Policy = iota
	// BestEffort fetches every symbol and tags failures per symbol.
	BestEffort
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "fail-fast" or "best-effort".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "best-effort", "besteffort":
		return BestEffort, nil
	default:
		return FailFast, fmt.Errorf("unknown fetch policy %q (want fail-fast|best-effort)", s)
	}
}

// Result is the outcome for one symbol of a best-effort batch.
type Result struct {
	Symbol string     `json:"symbol"`
	Quote  StockQuote `json:"quote"`
	Err    error      `json:"-"`
}

// FetchAll quotes every symbol in order and never aborts early. Failed
// symbols carry Err and a zero Quote.
func (c *Client) FetchAll(ctx context.Context, symbols []string) []Result {
	out := make([]Result, len(symbols))
	for i, s := range symbols {
		out[i].Symbol = s
		q, err := c.Quote(ctx, s)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", s).Msg("quote failed")
			out[i].Err = err
			continue
		}
		out[i].Quote = q
	}
	return out
}

// FetchPolicy runs Fetch or FetchAll depending on p.
func (c *Client) FetchPolicy(ctx context.Context, symbols []string, p Policy) ([]Result, error) {
	if p == BestEffort {
		return c.FetchAll(ctx, symbols), nil
	}

	quotes, err := c.Fetch(ctx, symbols)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(quotes))
	for i, q := range quotes {
		out[i] = Result{Symbol: q.Symbol, Quote: q}
	}
	return out, nil
}

// Quotes keeps the successful quotes of results, in order.
func Quotes(results []Result) []StockQuote {
	out := make([]StockQuote, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Quote)
		}
	}
	return out
}

// Failures maps each failed symbol to its error message.
func Failures(results []Result) map[string]string {
	out := map[string]string{}
	for _, r := range results {
		if r.Err != nil {
			out[r.Symbol] = r.Err.Error()
		}
	}
	return out
}
