// Package valuation prices portfolio lots with live quotes.
//
// Cost basis is read as a per-share price. A symbol without a quote is
// valued at zero.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/finance/portfolio"
	"github.com/rustyeddy/finance/quote"
)

// Lot is one priced purchase.
type Lot struct {
	portfolio.Entry
	Price float64 `json:"price"`
	Cost  float64 `json:"cost"`  // shares * cost_basis
	Value float64 `json:"value"` // shares * price
	Gain  float64 `json:"gain"`  // (price - cost_basis) * shares
}

// Position aggregates every lot of one symbol.
type Position struct {
	Symbol  string  `json:"symbol"`
	Shares  float64 `json:"shares"`
	Cost    float64 `json:"cost"`
	AvgCost float64 `json:"avg_cost"`
	Price   float64 `json:"price"`
	Change  float64 `json:"change"`
	Value   float64 `json:"value"`
	Gain    float64 `json:"gain"`
	Quoted  bool    `json:"quoted"`
	Lots    []Lot   `json:"lots"`
}

// Summary is the whole portfolio.
type Summary struct {
	Positions []Position `json:"positions"`
	Cost      float64    `json:"total_cost"`
	Value     float64    `json:"total_value"`
	Gain      float64    `json:"total_gain"`
}

type accum struct {
	shares, cost, value, gain decimal.Decimal
}

func (a *accum) add(shares, cost, value, gain decimal.Decimal) {
	a.shares = a.shares.Add(shares)
	a.cost = a.cost.Add(cost)
	a.value = a.value.Add(value)
	a.gain = a.gain.Add(gain)
}

// Value joins entries with quotes by symbol. Positions keep the order in
// which their symbol first appears in entries, which is symbol order for
// the output of portfolio.List.
func Value(entries []portfolio.Entry, quotes []quote.StockQuote) Summary {
	prices := make(map[string]quote.StockQuote, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q
	}

	var (
		order  []string
		bySym  = map[string]*Position{}
		sums   = map[string]*accum{}
		totals accum
	)

	for _, e := range entries {
		q, quoted := prices[e.Symbol]

		shares := decimal.NewFromFloat(e.Shares)
		basis := decimal.NewFromFloat(e.CostBasis)
		price := decimal.NewFromFloat(q.Price)

		cost := shares.Mul(basis)
		value := shares.Mul(price)
		gain := price.Sub(basis).Mul(shares)

		pos, ok := bySym[e.Symbol]
		if !ok {
			pos = &Position{
				Symbol: e.Symbol,
				Price:  q.Price,
				Change: q.Change,
				Quoted: quoted,
			}
			bySym[e.Symbol] = pos
			sums[e.Symbol] = &accum{}
			order = append(order, e.Symbol)
		}
		pos.Lots = append(pos.Lots, Lot{
			Entry: e,
			Price: q.Price,
			Cost:  cost.InexactFloat64(),
			Value: value.InexactFloat64(),
			Gain:  gain.InexactFloat64(),
		})
		sums[e.Symbol].add(shares, cost, value, gain)
		totals.add(shares, cost, value, gain)
	}

	out := Summary{
		Positions: make([]Position, 0, len(order)),
		Cost:      totals.cost.InexactFloat64(),
		Value:     totals.value.InexactFloat64(),
		Gain:      totals.gain.InexactFloat64(),
	}
	for _, sym := range order {
		pos, s := bySym[sym], sums[sym]
		pos.Shares = s.shares.InexactFloat64()
		pos.Cost = s.cost.InexactFloat64()
		pos.Value = s.value.InexactFloat64()
		pos.Gain = s.gain.InexactFloat64()
		if !s.shares.IsZero() {
			pos.AvgCost = s.cost.Div(s.shares).InexactFloat64()
		}
		out.Positions = append(out.Positions, *pos)
	}
	return out
}
