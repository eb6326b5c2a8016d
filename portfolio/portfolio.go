// Package portfolio stores holdings as individual purchase lots.
package portfolio

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rustyeddy/finance/store"
)

// Entry is one purchase lot. Repeated purchases of the same symbol are
// separate entries. Shares is expected to be positive but not checked.
// CostBasis follows the caller's convention; the valuation package reads
// it as a per-share price.
type Entry struct {
	ID           int64   `json:"id"`
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	CostBasis    float64 `json:"cost_basis"`
	PurchaseDate string  `json:"purchase_date"`
}

type Portfolio struct {
	opener *store.Opener
}

func New(o *store.Opener) *Portfolio {
	return &Portfolio{opener: o}
}

// AddEntry upper-cases symbol and always inserts a new lot.
func (p *Portfolio) AddEntry(ctx context.Context, symbol string, shares, costBasis float64, purchaseDate string) (int64, error) {
	h, err := p.opener.Open(ctx, store.PortfolioSchema)
	if err != nil {
		return 0, err
	}
	defer h.Close()

	return h.Insert(ctx, `
		INSERT INTO portfolio (symbol, shares, cost_basis, purchase_date)
		VALUES (?, ?, ?, ?)`,
		strings.ToUpper(symbol), shares, costBasis, purchaseDate,
	)
}

// List returns all lots ordered by symbol, then purchase date.
func (p *Portfolio) List(ctx context.Context) ([]Entry, error) {
	h, err := p.opener.Open(ctx, store.PortfolioSchema)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	out := []Entry{}
	err = h.Query(ctx, func(rows *sql.Rows) error {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Symbol, &e.Shares, &e.CostBasis, &e.PurchaseDate); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	}, `
		SELECT id, symbol, shares, cost_basis, purchase_date
		FROM portfolio
		ORDER BY symbol ASC, purchase_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Symbols returns each held symbol once, sorted.
func (p *Portfolio) Symbols(ctx context.Context) ([]string, error) {
	h, err := p.opener.Open(ctx, store.PortfolioSchema)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	out := []string{}
	err = h.Query(ctx, func(rows *sql.Rows) error {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}, `SELECT DISTINCT symbol FROM portfolio ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEntry removes one lot. Unknown ids are ignored.
func (p *Portfolio) DeleteEntry(ctx context.Context, id int64) error {
	h, err := p.opener.Open(ctx, store.PortfolioSchema)
	if err != nil {
		return err
	}
	defer h.Close()

	_, err = h.Exec(ctx, `DELETE FROM portfolio WHERE id = ?`, id)
	return err
}
