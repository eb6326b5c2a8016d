// Package watchlist stores the set of tracked ticker symbols.
package watchlist

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rustyeddy/finance/store"
)

// Entry is one tracked symbol.
type Entry struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
}

// Watchlist is independent of ownership; see the portfolio package for
// holdings.
type Watchlist struct {
	opener *store.Opener
}

func New(o *store.Opener) *Watchlist {
	return &Watchlist{opener: o}
}

// Add upper-cases symbol and stores it. Adding a symbol that is already
// tracked does nothing.
func (w *Watchlist) Add(ctx context.Context, symbol string) error {
	h, err := w.opener.Open(ctx, store.StocksSchema)
	if err != nil {
		return err
	}
	defer h.Close()

	_, err = h.Exec(ctx, `INSERT OR IGNORE INTO stocks (symbol) VALUES (?)`, strings.ToUpper(symbol))
	return err
}

// List returns the watchlist ordered by symbol.
func (w *Watchlist) List(ctx context.Context) ([]Entry, error) {
	h, err := w.opener.Open(ctx, store.StocksSchema)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	out := []Entry{}
	err = h.Query(ctx, func(rows *sql.Rows) error {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Symbol); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	}, `SELECT id, symbol FROM stocks ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Symbols returns just the symbols of List.
func (w *Watchlist) Symbols(ctx context.Context) ([]string, error) {
	entries, err := w.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out, nil
}

// Delete removes an entry by id. Unknown ids are ignored.
func (w *Watchlist) Delete(ctx context.Context, id int64) error {
	h, err := w.opener.Open(ctx, store.StocksSchema)
	if err != nil {
		return err
	}
	defer h.Close()

	_, err = h.Exec(ctx, `DELETE FROM stocks WHERE id = ?`, id)
	return err
}
