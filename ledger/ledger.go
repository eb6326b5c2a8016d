// Package ledger stores cash transactions.
package ledger

import (
	"context"
	"database/sql"

	"github.com/rustyeddy/finance/store"
)

// Transaction is one cash movement. Amount is signed and carries no
// currency; Date is stored exactly as the caller supplied it.
type Transaction struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Ledger is the transaction store. There is no update; callers edit a
// transaction by deleting it and adding the new version.
type Ledger struct {
	opener *store.Opener
}

func New(o *store.Opener) *Ledger {
	return &Ledger{opener: o}
}

// Add inserts a transaction and returns its id. Nothing is validated:
// an empty description or a non-finite amount is stored as given.
func (l *Ledger) Add(ctx context.Context, description string, amount float64, date string) (int64, error) {
	h, err := l.opener.Open(ctx, store.TransactionsSchema)
	if err != nil {
		return 0, err
	}
	defer h.Close()

	return h.Insert(ctx, `
		INSERT INTO transactions (description, amount, date)
		VALUES (?, ?, ?)`,
		description, amount, date,
	)
}

// List returns every transaction in insertion order.
func (l *Ledger) List(ctx context.Context) ([]Transaction, error) {
	h, err := l.opener.Open(ctx, store.TransactionsSchema)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	out := []Transaction{}
	err = h.Query(ctx, func(rows *sql.Rows) error {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &tx.Date); err != nil {
			return err
		}
		out = append(out, tx)
		return nil
	}, `SELECT id, description, amount, date FROM transactions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a transaction. Deleting an unknown id is not an error.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	h, err := l.opener.Open(ctx, store.TransactionsSchema)
	if err != nil {
		return err
	}
	defer h.Close()

	_, err = h.Exec(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}
