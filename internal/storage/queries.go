package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements of the transactions table, written with ?
// placeholders and rebound for the dialect once at construction.
type Queries struct {
	db DBTX

	insertTransaction string
	listTransactions  string
	sumTransactions   string
	sumInGo           bool
	getTransaction    string
	schemaInfo        string
}

const (
	insertTransaction = `INSERT INTO transactions (id, title, amount, session_id) VALUES (?, ?, ?, ?)`

	listTransactions = `SELECT id, title, amount, session_id, created_at FROM transactions
WHERE session_id = ?
ORDER BY created_at, id`

	sumTransactions = `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE session_id = ?`

	sessionAmounts = `SELECT amount FROM transactions WHERE session_id = ?`

	getTransaction = `SELECT id, title, amount, session_id, created_at FROM transactions
WHERE id = ? AND session_id = ?`
)

func New(db DBTX, d Dialect) *Queries {
	sum := sumTransactions
	if d.TextAmounts {
		sum = sessionAmounts
	}
	return &Queries{
		db:                db,
		insertTransaction: d.Rebind(insertTransaction),
		listTransactions:  d.Rebind(listTransactions),
		sumTransactions:   d.Rebind(sum),
		sumInGo:           d.TextAmounts,
		getTransaction:    d.Rebind(getTransaction),
		schemaInfo:        d.SchemaQuery,
	}
}

type CreateTransactionParams struct {
	ID        string
	Title     string
	Amount    decimal.Decimal
	SessionID string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, q.insertTransaction, arg.ID, arg.Title, arg.Amount, arg.SessionID)
	return err
}

func (q *Queries) ListTransactionsBySession(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, q.listTransactions, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Title, &t.Amount, &t.SessionID, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) SumTransactionsBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	if q.sumInGo {
		return q.sumSessionAmounts(ctx, sessionID)
	}
	var total decimal.Decimal
	err := q.db.QueryRowContext(ctx, q.sumTransactions, sessionID).Scan(&total)
	return total, err
}

// sumSessionAmounts adds text amounts exactly, since SQL SUM would go
// through floating point.
func (q *Queries) sumSessionAmounts(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, q.sumTransactions, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

func (q *Queries) GetTransactionBySession(ctx context.Context, id, sessionID string) (core.Transaction, error) {
	var t core.Transaction
	err := q.db.QueryRowContext(ctx, q.getTransaction, id, sessionID).
		Scan(&t.ID, &t.Title, &t.Amount, &t.SessionID, &t.CreatedAt)
	return t, err
}

// SchemaInfo returns the catalogue rows as column name to value maps.
func (q *Queries) SchemaInfo(ctx context.Context) ([]map[string]any, error) {
	rows, err := q.db.QueryContext(ctx, q.schemaInfo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
