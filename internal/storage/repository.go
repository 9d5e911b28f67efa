package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"ledger/internal/core"
	"ledger/internal/log"
)

// Repository persists transactions in the engine chosen by DATABASE_CLIENT.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	queries *Queries
}

// NewRepository opens the database, checks it is reachable and applies migrations.
func NewRepository(ctx context.Context, client, url string) (*Repository, error) {
	d, err := LookupDialect(client)
	if err != nil {
		return nil, err
	}

	dsn, err := d.DSN(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if d.Name != "sqlite" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	slog.InfoContext(ctx, "Database ready",
		log.FieldComponent, log.ComponentStorage,
		log.FieldDialect, d.Name)

	return &Repository{
		db:      db,
		dialect: d,
		queries: New(db, d),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect reports the engine the repository talks to.
func (r *Repository) Dialect() string {
	return r.dialect.Name
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:        t.ID,
		Title:     t.Title,
		Amount:    t.Amount,
		SessionID: t.SessionID,
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTransactionID, t.ID,
		log.FieldAmount, t.Amount.String())
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	items, err := r.queries.ListTransactionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

func (r *Repository) SumTransactions(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	total, err := r.queries.SumTransactionsBySession(ctx, sessionID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

// GetTransaction returns a not-found application error when no row matches
// both id and sessionID.
func (r *Repository) GetTransaction(ctx context.Context, sessionID, id string) (core.Transaction, error) {
	t, err := r.queries.GetTransactionBySession(ctx, id, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound()
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (r *Repository) SchemaInfo(ctx context.Context) ([]map[string]any, error) {
	rows, err := r.queries.SchemaInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s schema: %w", r.dialect.Name, err)
	}
	return rows, nil
}
