// Package services provides the ledger operations used by the transport layer.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
)

// TransactionStore is the persistence port of the ledger.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, sessionID string) ([]core.Transaction, error)
	SumTransactions(ctx context.Context, sessionID string) (decimal.Decimal, error)
	GetTransaction(ctx context.Context, sessionID, id string) (core.Transaction, error)
}

// EventPublisher announces committed writes. It may be nil.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, t core.Transaction) error
}

// TransactionService orchestrates ledger operations across storage and the event bus
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	logger    *log.Logger
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Create signs the amount, stores a new transaction for sessionID and
// publishes a transaction.created event.
func (s *TransactionService) Create(ctx context.Context, sessionID string, in core.NewTransaction) (core.Transaction, error) {
	t, err := in.Build(sessionID)
	if err != nil {
		return core.Transaction{}, buildError(err)
	}

	if err := s.store.InsertTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	log.NewStructuredLogger(s.logger).LogTransactionCreated(ctx, t.ID, t.SessionID, t.Amount.String())

	// Don't fail the request, the row is committed
	if err := s.publish(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction created event",
			log.FieldTransactionID, t.ID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	}

	return t, nil
}

func (s *TransactionService) List(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	if sessionID == "" {
		return nil, core.ErrUnauthorized()
	}
	return s.store.ListTransactions(ctx, sessionID)
}

func (s *TransactionService) Summary(ctx context.Context, sessionID string) (core.Summary, error) {
	if sessionID == "" {
		return core.Summary{}, core.ErrUnauthorized()
	}
	total, err := s.store.SumTransactions(ctx, sessionID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summary{Amount: total}, nil
}

// Get returns the transaction only when it belongs to sessionID.
func (s *TransactionService) Get(ctx context.Context, sessionID, id string) (core.Transaction, error) {
	if sessionID == "" {
		return core.Transaction{}, core.ErrUnauthorized()
	}
	canonical, err := core.ParseTransactionID(id)
	if err != nil {
		return core.Transaction{}, core.NewValidationError(core.Issue{Field: "transactionId", Message: "must be a valid UUID"})
	}
	return s.store.GetTransaction(ctx, sessionID, canonical)
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishTransactionCreated(ctx, t)
}

func buildError(err error) error {
	switch {
	case errors.Is(err, core.ErrEmptySession):
		return core.ErrUnauthorized()
	case errors.Is(err, core.ErrEmptyTitle):
		return core.NewValidationError(core.Issue{Field: "title", Message: "is required"})
	case errors.Is(err, core.ErrInvalidType), errors.Is(err, core.ErrMissingSignType):
		return core.NewValidationError(core.Issue{Field: "type", Message: "must be one of: credit debit"})
	default:
		return fmt.Errorf("build transaction: %w", err)
	}
}
