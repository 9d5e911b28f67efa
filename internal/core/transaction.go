// Package core holds the ledger domain: transactions, signing rules and the
// application error kinds shared by storage, services and transport.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	TransactionType string

	// Transaction is a ledger entry owned by one session. Amount is stored
	// already signed: credits positive, debits negative.
	Transaction struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		Amount    decimal.Decimal `json:"amount"`
		SessionID string          `json:"session_id"`
		CreatedAt time.Time       `json:"created_at"`
	}

	// NewTransaction is the validated input of the create operation.
	// Type only decides the sign of Amount and is not stored.
	NewTransaction struct {
		Title  string
		Amount decimal.Decimal
		Type   TransactionType
	}

	// Summary is the net balance of a session.
	Summary struct {
		Amount decimal.Decimal `json:"amount"`
	}
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptySession    = errors.New("empty session id")
	ErrInvalidTxID     = errors.New("invalid transaction id")
	ErrMissingSignType = errors.New("transaction type is required to sign an amount")
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// SignedAmount applies the direction of t to amount.
func SignedAmount(t TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case Credit:
		return amount, nil
	case Debit:
		return amount.Neg(), nil
	case "":
		return decimal.Zero, ErrMissingSignType
	default:
		return decimal.Zero, ErrInvalidType
	}
}

func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Build turns the input into a Transaction owned by sessionID with a fresh id.
func (n NewTransaction) Build(sessionID string) (Transaction, error) {
	if sessionID == "" {
		return Transaction{}, ErrEmptySession
	}
	if err := n.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, err := SignedAmount(n.Type, n.Amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:        uuid.NewString(),
		Title:     n.Title,
		Amount:    amount,
		SessionID: sessionID,
	}, nil
}

// NewSessionID mints an opaque session token.
func NewSessionID() string {
	return uuid.NewString()
}

// ParseTransactionID returns the canonical form of a UUID transaction id.
func ParseTransactionID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidTxID
	}
	return id.String(), nil
}
