// Package events defines the messages the ledger emits after a write.
package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const TypeTransactionCreated = "transaction.created"

// TransactionCreated announces a new ledger entry. Amount is the signed value
// as stored.
type TransactionCreated struct {
	Type          string          `json:"type"`
	TransactionID string          `json:"transaction_id"`
	SessionID     string          `json:"session_id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewTransactionCreated(t core.Transaction) *TransactionCreated {
	return &TransactionCreated{
		Type:          TypeTransactionCreated,
		TransactionID: t.ID,
		SessionID:     t.SessionID,
		Title:         t.Title,
		Amount:        t.Amount,
		Timestamp:     time.Now().UTC(),
	}
}

// Key partitions messages by session so one session's events stay ordered.
func (m *TransactionCreated) Key() string {
	return m.SessionID
}

func (m *TransactionCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedFromJSON(data []byte) (*TransactionCreated, error) {
	var msg TransactionCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
