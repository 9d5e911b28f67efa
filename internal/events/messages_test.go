package events

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func TestTransactionCreated_JSON(t *testing.T) {
	tx := core.Transaction{
		ID:        "0b7c4a64-4c41-4b7e-9c52-1f0f5c6c2d11",
		Title:     "rent",
		Amount:    decimal.NewFromInt(-800),
		SessionID: "s-1",
	}

	msg := NewTransactionCreated(tx)
	if msg.Key() != "s-1" {
		t.Errorf("Key() = %q", msg.Key())
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(body), `"amount":-800`) {
		t.Errorf("amount not encoded as a number: %s", body)
	}
	if !strings.Contains(string(body), `"type":"transaction.created"`) {
		t.Errorf("missing event type: %s", body)
	}

	back, err := TransactionCreatedFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionCreatedFromJSON: %v", err)
	}
	if back.TransactionID != tx.ID || !back.Amount.Equal(tx.Amount) {
		t.Errorf("decoded message = %+v", back)
	}
}

func TestTransactionCreatedFromJSON_Invalid(t *testing.T) {
	if _, err := TransactionCreatedFromJSON([]byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
