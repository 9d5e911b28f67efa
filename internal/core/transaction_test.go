package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		typ     TransactionType
		amount  string
		want    string
		wantErr error
	}{
		{Credit, "500", "500", nil},
		{Debit, "500", "-500", nil},
		{Debit, "12.34", "-12.34", nil},
		{Credit, "0", "0", nil},
		{"", "1", "0", ErrMissingSignType},
		{"refund", "1", "0", ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.typ, tt.amount), func(t *testing.T) {
			got, err := SignedAmount(tt.typ, decimal.RequireFromString(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SignedAmount() error = %v, want %v", err, tt.wantErr)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("SignedAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewTransaction_Build(t *testing.T) {
	t.Run("debit is stored negative", func(t *testing.T) {
		in := NewTransaction{Title: "rent", Amount: decimal.NewFromInt(500), Type: Debit}
		tx, err := in.Build("session-a")
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !tx.Amount.Equal(decimal.NewFromInt(-500)) {
			t.Errorf("amount = %s, want -500", tx.Amount)
		}
		if tx.SessionID != "session-a" {
			t.Errorf("session = %q", tx.SessionID)
		}
		if _, err := uuid.Parse(tx.ID); err != nil {
			t.Errorf("id %q is not a uuid: %v", tx.ID, err)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		in := NewTransaction{Title: "x", Amount: decimal.NewFromInt(1), Type: Credit}
		a, _ := in.Build("s")
		b, _ := in.Build("s")
		if a.ID == b.ID {
			t.Fatalf("two builds produced the same id %s", a.ID)
		}
	})

	errCases := []struct {
		name    string
		in      NewTransaction
		session string
		want    error
	}{
		{"empty session", NewTransaction{Title: "x", Type: Credit}, "", ErrEmptySession},
		{"blank title", NewTransaction{Title: "  ", Type: Credit}, "s", ErrEmptyTitle},
		{"bad type", NewTransaction{Title: "x", Type: "refund"}, "s", ErrInvalidType},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.in.Build(tc.session); !errors.Is(err, tc.want) {
				t.Errorf("Build() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseTransactionID(t *testing.T) {
	id := uuid.NewString()
	got, err := ParseTransactionID(id)
	if err != nil || got != id {
		t.Fatalf("ParseTransactionID(%q) = %q, %v", id, got, err)
	}
	if _, err := ParseTransactionID("not-a-uuid"); !errors.Is(err, ErrInvalidTxID) {
		t.Errorf("expected ErrInvalidTxID, got %v", err)
	}
}

func TestAmountMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Summary{Amount: decimal.NewFromInt(-500)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":-500}` {
		t.Errorf("got %s", b)
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrNotFound())
	if !errors.Is(wrapped, ErrNotFound()) {
		t.Error("wrapped not-found should match ErrNotFound")
	}
	if errors.Is(wrapped, ErrUnauthorized()) {
		t.Error("not-found must not match unauthorized")
	}

	appErr, ok := AsError(wrapped)
	if !ok || appErr.Kind != KindNotFound || appErr.Message != "Not found" {
		t.Errorf("AsError() = %+v, %v", appErr, ok)
	}
	if _, ok := AsError(errors.New("boom")); ok {
		t.Error("plain error must not be an application error")
	}

	v := NewValidationError(Issue{Field: "title", Message: "is required"})
	if v.Error() != "Validation failed (title: is required)" {
		t.Errorf("validation message = %q", v.Error())
	}
}
