package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
)

type memoryStore struct {
	rows      []core.Transaction
	insertErr error
}

func (m *memoryStore) InsertTransaction(_ context.Context, t core.Transaction) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, t)
	return nil
}

func (m *memoryStore) ListTransactions(_ context.Context, sessionID string) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for _, t := range m.rows {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryStore) SumTransactions(_ context.Context, sessionID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.rows {
		if t.SessionID == sessionID {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *memoryStore) GetTransaction(_ context.Context, sessionID, id string) (core.Transaction, error) {
	for _, t := range m.rows {
		if t.ID == id && t.SessionID == sessionID {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound()
}

type recordingPublisher struct {
	published []core.Transaction
	err       error
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, t core.Transaction) error {
	p.published = append(p.published, t)
	return p.err
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func TestTransactionService_CreateSignsAmount(t *testing.T) {
	tests := []struct {
		name string
		typ  core.TransactionType
		want int64
	}{
		{"credit", core.Credit, 500},
		{"debit", core.Debit, -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			svc := NewTransactionService(store, nil, quietLogger())

			_, err := svc.Create(context.Background(), "s", core.NewTransaction{
				Title: "t", Amount: decimal.NewFromInt(500), Type: tt.typ,
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if len(store.rows) != 1 {
				t.Fatalf("stored %d rows", len(store.rows))
			}
			if !store.rows[0].Amount.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("stored amount %s, want %d", store.rows[0].Amount, tt.want)
			}
		})
	}
}

func TestTransactionService_CreateRejectsBeforeInsert(t *testing.T) {
	tests := []struct {
		name  string
		in    core.NewTransaction
		field string
	}{
		{"missing title", core.NewTransaction{Amount: decimal.NewFromInt(1), Type: core.Credit}, "title"},
		{"invalid type", core.NewTransaction{Title: "x", Amount: decimal.NewFromInt(1), Type: "transfer"}, "type"},
		{"missing type", core.NewTransaction{Title: "x", Amount: decimal.NewFromInt(1)}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			svc := NewTransactionService(store, nil, quietLogger())

			_, err := svc.Create(context.Background(), "s", tt.in)
			appErr, ok := core.AsError(err)
			if !ok || appErr.Kind != core.KindValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
			if len(appErr.Issues) != 1 || appErr.Issues[0].Field != tt.field {
				t.Errorf("issues = %+v, want field %q", appErr.Issues, tt.field)
			}
			if len(store.rows) != 0 {
				t.Error("row inserted despite invalid input")
			}
		})
	}
}

func TestTransactionService_CreatePublishFailureIsNotFatal(t *testing.T) {
	store := &memoryStore{}
	pub := &recordingPublisher{err: errors.New("broker unreachable")}
	svc := NewTransactionService(store, pub, quietLogger())

	tx, err := svc.Create(context.Background(), "s", core.NewTransaction{
		Title: "rent", Amount: decimal.NewFromInt(800), Type: core.Debit,
	})
	if err != nil {
		t.Fatalf("Create should succeed when publishing fails: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].ID != tx.ID {
		t.Errorf("published = %+v", pub.published)
	}
	if len(store.rows) != 1 {
		t.Errorf("stored %d rows, want 1", len(store.rows))
	}
}

func TestTransactionService_CreateStoreFailure(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("disk full")}
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub, quietLogger())

	_, err := svc.Create(context.Background(), "s", core.NewTransaction{
		Title: "x", Amount: decimal.NewFromInt(1), Type: core.Credit,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := core.AsError(err); ok {
		t.Errorf("storage failure should not be an application error: %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("event published for a failed insert")
	}
}

func TestTransactionService_SessionIsolation(t *testing.T) {
	store := &memoryStore{}
	svc := NewTransactionService(store, nil, quietLogger())
	ctx := context.Background()

	b, err := svc.Create(ctx, "b", core.NewTransaction{Title: "b", Amount: decimal.NewFromInt(10), Type: core.Credit})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List(ctx, "a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("session a sees %d transactions of session b", len(list))
	}

	if _, err := svc.Get(ctx, "a", b.ID); !errors.Is(err, core.ErrNotFound()) {
		t.Errorf("Get across sessions: err = %v, want not found", err)
	}
	if got, err := svc.Get(ctx, "b", b.ID); err != nil || got.ID != b.ID {
		t.Errorf("Get own transaction: %+v, %v", got, err)
	}
}

func TestTransactionService_Summary(t *testing.T) {
	store := &memoryStore{}
	svc := NewTransactionService(store, nil, quietLogger())
	ctx := context.Background()

	for _, in := range []core.NewTransaction{
		{Title: "in", Amount: decimal.NewFromInt(300), Type: core.Credit},
		{Title: "out", Amount: decimal.NewFromInt(800), Type: core.Debit},
	} {
		if _, err := svc.Create(ctx, "s", in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	sum, err := svc.Summary(ctx, "s")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !sum.Amount.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("summary = %s, want -500", sum.Amount)
	}

	empty, err := svc.Summary(ctx, "fresh")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !empty.Amount.Equal(decimal.Zero) {
		t.Errorf("empty summary = %s, want 0", empty.Amount)
	}
}

func TestTransactionService_RequiresSession(t *testing.T) {
	svc := NewTransactionService(&memoryStore{}, nil, quietLogger())
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["list"] = svc.List(ctx, "")
	_, checks["summary"] = svc.Summary(ctx, "")
	_, checks["get"] = svc.Get(ctx, "", "0b7c4a64-4c41-4b7e-9c52-1f0f5c6c2d11")
	_, checks["create"] = svc.Create(ctx, "", core.NewTransaction{Title: "x", Amount: decimal.NewFromInt(1), Type: core.Credit})

	for op, err := range checks {
		if !errors.Is(err, core.ErrUnauthorized()) {
			t.Errorf("%s: err = %v, want unauthorized", op, err)
		}
	}
}

func TestTransactionService_GetRejectsMalformedID(t *testing.T) {
	svc := NewTransactionService(&memoryStore{}, nil, quietLogger())

	_, err := svc.Get(context.Background(), "s", "not-a-uuid")
	appErr, ok := core.AsError(err)
	if !ok || appErr.Kind != core.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
