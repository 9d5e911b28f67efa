package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"ledger/internal/core"
)

// TransactionService is what the transaction routes need from the ledger.
type TransactionService interface {
	Create(ctx context.Context, sessionID string, in core.NewTransaction) (core.Transaction, error)
	List(ctx context.Context, sessionID string) ([]core.Transaction, error)
	Summary(ctx context.Context, sessionID string) (core.Summary, error)
	Get(ctx context.Context, sessionID, id string) (core.Transaction, error)
}

type listTransactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
}

type summaryResponse struct {
	Summary core.Summary `json:"summary"`
}

type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, sessionID string) error {
	items, err := s.ledger.List(r.Context(), sessionID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return NewJSONResponse().JSON(listTransactionsResponse{Transactions: items}).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, sessionID string) error {
	summary, err := s.ledger.Summary(r.Context(), sessionID)
	if err != nil {
		return err
	}
	return NewJSONResponse().JSON(summaryResponse{Summary: summary}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, sessionID string) error {
	params := newTransactionParams(mux.Vars(r)["transactionId"])
	if err := s.validator.Struct(params); err != nil {
		return err
	}

	t, err := s.ledger.Get(r.Context(), sessionID, params.TransactionID)
	if err != nil {
		return err
	}
	return NewJSONResponse().JSON(transactionResponse{Transaction: t}).Write(w)
}

// handleCreateTransaction validates the body, then reuses or mints the
// session. The cookie is only issued once the row is stored.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) error {
	var req createTransactionRequest
	if err := s.validator.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	sessionID, minted := s.sessions.Resolve(r)

	if _, err := s.ledger.Create(r.Context(), sessionID, req.toDomain()); err != nil {
		return err
	}

	resp := NewJSONResponse().Status(http.StatusCreated)
	if minted {
		resp.Cookie(s.sessions.Cookie(sessionID))
	}
	return resp.Write(w)
}
