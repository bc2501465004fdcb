package http

import (
	"net/http"

	"plenio/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, subject string) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	tx, err := s.ledger.Transactions.Create(r.Context(), subject, in)
	if err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	writeJSON(w, tx)
}

// handleListTransactions returns at most 100 transactions, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, subject string) {
	txs, err := s.ledger.Transactions.List(r.Context(), subject)
	if err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, txs)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, subject string) {
	if err := s.ledger.Transactions.Delete(r.Context(), subject, r.PathValue("id")); err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	MessageResponse("Transaction deleted").Write(w)
}
