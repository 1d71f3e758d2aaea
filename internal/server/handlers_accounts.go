package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/events"
)

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	account := domain.Account{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Currency:  req.Currency,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.container.Accounts.Create(account); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.container.Bus.Publish(events.Event{
		Type: events.AccountChanged, Emitter: "server", Timestamp: time.Now(),
		Data: &events.AccountChangedData{AccountID: account.ID},
	})

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")
	account, ok, err := s.container.Accounts.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.container.Accounts.ListActive()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}
