package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/events"
)

type createActivityRequest struct {
	AccountID        string  `json:"account_id"`
	AssetID          string  `json:"asset_id"`
	Type             string  `json:"type"`
	Timestamp        string  `json:"timestamp"` // RFC3339
	Quantity         *string `json:"quantity"`
	UnitPrice        *string `json:"unit_price"`
	Amount           *string `json:"amount"`
	Fee              string  `json:"fee"`
	Currency         string  `json:"currency"`
	CounterpartyID   string  `json:"counterparty_id"`
	SplitNumerator   int64   `json:"split_numerator"`
	SplitDenominator int64   `json:"split_denominator"`
	IdempotencyKey   string  `json:"idempotency_key"`
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	quantity, err := parseOptionalDecimal(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	unitPrice, err := parseOptionalDecimal(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := parseOptionalDecimal(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fee := decimal.Zero
	if req.Fee != "" {
		fee, err = decimal.NewFromString(req.Fee)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	activity := domain.Activity{
		ID:               uuid.NewString(),
		AccountID:        req.AccountID,
		AssetID:          req.AssetID,
		Type:             domain.ActivityType(req.Type),
		Timestamp:        ts,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Amount:           amount,
		Fee:              fee,
		Currency:         req.Currency,
		CounterpartyID:   req.CounterpartyID,
		SplitNumerator:   req.SplitNumerator,
		SplitDenominator: req.SplitDenominator,
		IdempotencyKey:   idempotencyKey,
	}

	if err := s.container.Activities.Insert(activity); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.container.Bus.Publish(events.Event{
		Type: events.ActivitiesChanged, Emitter: "server", Timestamp: time.Now(),
		Data: &events.ActivitiesChangedData{AccountID: activity.AccountID, FromDate: activity.Timestamp},
	})

	writeJSON(w, http.StatusCreated, activity)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, errMissingParam("account_id"))
		return
	}

	activities, err := s.container.Activities.ActivitiesForAccount(accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
