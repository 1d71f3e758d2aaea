package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/identifier"
)

type createAssetRequest struct {
	ID                string  `json:"id"` // canonical "PRIMARY:QUALIFIER" id
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Currency          string  `json:"currency"`
	Kind              string  `json:"kind"`
	PricingMode       string  `json:"pricing_mode"`
	PreferredProvider string  `json:"preferred_provider"`
	PurchasePrice     *string `json:"purchase_price"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := identifier.Parse(req.ID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pricingMode := domain.PricingMode(req.PricingMode)
	if pricingMode == "" {
		pricingMode = domain.PricingModeMarket
	}

	asset := domain.Asset{
		ID:                req.ID,
		Symbol:            req.Symbol,
		Name:              req.Name,
		Currency:          req.Currency,
		Kind:              identifier.Kind(req.Kind),
		PricingMode:       pricingMode,
		PreferredProvider: req.PreferredProvider,
	}
	if req.PurchasePrice != nil {
		p, err := decimal.NewFromString(*req.PurchasePrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		asset.PurchasePrice = &p
	}

	if err := s.container.Assets.Create(asset); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.container.Bus.Publish(events.Event{
		Type: events.AssetsCreated, Emitter: "server", Timestamp: time.Now(),
		Data: &events.AssetsCreatedData{AssetIDs: []string{asset.ID}},
	})

	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assetID")
	asset, ok, err := s.container.Assets.Asset(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, asset)
}
