package server

import (
	"net/http"
	"time"

	"github.com/aristath/wealthfolio-core/internal/activity"
	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/performance"
)

// handleGetPerformance implements PerformanceService.history/.summary for a
// single account: it assembles the valuation series and contribution cash
// flows performance.Compute needs, entirely from what the valuation engine
// and activity compiler already produced — it never touches a quote.
func (s *Server) handleGetPerformance(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, errMissingParam("account_id"))
		return
	}

	to, err := parseDateParam(r, "to", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	from, err := parseDateParam(r, "from", to.AddDate(-1, 0, 0))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, ok, err := s.container.Accounts.Get(accountID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	} else if !ok {
		writeError(w, http.StatusNotFound, errNotFound(accountID))
		return
	}

	rows, err := s.container.Valuations.ValuationsForAccount(accountID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	series := make([]performance.ValuationPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, performance.ValuationPoint{
			Date:            row.Date,
			TotalValue:      row.TotalValue,
			NetContribution: row.NetContribution,
		})
	}

	events, err := s.container.Compiler.Compile(accountID, &from, &to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cashFlows := make([]performance.CashFlow, 0)
	for _, ev := range events {
		if !ev.IsContribution {
			continue
		}
		cashFlows = append(cashFlows, performance.CashFlow{Date: ev.Activity.Timestamp, Amount: ev.CashDelta})
	}

	isHoldingsMode, err := s.accountIsHoldingsOnly(events)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	metrics := performance.Compute(series, cashFlows, isHoldingsMode)
	writeJSON(w, http.StatusOK, metrics)
}

// accountIsHoldingsOnly reports true when every distinct asset the account
// traded in range is priced in Holdings mode, the signal the performance
// engine uses to switch from TWR/MWR to price-based returns. An account
// with no asset activity (pure cash) is not Holdings-mode.
func (s *Server) accountIsHoldingsOnly(events []activity.Event) (bool, error) {
	seen := make(map[string]bool)
	sawAsset := false

	for _, ev := range events {
		if ev.Activity.AssetID == "" || seen[ev.Activity.AssetID] {
			continue
		}
		seen[ev.Activity.AssetID] = true

		asset, ok, err := s.container.Assets.Asset(ev.Activity.AssetID)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		sawAsset = true
		if asset.PricingMode != domain.PricingModeHoldings {
			return false, nil
		}
	}

	return sawAsset, nil
}
