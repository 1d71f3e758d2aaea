package server

import (
	"net/http"
	"time"
)

type recomputeRequest struct {
	AccountIDs []string   `json:"account_ids"`
	From       *time.Time `json:"from,omitempty"`
}

type recomputeSummary struct {
	AccountID string `json:"account_id"`
	Error     string `json:"error,omitempty"`
}

// handleRecomputeSnapshots implements SnapshotService.recompute: for each
// account, recompile its activity stream, fold it into snapshots, then
// revalue the same range.
func (s *Server) handleRecomputeSnapshots(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	end := time.Now()
	summaries := make([]recomputeSummary, 0, len(req.AccountIDs))

	for _, accountID := range req.AccountIDs {
		summary := recomputeSummary{AccountID: accountID}

		account, ok, err := s.container.Accounts.Get(accountID)
		if err != nil || !ok {
			summary.Error = "account not found"
			summaries = append(summaries, summary)
			continue
		}

		start := account.CreatedAt
		if req.From != nil {
			start = *req.From
		}

		events, err := s.container.Compiler.Compile(accountID, &start, &end)
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}

		if err := s.container.Snapshotter.Rebuild(accountID, account.Currency, start, end, events); err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}

		snapshots, err := s.container.Snapshots.SnapshotsInRange(accountID, start, end)
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}

		if err := s.container.Valuator.Value(accountID, start, end, snapshots); err != nil {
			summary.Error = err.Error()
		}

		summaries = append(summaries, summary)
	}

	writeJSON(w, http.StatusOK, summaries)
}

func parseDateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", v)
}

// handleGetValuations implements ValuationService.get_historical.
func (s *Server) handleGetValuations(w http.ResponseWriter, r *http.Request) {
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

	rows, err := s.container.Valuations.ValuationsForAccount(accountID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGetHoldings implements HoldingsService.list.
func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, errMissingParam("account_id"))
		return
	}
	asOf, err := parseDateParam(r, "as_of", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	holdings, err := s.container.Holdings.Project(accountID, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// handleGetAllocations implements AllocationService.compute.
func (s *Server) handleGetAllocations(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, errMissingParam("account_id"))
		return
	}
	asOf, err := parseDateParam(r, "as_of", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	holdings, err := s.container.Holdings.Project(accountID, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	result, err := s.container.Allocator.Compute(holdings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRunSync implements QuoteSyncService.sync: runs one sync pass
// synchronously and returns its outcomes. Progress is also published on
// the event bus for subscribers of the SSE stream.
func (s *Server) handleRunSync(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.container.SyncService.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}
