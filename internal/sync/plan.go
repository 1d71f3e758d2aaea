// Package sync drives the market-data client from the activity graph. It
// decides, per symbol, whether and how far back to fetch quotes; it never
// fetches a quote itself (that's internal/marketdata) and never decides how
// a quote is applied to a holding (that's internal/valuation).
package sync

import "time"

// Mode selects the fetch strategy for a symbol's sync window.
type Mode int

const (
	// ModeNone skips the symbol entirely this run.
	ModeNone Mode = iota
	// ModeIncremental fetches from the symbol's last synced date forward.
	ModeIncremental
	// ModeBackfillHistory is reported when the caller requests a forced
	// backfill. ComputeWindow does not take the mode into account, so the
	// window is the same as for ModeIncremental and the last synced date is
	// not ignored.
	ModeBackfillHistory
)

// SymbolSyncPlan is the per-symbol state the sync service maintains across
// runs. Active tracks the "nonzero position today" invariant; once a
// position closes, the plan stays active through GraceExpiry so the grace
// period's trailing quotes are captured before the symbol goes dormant.
type SymbolSyncPlan struct {
	Symbol            string
	FirstActivityDate time.Time
	LastActivityDate  time.Time
	Active            bool
	LastSyncedDate    time.Time // zero value means never synced
	EarliestSynced    time.Time
	GraceExpiry       time.Time // last position close + grace period; zero when Active
}

// PlanningInputs are the configured knobs that shape a sync window.
type PlanningInputs struct {
	BufferDays      int // history buffer before first activity, default 45
	MinLookbackDays int // minimum backoff to smooth over weekends/holidays, default 5
	GraceDays       int // days to keep syncing after a position closes, default 45
	Today           time.Time
}

// Window is the concrete [Start, End] date range a sync run should fetch.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsActive reports whether plan's position is still open or within its
// grace period as of today — the "active iff nonzero position today,
// or within grace period of the last close" invariant.
func IsActive(plan SymbolSyncPlan, today time.Time) bool {
	if plan.Active {
		return true
	}
	if plan.GraceExpiry.IsZero() {
		return false
	}
	return !today.After(plan.GraceExpiry)
}

// ComputeWindow derives the fetch window for plan under inputs, implementing
// spec's three-step planner: earliest-we-care-about date, backed-off start,
// and end-of-window pinned to today.
func ComputeWindow(plan SymbolSyncPlan, inputs PlanningInputs) Window {
	earliestCareAbout := plan.FirstActivityDate.AddDate(0, 0, -inputs.BufferDays)

	start := earliestCareAbout
	if !plan.LastSyncedDate.IsZero() && plan.LastSyncedDate.After(start) {
		start = plan.LastSyncedDate
	}

	lookbackFloor := inputs.Today.AddDate(0, 0, -inputs.MinLookbackDays)
	if start.After(lookbackFloor) {
		start = lookbackFloor
	}

	return Window{Start: start, End: inputs.Today}
}

// DetermineMode picks the sync strategy for a symbol given its plan and
// whether the caller requested a forced backfill.
func DetermineMode(plan SymbolSyncPlan, today time.Time, forceBackfillDays int) Mode {
	if !IsActive(plan, today) {
		return ModeNone
	}
	if forceBackfillDays > 0 {
		return ModeBackfillHistory
	}
	return ModeIncremental
}
