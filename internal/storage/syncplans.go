package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/sync"
)

// SyncPlanRepository persists SymbolSyncPlan rows in the cache database and
// implements sync.PlanStore.
type SyncPlanRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSyncPlanRepository(db *sql.DB, log zerolog.Logger) *SyncPlanRepository {
	return &SyncPlanRepository{db: db, log: log.With().Str("repo", "sync_plans").Logger()}
}

func (r *SyncPlanRepository) Get(symbol string) (sync.SymbolSyncPlan, bool, error) {
	row := r.db.QueryRow(`
		SELECT symbol, first_activity_date, last_activity_date, active, last_synced_date, earliest_synced, grace_expiry
		FROM quote_sync_state WHERE symbol = ?
	`, symbol)
	return scanSyncPlan(row)
}

func (r *SyncPlanRepository) Upsert(plan sync.SymbolSyncPlan) error {
	_, err := r.db.Exec(`
		INSERT INTO quote_sync_state (
			symbol, first_activity_date, last_activity_date, active, last_synced_date, earliest_synced, grace_expiry
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			first_activity_date = excluded.first_activity_date,
			last_activity_date = excluded.last_activity_date,
			active = excluded.active,
			last_synced_date = excluded.last_synced_date,
			earliest_synced = excluded.earliest_synced,
			grace_expiry = excluded.grace_expiry
	`,
		plan.Symbol, formatDate(plan.FirstActivityDate), formatDate(plan.LastActivityDate), boolToInt(plan.Active),
		formatDateOrNull(plan.LastSyncedDate), formatDateOrNull(plan.EarliestSynced), formatDateOrNull(plan.GraceExpiry),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert sync plan %s: %w", plan.Symbol, err)
	}
	return nil
}

// AllActiveOrGraced returns every plan that is active or within its grace
// period as of today, the working set for one sync run.
func (r *SyncPlanRepository) AllActiveOrGraced(today time.Time) ([]sync.SymbolSyncPlan, error) {
	rows, err := r.db.Query(`
		SELECT symbol, first_activity_date, last_activity_date, active, last_synced_date, earliest_synced, grace_expiry
		FROM quote_sync_state
		WHERE active = 1 OR (grace_expiry IS NOT NULL AND grace_expiry >= ?)
	`, formatDate(today))
	if err != nil {
		return nil, fmt.Errorf("storage: list active sync plans: %w", err)
	}
	defer rows.Close()

	var out []sync.SymbolSyncPlan
	for rows.Next() {
		p, ok, err := scanSyncPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan sync plan: %w", err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, rows.Err()
}

func scanSyncPlan(row rowScanner) (sync.SymbolSyncPlan, bool, error) {
	var p sync.SymbolSyncPlan
	var firstActivity, lastActivity string
	var active int
	var lastSynced, earliestSynced, graceExpiry sql.NullString

	if err := row.Scan(&p.Symbol, &firstActivity, &lastActivity, &active, &lastSynced, &earliestSynced, &graceExpiry); err != nil {
		if err == sql.ErrNoRows {
			return sync.SymbolSyncPlan{}, false, nil
		}
		return sync.SymbolSyncPlan{}, false, err
	}

	p.Active = active != 0
	var err error
	if p.FirstActivityDate, err = time.Parse("2006-01-02", firstActivity); err != nil {
		return sync.SymbolSyncPlan{}, false, fmt.Errorf("parse first_activity_date: %w", err)
	}
	if p.LastActivityDate, err = time.Parse("2006-01-02", lastActivity); err != nil {
		return sync.SymbolSyncPlan{}, false, fmt.Errorf("parse last_activity_date: %w", err)
	}
	if p.LastSyncedDate, err = parseNullDate(lastSynced); err != nil {
		return sync.SymbolSyncPlan{}, false, err
	}
	if p.EarliestSynced, err = parseNullDate(earliestSynced); err != nil {
		return sync.SymbolSyncPlan{}, false, err
	}
	if p.GraceExpiry, err = parseNullDate(graceExpiry); err != nil {
		return sync.SymbolSyncPlan{}, false, err
	}

	return p, true, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func formatDateOrNull(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatDate(t)
}

func parseNullDate(ns sql.NullString) (time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", ns.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", ns.String, err)
	}
	return t, nil
}
