// Package health aggregates the process's liveness signals — database
// connectivity, how stale the last broker/quote sync is, market-data
// provider circuit-breaker state, and host resource pressure — into one
// snapshot for the /healthz endpoint.
package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/wealthfolio-core/internal/database"
)

// staleAfter is how long since the last completed sync before Check reports
// the sync leg as stale. The default sync schedule runs every four hours;
// twice that gives two missed runs of slack before paging.
const staleAfter = 8 * time.Hour

// DatabaseStatus is one database connection's connectivity check result.
type DatabaseStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SyncStatus reports how recently the background sync last completed.
type SyncStatus struct {
	LastCompleted time.Time `json:"last_completed,omitempty"`
	AgeSeconds    float64   `json:"age_seconds,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Stale         bool      `json:"stale"`
}

// HostStatus is a point-in-time host resource reading.
type HostStatus struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// Status is the full aggregated health snapshot.
type Status struct {
	Status    string            `json:"status"` // "ok" or "degraded"
	Databases []DatabaseStatus  `json:"databases"`
	Sync      SyncStatus        `json:"sync"`
	Providers map[string]string `json:"providers,omitempty"`
	Host      HostStatus        `json:"host"`
}

// SyncTracker reports the last completed (or failed) background sync run.
// scheduler.Scheduler satisfies this.
type SyncTracker interface {
	LastSync() (finished time.Time, errMsg string)
}

// CircuitTracker reports every registered market-data provider's circuit
// breaker state. marketdata.Registry satisfies this.
type CircuitTracker interface {
	CircuitStates() map[string]string
}

// Checker aggregates every health signal into one Status snapshot.
type Checker struct {
	databases map[string]*database.DB
	sync      SyncTracker
	providers CircuitTracker
}

// New builds a Checker. sync and providers may be nil, in which case their
// sections of Status are omitted rather than degrading the overall status.
func New(databases map[string]*database.DB, sync SyncTracker, providers CircuitTracker) *Checker {
	return &Checker{databases: databases, sync: sync, providers: providers}
}

// Check runs every connectivity check and returns the aggregated snapshot.
// It never returns an error: a failed database ping or an open circuit
// breaker is reported as "degraded" in the returned Status instead, so the
// caller always has something to serve.
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{Status: "ok"}

	for name, db := range c.databases {
		dbStatus := DatabaseStatus{Name: name, Healthy: true}
		if err := db.QuickCheck(ctx); err != nil {
			dbStatus.Healthy = false
			dbStatus.Error = err.Error()
			status.Status = "degraded"
		}
		status.Databases = append(status.Databases, dbStatus)
	}

	if c.sync != nil {
		finished, errMsg := c.sync.LastSync()
		syncStatus := SyncStatus{LastCompleted: finished, LastError: errMsg}
		if !finished.IsZero() {
			age := time.Since(finished)
			syncStatus.AgeSeconds = age.Seconds()
			syncStatus.Stale = age > staleAfter
		}
		if syncStatus.Stale || errMsg != "" {
			status.Status = "degraded"
		}
		status.Sync = syncStatus
	}

	if c.providers != nil {
		status.Providers = c.providers.CircuitStates()
		for _, state := range status.Providers {
			if state == "open" {
				status.Status = "degraded"
			}
		}
	}

	status.Host = readHostStatus()

	return status
}

// readHostStatus samples CPU and memory usage over a short window rather
// than blocking the health endpoint for a full second.
func readHostStatus() HostStatus {
	var h HostStatus
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		h.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemPercent = vm.UsedPercent
	}
	return h
}
