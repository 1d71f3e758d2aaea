// Package events implements the domain-event bus: a best-effort,
// non-blocking, unordered-across-emitters pub/sub used to decouple the five
// engines. No engine calls another directly; each publishes a typed event
// once its mutation has committed, and interested consumers subscribe.
package events

import "time"

// Type identifies the kind of domain event. New engines add new Types here
// rather than overloading an existing one.
type Type string

const (
	AssetsCreated        Type = "AssetsCreated"
	ActivitiesChanged    Type = "ActivitiesChanged"
	AccountChanged       Type = "AccountChanged"
	QuotesImported       Type = "QuotesImported"
	TrackingModeSwitched Type = "TrackingModeSwitched"

	// SyncStarted/SyncCompleted/SyncFailed are emitted by the background
	// scheduler around each broker-sync run.
	SyncStarted   Type = "SyncStarted"
	SyncCompleted Type = "SyncCompleted"
	SyncFailed    Type = "SyncFailed"
)

// Data is the interface every event payload implements.
type Data interface {
	EventType() Type
}

// AssetsCreatedData is emitted after one or more new assets are persisted.
type AssetsCreatedData struct {
	AssetIDs []string `json:"asset_ids"`
}

func (d *AssetsCreatedData) EventType() Type { return AssetsCreated }

// ActivitiesChangedData is emitted after activities are inserted, edited, or
// deleted for an account; the snapshot engine subscribes to this to know
// which account/date ranges need recomputation.
type ActivitiesChangedData struct {
	AccountID string    `json:"account_id"`
	FromDate  time.Time `json:"from_date"`
}

func (d *ActivitiesChangedData) EventType() Type { return ActivitiesChanged }

// AccountChangedData is emitted after an account's metadata (name, currency,
// active flag) changes.
type AccountChangedData struct {
	AccountID string `json:"account_id"`
}

func (d *AccountChangedData) EventType() Type { return AccountChanged }

// QuotesImportedData is emitted after the quote sync service or a manual
// import persists new quotes for one or more assets.
type QuotesImportedData struct {
	AssetIDs []string  `json:"asset_ids"`
	AsOf     time.Time `json:"as_of"`
}

func (d *QuotesImportedData) EventType() Type { return QuotesImported }

// TrackingModeSwitchedData is emitted when an asset moves between
// market-priced and holdings-only pricing modes, since this changes whether
// TWR/MWR are computable going forward.
type TrackingModeSwitchedData struct {
	AssetID string `json:"asset_id"`
	Mode    string `json:"mode"`
}

func (d *TrackingModeSwitchedData) EventType() Type { return TrackingModeSwitched }

// SyncStatusData is emitted at the start, successful completion, or failure
// of a scheduled broker/quote sync run.
type SyncStatusData struct {
	RunID    string    `json:"run_id"`
	Error    string    `json:"error,omitempty"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitempty"`
}

func (d *SyncStatusData) EventType() Type {
	if d.Error != "" {
		return SyncFailed
	}
	if !d.Finished.IsZero() {
		return SyncCompleted
	}
	return SyncStarted
}

// Event is an envelope carrying a typed payload plus emission metadata.
type Event struct {
	Type      Type
	Emitter   string
	Timestamp time.Time
	Data      Data
}
