package events

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// outboxRecord is the msgpack envelope persisted for every event, independent
// of its concrete Data type. Replay reconstructs this generic shape rather
// than the original struct, since the outbox exists for durability and
// operator inspection, not for driving business logic a second time.
type outboxRecord struct {
	Type      Type
	Emitter   string
	Timestamp time.Time
	Payload   interface{}
}

// OutboxEntry is a durable event row returned by Pending, tagged with its
// row id so the caller can acknowledge it with MarkDelivered.
type OutboxEntry struct {
	ID      int64
	Type    Type
	Emitter string
	At      time.Time
	Payload interface{}
}

// Outbox persists every published event into the cache database so a
// consumer that was offline when an event fired can replay what it missed.
// It never blocks Publish on anything beyond a single local insert, and a
// write failure is logged by the Bus rather than propagated.
type Outbox struct {
	db *sql.DB
}

// NewOutbox builds an Outbox backed by the given database connection, which
// must already have the event_outbox table migrated.
func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// Append encodes evt.Data with msgpack and inserts a new outbox row.
func (o *Outbox) Append(evt Event) error {
	var payload interface{}
	if evt.Data != nil {
		payload = evt.Data
	}

	encoded, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal outbox payload: %w", err)
	}

	_, err = o.db.Exec(
		`INSERT INTO event_outbox (event_type, emitter, timestamp, payload) VALUES (?, ?, ?, ?)`,
		string(evt.Type), evt.Emitter, evt.Timestamp.UTC().Format(time.RFC3339Nano), encoded,
	)
	if err != nil {
		return fmt.Errorf("events: insert outbox row: %w", err)
	}
	return nil
}

// Pending returns up to limit undelivered entries in insertion order.
func (o *Outbox) Pending(limit int) ([]OutboxEntry, error) {
	rows, err := o.db.Query(
		`SELECT id, event_type, emitter, timestamp, payload FROM event_outbox WHERE delivered = 0 ORDER BY id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("events: query pending outbox rows: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var (
			id        int64
			eventType string
			emitter   string
			timestamp string
			payload   []byte
		)
		if err := rows.Scan(&id, &eventType, &emitter, &timestamp, &payload); err != nil {
			return nil, fmt.Errorf("events: scan outbox row: %w", err)
		}

		at, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("events: parse outbox timestamp: %w", err)
		}

		var decoded outboxRecord
		decoded.Payload = map[string]interface{}{}
		if err := msgpack.Unmarshal(payload, &decoded.Payload); err != nil {
			return nil, fmt.Errorf("events: unmarshal outbox payload: %w", err)
		}

		out = append(out, OutboxEntry{
			ID:      id,
			Type:    Type(eventType),
			Emitter: emitter,
			At:      at,
			Payload: decoded.Payload,
		})
	}
	return out, rows.Err()
}

// MarkDelivered flags the given rows so they're excluded from future Pending
// calls. A caller that fails partway through a replay batch should only pass
// the ids it actually finished handling.
func (o *Outbox) MarkDelivered(ids []int64) error {
	for _, id := range ids {
		if _, err := o.db.Exec(`UPDATE event_outbox SET delivered = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("events: mark outbox row %d delivered: %w", id, err)
		}
	}
	return nil
}

// Prune deletes delivered rows older than olderThan, keeping the table from
// growing unbounded once consumers have caught up.
func (o *Outbox) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339Nano)
	result, err := o.db.Exec(`DELETE FROM event_outbox WHERE delivered = 1 AND timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("events: prune outbox: %w", err)
	}
	return result.RowsAffected()
}
