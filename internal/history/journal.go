package history

import (
	"context"
	"fmt"
	"time"
)

// Op names a ledger mutation.
type Op string

const (
	OpReserve Op = "reserve"
	OpReturn  Op = "return"
	OpCancel  Op = "cancel"
	OpAdd     Op = "add_camera"
	OpDelete  Op = "delete_camera"
	OpRename  Op = "rename_camera"
)

const defaultLimit = 50

// Event is one journal row.
type Event struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	Op         Op        `json:"op"`
	CameraID   int       `json:"camera_id"`
	CameraName string    `json:"camera_name,omitempty"`
	User       string    `json:"user,omitempty"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	Purpose    string    `json:"purpose,omitempty"`
}

// Journal is what the lending service needs from the history store.
type Journal interface {
	Record(ctx context.Context, ev Event) error
	List(ctx context.Context, cameraID, limit int) ([]Event, error)
}

var _ Journal = (*DB)(nil)

// Record appends ev. A zero At is stamped with the current time.
func (db *DB) Record(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO events (at, op, camera_id, camera_name, user_name, start_date, end_date, purpose)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.At.UTC(), string(ev.Op), ev.CameraID, ev.CameraName, ev.User, ev.StartDate, ev.EndDate, ev.Purpose)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// List returns events newest first. cameraID 0 means every camera; a
// non-positive limit uses the default.
func (db *DB) List(ctx context.Context, cameraID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, at, op, camera_id, camera_name, user_name, start_date, end_date, purpose
		FROM events
		WHERE ? = 0 OR camera_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, cameraID, cameraID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var ev Event
		var op string
		if err := rows.Scan(&ev.ID, &ev.At, &op, &ev.CameraID, &ev.CameraName, &ev.User, &ev.StartDate, &ev.EndDate, &ev.Purpose); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		ev.Op = Op(op)
		out = append(out, ev)
	}
	return out, rows.Err()
}
