package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM events`).Scan(&count); err != nil {
		t.Fatalf("events table missing: %v", err)
	}
}

func TestRecordAndList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	events := []Event{
		{At: at, Op: OpAdd, CameraID: 1, CameraName: "R5"},
		{At: at, Op: OpReserve, CameraID: 1, CameraName: "R5", User: "Alice", StartDate: "2026/1/15", EndDate: "2026/1/20", Purpose: "Shoot"},
		{Op: OpReserve, CameraID: 2, CameraName: "Sony", User: "Bob", StartDate: "2026/2/1", EndDate: "2026/2/2"},
	}
	for _, ev := range events {
		if err := db.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := db.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].User != "Bob" || all[2].Op != OpAdd {
		t.Errorf("not newest first: %+v", all)
	}
	if all[0].At.IsZero() {
		t.Error("zero At should be stamped")
	}

	cam1, err := db.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cam1) != 2 {
		t.Fatalf("camera 1 events = %d, want 2", len(cam1))
	}
	got := cam1[0]
	if got.Op != OpReserve || got.StartDate != "2026/1/15" || got.EndDate != "2026/1/20" || got.Purpose != "Shoot" {
		t.Errorf("unexpected event: %+v", got)
	}
	if !got.At.Equal(at) {
		t.Errorf("at = %v, want %v", got.At, at)
	}
}

func TestListLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = db.Record(ctx, Event{Op: OpRename, CameraID: 1})
	}
	got, err := db.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestListEmpty(t *testing.T) {
	db := testDB(t)
	got, err := db.List(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}
