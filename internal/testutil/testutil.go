// Package testutil provides shared test helpers for ledgers, journals and data files.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/history"
	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/models"
	"github.com/starford/camledger/internal/storage"
)

// Today is the fixed date used by tests that need a stable clock.
var Today = calendar.Date{Year: 2026, Month: 1, Day: 10}

// Clock returns Today.
func Clock() calendar.Date { return Today }

// TestJournal creates a temporary SQLite history database that is automatically cleaned up.
func TestJournal(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "camledger-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLedger returns a ledger holding two cameras with no reservations.
func TestLedger() *ledger.Ledger {
	return ledger.New([]models.Camera{
		{ID: 1, Name: "Canon EOS R5", Reservations: []models.Reservation{}},
		{ID: 2, Name: "Sony α7IV", Reservations: []models.Reservation{}},
	})
}

// TestStore creates a data file provider inside a temp directory.
// The file itself does not exist yet.
func TestStore(t *testing.T) *storage.File {
	t.Helper()
	store, err := storage.NewFile(filepath.Join(t.TempDir(), "camera_data.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}
