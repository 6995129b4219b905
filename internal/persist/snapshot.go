// Package persist moves the ledger state to and from the snapshot file.
package persist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/migrate"
	"github.com/starford/camledger/internal/models"
	"github.com/starford/camledger/internal/storage"
)

// DefaultSeed is used when no snapshot exists yet.
var DefaultSeed = []string{
	"Canon EOS R5",
	"Sony α7IV",
	"Nikon Z6II",
	"GoPro Hero 11",
	"DJI Ronin-S",
}

// Encode renders doc as indented JSON with non-ASCII text kept literal.
func Encode(doc models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("persist: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Seed builds a document with one empty camera per name, ids from 1.
func Seed(names []string) models.Document {
	doc := models.Document{Cameras: make([]models.Camera, 0, len(names))}
	for i, name := range names {
		doc.Cameras = append(doc.Cameras, models.Camera{
			ID:           i + 1,
			Name:         name,
			Reservations: []models.Reservation{},
		})
	}
	return doc
}

// Load reads and migrates the snapshot. A missing or unreadable file falls
// back to the seed so the service can always start; seeded reports that.
func Load(store storage.Provider, today calendar.Date, seed []string, logger *slog.Logger) (doc models.Document, seeded bool) {
	data, err := store.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error("persist: read snapshot failed", slog.String("path", store.Path()), slog.String("error", err.Error()))
		}
		logger.Info("persist: using seed cameras", slog.Int("cameras", len(seed)))
		return Seed(seed), true
	}

	doc, err = migrate.Document(data, today)
	if err != nil {
		logger.Error("persist: load snapshot failed", slog.String("path", store.Path()), slog.String("error", err.Error()))
		logger.Info("persist: using seed cameras", slog.Int("cameras", len(seed)))
		return Seed(seed), true
	}

	logger.Info("persist: loaded snapshot",
		slog.String("path", store.Path()),
		slog.Int("cameras", len(doc.Cameras)))
	return doc, false
}

func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
