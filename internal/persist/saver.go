package persist

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/starford/camledger/internal/models"
	"github.com/starford/camledger/internal/storage"
)

// Saver writes snapshots from a single goroutine. Requests made while a
// save is pending collapse into one write. A failed write is logged and
// never affects the in-memory state that asked for it.
type Saver struct {
	store  storage.Provider
	source func() models.Document
	logger *slog.Logger

	requestCh chan struct{}
	flushCh   chan chan error
	stopCh    chan struct{}
	stopped   chan struct{}
	closed    atomic.Bool

	lastDigest atomic.Value // string
}

// NewSaver starts the save loop. source is called at write time so each
// save captures the latest state.
func NewSaver(store storage.Provider, source func() models.Document, logger *slog.Logger) *Saver {
	s := &Saver{
		store:     store,
		source:    source,
		logger:    logger,
		requestCh: make(chan struct{}, 1),
		flushCh:   make(chan chan error),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	s.lastDigest.Store("")
	go s.run()
	return s
}

func (s *Saver) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.requestCh:
			_ = s.save()
		case reply := <-s.flushCh:
			reply <- s.save()
		}
	}
}

func (s *Saver) save() error {
	doc := s.source()
	data, err := Encode(doc)
	if err != nil {
		s.logger.Error("persist: save failed", slog.String("error", err.Error()))
		return err
	}

	prev := s.LastDigest()
	s.lastDigest.Store(digest(data))
	if err := s.store.Write(data); err != nil {
		s.lastDigest.Store(prev)
		s.logger.Error("persist: save failed", slog.String("path", s.store.Path()), slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("persist: saved snapshot", slog.String("path", s.store.Path()), slog.Int("cameras", len(doc.Cameras)))
	return nil
}

// Request schedules a save without waiting for it.
func (s *Saver) Request() {
	if s.closed.Load() {
		return
	}
	select {
	case s.requestCh <- struct{}{}:
	default:
	}
}

// Flush saves now and waits for the result.
func (s *Saver) Flush(ctx context.Context) error {
	if s.closed.Load() {
		return s.save()
	}
	reply := make(chan error, 1)
	select {
	case s.flushCh <- reply:
	case <-s.stopped:
		return s.save()
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastDigest is the SHA-256 of the most recent snapshot this Saver wrote.
func (s *Saver) LastDigest() string {
	return s.lastDigest.Load().(string)
}

// Close stops the loop. Pending requests are dropped; call Flush first to
// persist the final state.
func (s *Saver) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}
