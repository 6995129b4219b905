// Package lending is the operation surface used by the HTTP and MCP
// transports. It supplies "today" to the ledger and fans every change out
// to the journal, the saver and live clients. Fan-out failures are logged
// and never returned.
package lending

import (
	"context"
	"log/slog"

	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/history"
	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/models"
)

// Publisher pushes a snapshot to live clients.
type Publisher interface {
	PublishSnapshot(snapshot any)
}

// SaveRequester schedules an asynchronous snapshot save.
type SaveRequester interface {
	Request()
}

// Service coordinates the ledger with its collaborators.
type Service struct {
	ledger    *ledger.Ledger
	clock     func() calendar.Date
	journal   history.Journal
	saver     SaveRequester
	publisher Publisher
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the source of today's date.
func WithClock(clock func() calendar.Date) Option {
	return func(s *Service) { s.clock = clock }
}

// WithJournal records every change in j.
func WithJournal(j history.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithSaver requests a save after every change.
func WithSaver(r SaveRequester) Option {
	return func(s *Service) { s.saver = r }
}

// WithPublisher pushes a snapshot after every change.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wraps l.
func NewService(l *ledger.Ledger, opts ...Option) *Service {
	s := &Service{ledger: l, clock: calendar.Today, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the date every operation is evaluated against.
func (s *Service) Today() calendar.Date { return s.clock() }

// Snapshot returns the current derived view of all cameras.
func (s *Service) Snapshot() ledger.Snapshot {
	return s.ledger.ListAll(s.clock())
}

// Camera returns one camera view.
func (s *Service) Camera(id int) (ledger.CameraView, error) {
	return s.ledger.Camera(id, s.clock())
}

// Document returns the persistable state.
func (s *Service) Document() models.Document {
	return s.ledger.Document()
}

// Reserve validates and stores a reservation.
func (s *Service) Reserve(ctx context.Context, id int, req ledger.ReserveRequest) (models.Reservation, error) {
	r, err := s.ledger.Reserve(id, req, s.clock())
	if err != nil {
		return models.Reservation{}, err
	}
	s.changed(ctx, reservationEvent(history.OpReserve, id, s.cameraName(id), r))
	return r, nil
}

// Return ends the camera's active loan, if it has one.
func (s *Service) Return(ctx context.Context, id int) (models.Reservation, bool) {
	r, ok := s.ledger.ReturnActive(id, s.clock())
	if ok {
		s.changed(ctx, reservationEvent(history.OpReturn, id, s.cameraName(id), r))
	}
	return r, ok
}

// Cancel removes reservations stored with exactly start and end.
func (s *Service) Cancel(ctx context.Context, id int, start, end string) int {
	removed := s.ledger.Cancel(id, start, end)
	if len(removed) == 0 {
		return 0
	}
	name := s.cameraName(id)
	for _, r := range removed {
		s.record(ctx, reservationEvent(history.OpCancel, id, name, r))
	}
	s.notify()
	return len(removed)
}

// AddCamera creates a camera and returns its id.
func (s *Service) AddCamera(ctx context.Context, name string) (int, error) {
	id, err := s.ledger.AddCamera(name)
	if err != nil {
		return 0, err
	}
	s.changed(ctx, history.Event{Op: history.OpAdd, CameraID: id, CameraName: s.cameraName(id)})
	return id, nil
}

// DeleteCamera removes a camera that is not checked out.
func (s *Service) DeleteCamera(ctx context.Context, id int) (bool, error) {
	name := s.cameraName(id)
	deleted, err := s.ledger.DeleteCamera(id, s.clock())
	if err != nil || !deleted {
		return deleted, err
	}
	s.changed(ctx, history.Event{Op: history.OpDelete, CameraID: id, CameraName: name})
	return true, nil
}

// RenameCamera changes a camera's name.
func (s *Service) RenameCamera(ctx context.Context, id int, name string) (bool, error) {
	renamed, err := s.ledger.RenameCamera(id, name)
	if err != nil || !renamed {
		return renamed, err
	}
	s.changed(ctx, history.Event{Op: history.OpRename, CameraID: id, CameraName: s.cameraName(id)})
	return true, nil
}

// History lists journal entries, newest first.
func (s *Service) History(ctx context.Context, cameraID, limit int) ([]history.Event, error) {
	if s.journal == nil {
		return []history.Event{}, nil
	}
	return s.journal.List(ctx, cameraID, limit)
}

func (s *Service) changed(ctx context.Context, ev history.Event) {
	s.record(ctx, ev)
	s.notify()
}

func (s *Service) record(ctx context.Context, ev history.Event) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Warn("lending: journal write failed",
			slog.String("op", string(ev.Op)),
			slog.Int("camera_id", ev.CameraID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) notify() {
	if s.saver != nil {
		s.saver.Request()
	}
	if s.publisher != nil {
		s.publisher.PublishSnapshot(s.Snapshot())
	}
}

func (s *Service) cameraName(id int) string {
	v, err := s.ledger.Camera(id, s.clock())
	if err != nil {
		return ""
	}
	return v.Name
}

func reservationEvent(op history.Op, id int, name string, r models.Reservation) history.Event {
	return history.Event{
		Op:         op,
		CameraID:   id,
		CameraName: name,
		User:       r.User,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Purpose:    r.Purpose,
	}
}
