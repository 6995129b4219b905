package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/camledger/internal/availability"
	"github.com/starford/camledger/internal/lending"
	"github.com/starford/camledger/internal/models"
	"github.com/starford/camledger/internal/persist"
	"github.com/starford/camledger/internal/sse"
	"github.com/starford/camledger/internal/storage"
	"github.com/starford/camledger/internal/testutil"
)

type testServer struct {
	svc    *lending.Service
	router http.Handler
	store  *storage.File
	broker *sse.Broker
}

// testEnv sets up a ledger, journal, saver, SSE broker and router for testing.
func testEnv(t *testing.T) testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.TestStore(t)

	var svc *lending.Service
	saver := persist.NewSaver(store, func() models.Document { return svc.Document() }, logger)
	t.Cleanup(saver.Close)

	broker := sse.NewBroker(time.Hour, func() any { return svc.Snapshot() })
	t.Cleanup(broker.Close)

	svc = lending.NewService(testutil.TestLedger(),
		lending.WithClock(testutil.Clock),
		lending.WithJournal(testutil.TestJournal(t)),
		lending.WithSaver(saver),
		lending.WithPublisher(broker),
		lending.WithLogger(logger),
	)
	return testServer{
		svc:    svc,
		router: NewRouter(svc, saver, broker),
		store:  store,
		broker: broker,
	}
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func reserveBody(user, start, end string) ReserveRequest {
	return ReserveRequest{User: user, StartDate: start, EndDate: end, Purpose: "Shoot"}
}

func TestGetData(t *testing.T) {
	env := testEnv(t)

	w := do(t, env.router, http.MethodGet, "/data", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("data status = %d", w.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Total != 2 || snap.Available != 2 || snap.Busy != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/2/0", snap.Total, snap.Available, snap.Busy)
	}
	if snap.Cameras[1].Name != "Sony α7IV" {
		t.Errorf("name = %q", snap.Cameras[1].Name)
	}
	if !strings.Contains(w.Body.String(), "α7IV") {
		t.Error("non-ASCII name should be written literally")
	}
}

func TestReserveAndStatus(t *testing.T) {
	env := testEnv(t)

	w := do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Alice", "1/15", "1/20"))
	if w.Code != http.StatusCreated {
		t.Fatalf("reserve status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ReserveResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reservation.StartDate != "2026/1/15" || resp.Reservation.EndDate != "2026/1/20" {
		t.Errorf("reservation = %+v", resp.Reservation)
	}
	if len(resp.Data.Cameras[0].Reservations) != 1 {
		t.Fatalf("snapshot reservations = %d, want 1", len(resp.Data.Cameras[0].Reservations))
	}
	if resp.Data.Cameras[0].Reservations[0].Period != "1/15 ～ 1/20" {
		t.Errorf("period = %q", resp.Data.Cameras[0].Reservations[0].Period)
	}

	// Future reservation leaves the camera available.
	w = do(t, env.router, http.MethodGet, "/cameras/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get camera = %d", w.Code)
	}
	var view CameraView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Status != availability.StatusAvailable {
		t.Errorf("status = %q, want available", view.Status)
	}
}

func TestReserveOverlapMessage(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Alice", "1/15", "1/20"))
	w := do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Bob", "1/20", "1/25"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overlap status = %d, want 400", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if !strings.Contains(body.Error, "1/15 ～ 1/20") {
		t.Errorf("error = %q, want stored interval", body.Error)
	}

	// Another camera is independent.
	w = do(t, env.router, http.MethodPost, "/cameras/2/reservations", reserveBody("Bob", "1/20", "1/25"))
	if w.Code != http.StatusCreated {
		t.Errorf("other camera = %d, want 201", w.Code)
	}
}

func TestReserveValidation(t *testing.T) {
	env := testEnv(t)

	tests := []struct {
		name       string
		target     string
		body       any
		wantStatus int
	}{
		{"bad date", "/cameras/1/reservations", reserveBody("A", "abc", "1/20"), http.StatusBadRequest},
		{"past start", "/cameras/1/reservations", reserveBody("A", "2026/1/9", "2026/1/20"), http.StatusBadRequest},
		{"inverted", "/cameras/1/reservations", reserveBody("A", "1/20", "1/15"), http.StatusBadRequest},
		{"unknown camera", "/cameras/99/reservations", reserveBody("A", "1/15", "1/20"), http.StatusNotFound},
		{"bad id", "/cameras/abc/reservations", reserveBody("A", "1/15", "1/20"), http.StatusBadRequest},
		{"bad json", "/cameras/1/reservations", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, env.router, http.MethodPost, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	if got := len(env.svc.Document().Cameras[0].Reservations); got != 0 {
		t.Errorf("rejected requests stored %d reservations", got)
	}
}

func TestReturnCamera(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Bob", "1/10", "1/12"))
	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Carol", "1/20", "1/22"))

	w := do(t, env.router, http.MethodPost, "/cameras/1/return", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("return = %d", w.Code)
	}
	var resp ReturnResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Returned || resp.Reservation == nil || resp.Reservation.User != "Bob" {
		t.Fatalf("return response = %+v", resp)
	}
	if resp.Data.Cameras[0].Status != availability.StatusAvailable {
		t.Errorf("status after return = %q", resp.Data.Cameras[0].Status)
	}
	if len(resp.Data.Cameras[0].Reservations) != 1 {
		t.Errorf("future reservation should remain")
	}

	// Nothing active now.
	w = do(t, env.router, http.MethodPost, "/cameras/1/return", nil)
	resp = ReturnResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Returned {
		t.Error("second return should be a no-op")
	}
}

func TestCancelReservation(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Alice", "1/15", "1/20"))

	w := do(t, env.router, http.MethodDelete, "/cameras/1/reservations?start=2026/1/15&end=2026/1/21", nil)
	var resp CancelResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Removed != 0 {
		t.Fatalf("mismatched cancel = %d removed %d", w.Code, resp.Removed)
	}

	w = do(t, env.router, http.MethodDelete, "/cameras/1/reservations?start=2026/1/15&end=2026/1/20", nil)
	resp = CancelResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Removed != 1 {
		t.Errorf("removed = %d, want 1", resp.Removed)
	}

	w = do(t, env.router, http.MethodDelete, "/cameras/1/reservations", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing dates = %d, want 400", w.Code)
	}
}

func TestCameraCRUD(t *testing.T) {
	env := testEnv(t)

	w := do(t, env.router, http.MethodPost, "/cameras", CameraNameRequest{Name: "Nikon Z6"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d", w.Code)
	}
	var added AddCameraResponse
	_ = json.Unmarshal(w.Body.Bytes(), &added)
	if added.ID != 3 {
		t.Errorf("id = %d, want 3", added.ID)
	}

	w = do(t, env.router, http.MethodPost, "/cameras", CameraNameRequest{Name: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank add = %d, want 400", w.Code)
	}

	w = do(t, env.router, http.MethodPatch, "/cameras/3", CameraNameRequest{Name: "Nikon Z6II"})
	var renamed RenameCameraResponse
	_ = json.Unmarshal(w.Body.Bytes(), &renamed)
	if w.Code != http.StatusOK || !renamed.Renamed {
		t.Errorf("rename = %d %+v", w.Code, renamed)
	}

	w = do(t, env.router, http.MethodPatch, "/cameras/42", CameraNameRequest{Name: "Ghost"})
	renamed = RenameCameraResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &renamed)
	if w.Code != http.StatusOK || renamed.Renamed {
		t.Errorf("rename unknown = %d %+v", w.Code, renamed)
	}

	w = do(t, env.router, http.MethodPatch, "/cameras/3", CameraNameRequest{Name: ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank rename = %d, want 400", w.Code)
	}

	w = do(t, env.router, http.MethodDelete, "/cameras/3", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	w = do(t, env.router, http.MethodGet, "/cameras/3", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	w = do(t, env.router, http.MethodDelete, "/cameras/3", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete unknown = %d, want 204", w.Code)
	}
}

func TestDeleteCheckedOut(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Bob", "1/10", "1/12"))
	w := do(t, env.router, http.MethodDelete, "/cameras/1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("delete checked out = %d, want 409", w.Code)
	}
	w = do(t, env.router, http.MethodGet, "/cameras/1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("camera should be retained, got %d", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras/1/reservations", reserveBody("Alice", "1/15", "1/20"))
	do(t, env.router, http.MethodPost, "/cameras/2/reservations", reserveBody("Bob", "1/15", "1/20"))

	w := do(t, env.router, http.MethodGet, "/history?camera_id=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history = %d", w.Code)
	}
	var resp HistoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Events) != 1 || resp.Events[0].User != "Bob" {
		t.Errorf("events = %+v", resp.Events)
	}

	w = do(t, env.router, http.MethodGet, "/history?limit=1", nil)
	resp = HistoryResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Events) != 1 {
		t.Errorf("limited events = %d, want 1", len(resp.Events))
	}
}

func TestSaveEndpoint(t *testing.T) {
	env := testEnv(t)

	do(t, env.router, http.MethodPost, "/cameras", CameraNameRequest{Name: "Nikon Z6"})
	w := do(t, env.router, http.MethodPost, "/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SaveResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "saved" || resp.Digest == "" {
		t.Errorf("save response = %+v", resp)
	}

	data, err := os.ReadFile(env.store.Path())
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), "Nikon Z6") {
		t.Errorf("saved file missing new camera: %s", data)
	}
}

func TestSaveWithoutSaver(t *testing.T) {
	svc := lending.NewService(testutil.TestLedger(), lending.WithClock(testutil.Clock))
	router := NewRouter(svc, nil, nil)

	w := do(t, router, http.MethodPost, "/save", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("save without saver = %d, want 503", w.Code)
	}
	w = do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("events without broker = %d", w.Code)
	}
}

func TestEventsStream(t *testing.T) {
	env := testEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("events = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: data_updated") {
		t.Errorf("stream should start with a snapshot, got %q", w.Body.String())
	}
}
