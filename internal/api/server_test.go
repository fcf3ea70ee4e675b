package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-logic-bravia/internal/bridge"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/logging"
)

// stubController returns a fixed status snapshot.
type stubController struct {
	status bridge.Status
}

func (s *stubController) Snapshot() bridge.Status {
	return s.status
}

func newTestServer(t *testing.T, controllers ...ControllerStatus) *Server {
	t.Helper()
	srv, err := New(Deps{
		Logger:      logging.Default(),
		Controllers: controllers,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestNewRequiresLogger(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger = nil error, want error")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubController{})

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v, want status ok, version test", body)
	}
	if body["devices"] != float64(1) {
		t.Errorf("devices = %v, want 1", body["devices"])
	}
}

func TestHandleListDevices(t *testing.T) {
	srv := newTestServer(t,
		&stubController{status: bridge.Status{ID: "tv-1", Name: "Living Room TV", Power: true}},
		&stubController{status: bridge.Status{ID: "tv-2", Name: "Bedroom TV"}},
	)

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Devices []bridge.Status `json:"devices"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Count != 2 || len(body.Devices) != 2 {
		t.Fatalf("count = %d, devices = %d, want 2 each", body.Count, len(body.Devices))
	}
	if body.Devices[0].ID != "tv-1" || !body.Devices[0].Power {
		t.Errorf("devices[0] = %+v, want tv-1 powered on", body.Devices[0])
	}
}

func TestHandleGetDevice(t *testing.T) {
	srv := newTestServer(t,
		&stubController{status: bridge.Status{ID: "tv-1", Name: "Living Room TV"}},
	)
	router := srv.buildRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices/tv-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	var snap bridge.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if snap.Name != "Living Room TV" {
		t.Errorf("name = %q, want Living Room TV", snap.Name)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices/no-such", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
