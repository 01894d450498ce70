package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"edgelog/pkg/app/config"
)

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()

	c := config.NewConfig()
	c.Interval = 2 * time.Second
	c.PollInterval = 100 * time.Millisecond
	c.Buffer.File = filepath.Join(dir, "spool", "buffer.csv")
	c.Gpio.Driver = "emulated"
	c.Sensors.Emulated = true
	c.Sink.Device = filepath.Join(dir, "cloud.csv")

	a, err := New(c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err = a.init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return a, c.Sink.Device
}

func getData(t *testing.T, a *App) resp {
	t.Helper()

	r, err := a.web.Test(httptest.NewRequest(http.MethodGet, "/data", nil))
	if err != nil {
		t.Fatalf("GET /data: %v", err)
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("GET /data status %d", r.StatusCode)
	}

	var d resp
	if err = json.NewDecoder(r.Body).Decode(&d); err != nil {
		t.Fatalf("decode /data: %v", err)
	}
	return d
}

func setConnectivity(t *testing.T, a *App, state string) int {
	t.Helper()
	r, err := a.web.Test(httptest.NewRequest(http.MethodPut, "/connectivity/"+state, nil))
	if err != nil {
		t.Fatalf("PUT /connectivity/%s: %v", state, err)
	}
	_ = r.Body.Close()
	return r.StatusCode
}

func TestOfflineBufferingAndSync(t *testing.T) {
	a, cloud := newTestApp(t)

	for _, now := range []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second} {
		a.engine.Tick(now)
	}

	d := getData(t, a)
	if d.State != "offline" || d.Buffered != 3 || d.BufferBytes == 0 {
		t.Errorf("/data while offline = %+v", d)
	}
	if !strings.HasPrefix(d.LastRecord, "6000,") || !strings.HasSuffix(d.LastRecord, ",0") {
		t.Errorf("LastRecord = %q", d.LastRecord)
	}

	if code := setConnectivity(t, a, "online"); code != http.StatusNoContent {
		t.Fatalf("PUT /connectivity/online status %d", code)
	}
	a.engine.Tick(8 * time.Second)

	d = getData(t, a)
	if d.State != "online" || d.Drained != 3 || d.Live != 1 || d.BufferBytes != 0 {
		t.Errorf("/data after sync = %+v", d)
	}

	b, err := os.ReadFile(cloud)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 {
		t.Fatalf("cloud received %d lines, want 4: %q", len(lines), lines)
	}
	for i, prefix := range []string{"2000,", "4000,", "6000,", "8000,"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if !strings.HasSuffix(lines[3], ",1") {
		t.Errorf("live record %q isn't flagged online", lines[3])
	}
}

func TestStatusLedFollowsConnectivity(t *testing.T) {
	a, _ := newTestApp(t)

	a.engine.Tick(0)
	if a.emulated.Level(a.config.Gpio.LED) {
		t.Error("led is on while offline")
	}

	setConnectivity(t, a, "online")
	a.engine.Tick(100 * time.Millisecond)
	if !a.emulated.Level(a.config.Gpio.LED) {
		t.Error("led is off while online")
	}
}

func TestConnectivityInvalidState(t *testing.T) {
	a, _ := newTestApp(t)

	if code := setConnectivity(t, a, "maybe"); code != http.StatusBadRequest {
		t.Errorf("PUT /connectivity/maybe status %d, want %d", code, http.StatusBadRequest)
	}
}

func TestVersionAndHealth(t *testing.T) {
	a, _ := newTestApp(t)

	for _, path := range []string{"/version", "/health"} {
		r, err := a.web.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		var body map[string]interface{}
		err = json.NewDecoder(r.Body).Decode(&body)
		_ = r.Body.Close()
		if err != nil || r.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d, %v", path, r.StatusCode, err)
		}
	}

	if Version() != "edgelog V1.0.0" {
		t.Errorf("Version() = %q", Version())
	}
}
