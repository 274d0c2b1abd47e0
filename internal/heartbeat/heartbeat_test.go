package heartbeat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterStartWritesImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	w := NewWriter(path, "0 9 * * *")

	w.Start()
	defer w.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("heartbeat file not written on start: %v", err)
	}

	var hb Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		t.Fatalf("unmarshal heartbeat: %v", err)
	}
	if hb.PID != os.Getpid() {
		t.Errorf("pid: got %d, want %d", hb.PID, os.Getpid())
	}
	if hb.Schedule != "0 9 * * *" {
		t.Errorf("schedule: got %q", hb.Schedule)
	}
	if hb.Timestamp.IsZero() || hb.StartedAt.IsZero() {
		t.Errorf("missing timestamps: %+v", hb)
	}
}

func TestWriterStopRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	w := NewWriter(path, "* * * * *")

	w.Start()
	w.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("heartbeat file still present after Stop: %v", err)
	}

	// Stop again is a no-op.
	w.Stop()
}

func TestWriterStartIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	w := NewWriter(path, "* * * * *")

	w.Start()
	w.Start()
	w.Stop()
}

func TestCheckAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	w := NewWriter(path, "0 9 * * *")
	w.Start()
	defer w.Stop()

	status, hb, err := Check(path, 2*time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusAlive {
		t.Errorf("status: got %q, want %q", status, StatusAlive)
	}
	if hb == nil || hb.PID != os.Getpid() {
		t.Errorf("heartbeat: %+v", hb)
	}
}

func TestCheckStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	hb := Heartbeat{
		PID:       os.Getpid(),
		Schedule:  "0 9 * * *",
		StartedAt: time.Now().Add(-time.Hour),
		Timestamp: time.Now().Add(-10 * time.Minute),
	}
	data, _ := json.Marshal(hb)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	status, got, err := Check(path, 2*time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusStale {
		t.Errorf("status: got %q, want %q", status, StatusStale)
	}
	if got == nil {
		t.Error("stale check should still return the heartbeat")
	}
}

func TestCheckDeadWhenMissing(t *testing.T) {
	status, hb, err := Check(filepath.Join(t.TempDir(), "absent"), time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusDead || hb != nil {
		t.Errorf("got %q, %+v", status, hb)
	}
}

func TestCheckDeadWhenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.heartbeat")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	status, _, err := Check(path, time.Minute)
	if err == nil {
		t.Error("expected error for corrupt heartbeat")
	}
	if status != StatusDead {
		t.Errorf("status: got %q, want %q", status, StatusDead)
	}
}
