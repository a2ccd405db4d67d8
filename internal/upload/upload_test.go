package upload

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

const validCSV = `"Push";"2024-06-06 18:00 h";"1:00 hr"
"1. Bench · Barbell · 5 reps";"WU1 · 40 kg · 10 reps"
#;KG;REPS;RIR
1;100;5;1
2;100;5;0
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ingestServer fakes the Alpha ingest endpoint and counts requests.
func ingestServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/ingest/alpha" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "key" {
			t.Errorf("X-API-Key = %q, want key", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "Bench") {
			t.Errorf("body = %q", body)
		}
		json.NewEncoder(w).Encode(ingest.Result{SessionsReceived: 1, WorkoutsInserted: 1, SetsReceived: 2})
	}))
}

// TestRunUploadsOnce verifies new files are sent once, unchanged files are
// skipped on the next run and malformed files never reach the server.
func TestRunUploadsOnce(t *testing.T) {
	var calls atomic.Int32
	ts := ingestServer(t, &calls)
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024", "push.csv"), validCSV)
	writeFile(t, filepath.Join(dir, "broken.CSV"), "1;100;5;1\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()
	client := NewClient(ts.URL, "key")

	stats, err := New(client, state, dir, false, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 2 || stats.FilesUploaded != 1 || stats.FilesErrored != 1 {
		t.Errorf("first run stats = %+v", stats)
	}
	if stats.WorkoutsInserted != 1 || stats.SetsSent != 2 {
		t.Errorf("first run result stats = %+v", stats)
	}

	stats, err = New(client, state, dir, false, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 1 || stats.FilesUploaded != 0 {
		t.Errorf("second run stats = %+v", stats)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}
	if last, _ := state.GetSyncState("last_upload"); last == "" {
		t.Error("last_upload sync state not recorded")
	}
}

// TestRunChangedFile verifies an edited export is uploaded again.
func TestRunChangedFile(t *testing.T) {
	var calls atomic.Int32
	ts := ingestServer(t, &calls)
	defer ts.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "push.csv")
	writeFile(t, path, validCSV)
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()
	client := NewClient(ts.URL, "key")

	if _, err := New(client, state, dir, false, quietLogger()).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, validCSV+"3;100;4;0\n")
	if _, err := New(client, state, dir, false, quietLogger()).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server calls = %d, want 2", n)
	}
}

// TestRunDryRun verifies dry-run counts sessions without a client and leaves
// the state untouched.
func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "push.csv"), validCSV)
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	for range 2 {
		stats, err := New(nil, state, dir, true, quietLogger()).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if stats.FilesUploaded != 1 || stats.SessionsSent != 1 || stats.SetsSent != 2 {
			t.Errorf("dry-run stats = %+v", stats)
		}
	}
}

// TestRunServerFailure verifies a rejected upload stops the run and the file
// stays pending.
func TestRunServerFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "push.csv"), validCSV)
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	if _, err := New(NewClient(ts.URL, "bad"), state, dir, false, quietLogger()).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	hash, _ := HashFile(filepath.Join(dir, "push.csv"))
	if done, _ := state.IsUploaded("push.csv", int64(len(validCSV)), hash); done {
		t.Error("failed upload was marked as uploaded")
	}
}

// TestSendAlphaCSVRetries verifies server errors are retried and 4xx are not.
func TestSendAlphaCSVRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ingest.Result{SessionsReceived: 3})
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", "key")
	client.backoff = time.Millisecond
	result, err := client.SendAlphaCSV(context.Background(), []byte(validCSV))
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionsReceived != 3 || calls.Load() != 2 {
		t.Errorf("result = %+v after %d calls", result, calls.Load())
	}

	calls.Store(0)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "malformed", http.StatusBadRequest)
	}))
	defer bad.Close()

	client = NewClient(bad.URL, "key")
	client.backoff = time.Millisecond
	if _, err := client.SendAlphaCSV(context.Background(), []byte("x")); err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Errorf("err = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

// TestSyncState verifies values round-trip and unset keys read as empty.
func TestSyncState(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	val, err := state.GetSyncState("last_upload")
	if err != nil || val != "" {
		t.Fatalf("unset = %q, %v", val, err)
	}
	for _, want := range []string{"2024-06-01", "2024-07-01"} {
		if err := state.SetSyncState("last_upload", want); err != nil {
			t.Fatal(err)
		}
		if val, _ := state.GetSyncState("last_upload"); val != want {
			t.Errorf("got %q, want %q", val, want)
		}
	}
}
