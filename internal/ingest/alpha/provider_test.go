package alpha

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

type fakeStore struct {
	stored  []models.Workout
	deleted []time.Time
	failOn  string
}

func (f *fakeStore) InsertWorkout(_ context.Context, w models.Workout) (models.Workout, error) {
	if f.failOn != "" && w.Name == f.failOn {
		return models.Workout{}, errors.New("disk full")
	}
	f.stored = append(f.stored, w)
	return w, nil
}

func (f *fakeStore) DeleteWorkoutsBySource(_ context.Context, date time.Time, source string, userID int) (int64, error) {
	f.deleted = append(f.deleted, date)
	var kept []models.Workout
	var n int64
	for _, w := range f.stored {
		if w.Date.Equal(date) && w.Source == source && w.UserID == userID {
			n++
			continue
		}
		kept = append(kept, w)
	}
	f.stored = kept
	return n, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestIngestStoresSessions verifies each session becomes one alpha workout.
func TestIngestStoresSessions(t *testing.T) {
	store := &fakeStore{}
	p := NewProvider(store, false, quietLogger())

	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 7)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.SessionsReceived != 2 || res.WorkoutsInserted != 2 {
		t.Errorf("result = %+v, want 2 received and inserted", res)
	}
	// 17 working sets in the legs session, 3 in push.
	if res.SetsReceived != 20 {
		t.Errorf("sets = %d, want 20", res.SetsReceived)
	}
	if len(store.stored) != 2 {
		t.Fatalf("stored = %d, want 2", len(store.stored))
	}
	for _, w := range store.stored {
		if w.UserID != 7 || w.Source != models.SourceAlpha || w.WeightUnit != models.UnitKg {
			t.Errorf("stored workout = %+v", w)
		}
	}
}

// TestIngestReplacesPreviousImport verifies importing the same export twice
// leaves one copy of each session.
func TestIngestReplacesPreviousImport(t *testing.T) {
	store := &fakeStore{}
	p := NewProvider(store, false, quietLogger())

	if _, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1); err != nil {
		t.Fatal(err)
	}
	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.WorkoutsReplaced != 2 {
		t.Errorf("replaced = %d, want 2", res.WorkoutsReplaced)
	}
	if len(store.stored) != 2 {
		t.Errorf("stored = %d, want 2 after re-import", len(store.stored))
	}
}

// TestIngestKeepsSameDaySessions verifies two sessions on one date in a
// single export are both kept.
func TestIngestKeepsSameDaySessions(t *testing.T) {
	csv := `"Morning";"2026-03-01 7:00 h";"0:30 hr"
"1. Bench Press · Barbell · 5 reps"
#;KG;REPS;RIR
1;80;5;2

"Evening";"2026-03-01 18:00 h";"0:30 hr"
"1. Squats · Barbell · 5 reps"
#;KG;REPS;RIR
1;100;5;2
`
	store := &fakeStore{}
	p := NewProvider(store, false, quietLogger())
	res, err := p.Ingest(context.Background(), strings.NewReader(csv), 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.WorkoutsInserted != 2 || len(store.stored) != 2 {
		t.Errorf("inserted = %d, stored = %d, want 2", res.WorkoutsInserted, len(store.stored))
	}
	if len(store.deleted) != 1 {
		t.Errorf("delete calls = %d, want 1 per distinct date", len(store.deleted))
	}
}

// TestIngestIncludeWarmups verifies warmups are counted when enabled.
func TestIngestIncludeWarmups(t *testing.T) {
	store := &fakeStore{}
	p := NewProvider(store, true, quietLogger())
	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1)
	if err != nil {
		t.Fatal(err)
	}
	// 20 working sets plus 5 warmups in legs and 3 in push.
	if res.SetsReceived != 28 {
		t.Errorf("sets = %d, want 28", res.SetsReceived)
	}
}

// TestIngestStoreError verifies storage failures abort the import.
func TestIngestStoreError(t *testing.T) {
	store := &fakeStore{failOn: "Push · Day 1 · Week 4 · Push-Pull-Legs"}
	p := NewProvider(store, false, quietLogger())
	if _, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1); err == nil {
		t.Fatal("expected error")
	}
}

// TestIngestParseError verifies malformed exports are rejected before any write.
func TestIngestParseError(t *testing.T) {
	store := &fakeStore{}
	p := NewProvider(store, false, quietLogger())
	_, err := p.Ingest(context.Background(), strings.NewReader("\"1. Bench · Barbell · 5 reps\"\n"), 1)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
	if len(store.deleted) != 0 || len(store.stored) != 0 {
		t.Error("store touched on parse error")
	}
}
