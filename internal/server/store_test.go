package server

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same user scoping and date
// semantics as storage.DB.
type memStore struct {
	mu       sync.Mutex
	workouts map[uuid.UUID]models.Workout
	goals    map[int]models.UserGoals
	logs     []storage.ImportLog
	users    map[string]int
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{
		workouts: make(map[uuid.UUID]models.Workout),
		goals:    make(map[int]models.UserGoals),
		users:    map[string]int{"local": 1},
	}
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.users[login]; ok {
		return id, nil
	}
	id := len(m.users) + 1
	m.users[login] = id
	return id, nil
}

func (m *memStore) InsertWorkout(_ context.Context, w models.Workout) (models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	m.workouts[w.ID] = w
	return w, nil
}

func (m *memStore) UpdateWorkout(_ context.Context, w models.Workout) (models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.workouts[w.ID]
	if !ok || old.UserID != w.UserID {
		return models.Workout{}, storage.ErrNotFound
	}
	w.Source, w.CreatedAt, w.UpdatedAt = old.Source, old.CreatedAt, time.Now()
	m.workouts[w.ID] = w
	return w, nil
}

func (m *memStore) DeleteWorkout(_ context.Context, id uuid.UUID, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok || w.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.workouts, id)
	return nil
}

func (m *memStore) DeleteWorkoutsBySource(_ context.Context, date time.Time, source string, userID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, w := range m.workouts {
		if w.UserID == userID && w.Source == source && w.Date.Equal(models.Day(date)) {
			delete(m.workouts, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetWorkout(_ context.Context, id uuid.UUID, userID int) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok || w.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) QueryWorkouts(_ context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Workout
	for _, w := range m.workouts {
		if w.UserID == userID && !w.Date.Before(models.Day(start)) && w.Date.Before(end) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	out, _ := m.QueryWorkouts(ctx, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), userID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetGoals(_ context.Context, userID int, fallback models.UserGoals) (models.UserGoals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.goals[userID]; ok {
		return g, nil
	}
	return fallback, nil
}

func (m *memStore) UpsertGoals(_ context.Context, userID int, g models.UserGoals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[userID] = g
	return nil
}

func (m *memStore) GetDataStats(_ context.Context, _ int) (*storage.DataStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &storage.DataStats{TotalWorkouts: int64(len(m.workouts))}, nil
}

func (m *memStore) GetTrainingSummary(_ context.Context, _, _ time.Time, _ string, _ int) ([]storage.TrainingSummaryPeriod, error) {
	return nil, nil
}

func (m *memStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, l)
	return l.ID, nil
}

func (m *memStore) QueryImportLogs(_ context.Context, userID, limit int) ([]storage.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ImportLog
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

const testAPIKey = "test-key"

var testNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer returns a server over an empty memStore whose clock is
// fixed at testNow. Its catalog has one group covering Squat and Bench.
func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.MuscleGroup{"Full Body", "Core"},
		map[catalog.MuscleGroup][]string{"Full Body": {"Squat", "Bench"}, "Core": {"Plank"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	store := newMemStore()
	log := quietLogger()
	s := New(store, alpha.NewProvider(store, false, log), cat, models.DefaultGoals(), testAPIKey, log)
	s.now = func() time.Time { return testNow }
	return s, store
}
