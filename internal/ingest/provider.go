// Package ingest holds what the import providers have in common.
package ingest

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int   `json:"sessions_received"`
	SessionsSkipped  int   `json:"sessions_skipped"`
	WorkoutsInserted int   `json:"workouts_inserted"`
	WorkoutsReplaced int64 `json:"workouts_replaced"`
	SetsReceived     int   `json:"sets_received"`

	DryRun  bool   `json:"dry_run,omitempty"`
	Message string `json:"message,omitempty"`
}

// Add merges another result into r.
func (r *Result) Add(o *Result) {
	if o == nil {
		return
	}
	r.SessionsReceived += o.SessionsReceived
	r.SessionsSkipped += o.SessionsSkipped
	r.WorkoutsInserted += o.WorkoutsInserted
	r.WorkoutsReplaced += o.WorkoutsReplaced
	r.SetsReceived += o.SetsReceived
}

// WorkoutStore is the storage a provider writes imported workouts to.
// *storage.DB satisfies it.
type WorkoutStore interface {
	InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error)
	DeleteWorkoutsBySource(ctx context.Context, date time.Time, source string, userID int) (int64, error)
}
