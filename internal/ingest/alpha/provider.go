package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
)

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store          ingest.WorkoutStore
	log            *slog.Logger
	includeWarmups bool
}

// NewProvider creates a new Alpha Progression ingest provider. Warmup sets
// are dropped unless includeWarmups is set.
func NewProvider(store ingest.WorkoutStore, includeWarmups bool, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log, includeWarmups: includeWarmups}
}

// Ingest parses a CSV export and stores one workout per session.
//
// Alpha workouts already stored on any date present in the export are
// deleted first, so re-importing an export replaces rather than duplicates.
// Sessions that convert to an invalid record are skipped and logged.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	records := p.Records(sessions, result)

	seen := make(map[time.Time]bool)
	for _, rec := range records {
		if seen[rec.Date] {
			continue
		}
		seen[rec.Date] = true
		n, err := p.store.DeleteWorkoutsBySource(ctx, rec.Date, models.SourceAlpha, userID)
		if err != nil {
			return nil, fmt.Errorf("replacing sessions on %s: %w", rec.Date.Format(models.DateLayout), err)
		}
		result.WorkoutsReplaced += n
	}

	for _, rec := range records {
		_, err := p.store.InsertWorkout(ctx, models.Workout{
			UserID:        userID,
			Source:        models.SourceAlpha,
			WorkoutRecord: rec,
		})
		if err != nil {
			return nil, fmt.Errorf("inserting session %q: %w", rec.Name, err)
		}
		result.WorkoutsInserted++
	}

	p.log.Info("alpha import",
		"user_id", userID,
		"sessions", result.SessionsReceived,
		"inserted", result.WorkoutsInserted,
		"replaced", result.WorkoutsReplaced,
		"skipped", result.SessionsSkipped,
	)
	return result, nil
}

// Records converts parsed sessions to validated workout records, counting
// sets and skipped sessions into result.
func (p *Provider) Records(sessions []models.AlphaSession, result *ingest.Result) []models.WorkoutRecord {
	records := make([]models.WorkoutRecord, 0, len(sessions))
	for _, s := range sessions {
		rec := s.Record(p.includeWarmups)
		if err := rec.Validate(); err != nil {
			p.log.Warn("skipping alpha session", "name", s.Name, "date", s.Date, "error", err)
			result.SessionsSkipped++
			continue
		}
		result.SetsReceived += s.SetCount(p.includeWarmups)
		records = append(records, rec)
	}
	return records
}
