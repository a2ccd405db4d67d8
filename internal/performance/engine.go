// Package performance scores strength training over a time window and builds
// per-muscle-group progress series.
//
// Everything here is a pure function of its inputs: no I/O, no caching and no
// shared state, so evaluations may run concurrently and are reproducible for
// identical inputs.
package performance

import (
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// ErrInvalidRecord is returned when a record fails validation.
var ErrInvalidRecord = models.ErrInvalidRecord

// Request is the immutable input of one evaluation besides the records and
// the catalog.
type Request struct {
	Reference time.Time
	Period    Period
	Goals     models.UserGoals
}

// Report is the result of Evaluate.
type Report struct {
	Period           string                          `json:"period"`
	Window           Window                          `json:"window"`
	Scores           SubScores                       `json:"scores"`
	Composite        int                             `json:"compositeScore"`
	CurrentWorkouts  int                             `json:"currentWorkouts"`
	PreviousWorkouts int                             `json:"previousWorkouts"`
	CurrentVolume    float64                         `json:"currentVolume"`
	PreviousVolume   float64                         `json:"previousVolume"`
	Series           map[catalog.MuscleGroup][]Point `json:"perGroupSeries"`

	// Units lists the distinct weight units of the scored records. More than
	// one entry means volumes mixed kg and lbs.
	Units []models.WeightUnit `json:"units"`
}

// MixedUnits reports whether the scored records used more than one unit.
func (r *Report) MixedUnits() bool {
	return len(r.Units) > 1
}

// ValidateRecords rejects the first malformed record.
func ValidateRecords(records []models.WorkoutRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d (%s): %w", i+1, r.Date.Format(models.DateLayout), err)
		}
	}
	return nil
}

// Partition splits records into the current and previous windows. Records
// outside both are dropped. Input order is preserved.
func Partition(records []models.WorkoutRecord, w Window) (current, previous []models.WorkoutRecord) {
	for _, r := range records {
		switch {
		case w.InCurrent(r.Date):
			current = append(current, r)
		case w.InPrevious(r.Date):
			previous = append(previous, r)
		}
	}
	return current, previous
}

// Scores computes the five sub-scores for pre-partitioned records.
func Scores(current, previous []models.WorkoutRecord, p Period, cat *catalog.Catalog) (SubScores, error) {
	freq, err := FrequencyScore(current, p)
	if err != nil {
		return SubScores{}, err
	}
	return SubScores{
		Volume:              VolumeScore(current, previous),
		Frequency:           freq,
		Balance:             BalanceScore(current, cat),
		ProgressiveOverload: ProgressiveOverloadScore(current),
		PersonalRecord:      PersonalRecordScore(current, previous),
	}, nil
}

// Evaluate validates the records, resolves the period, scores the current
// window against the previous one and builds one chart series per catalog
// group.
func Evaluate(records []models.WorkoutRecord, req Request, cat *catalog.Catalog) (*Report, error) {
	if cat == nil {
		return nil, fmt.Errorf("evaluate: nil catalog")
	}
	w, err := Resolve(req.Reference, req.Period)
	if err != nil {
		return nil, err
	}
	if err := req.Goals.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}

	current, previous := Partition(records, w)
	scores, err := Scores(current, previous, req.Period, cat)
	if err != nil {
		return nil, err
	}
	composite, err := Composite(scores, req.Goals)
	if err != nil {
		return nil, err
	}

	return &Report{
		Period:           req.Period.String(),
		Window:           w,
		Scores:           scores,
		Composite:        composite,
		CurrentWorkouts:  len(current),
		PreviousWorkouts: len(previous),
		CurrentVolume:    TotalVolume(current),
		PreviousVolume:   TotalVolume(previous),
		Series:           AllSeries(records, cat, w),
		Units:            units(current, previous),
	}, nil
}

func units(sets ...[]models.WorkoutRecord) []models.WeightUnit {
	seen := make(map[models.WeightUnit]bool)
	for _, records := range sets {
		for _, r := range records {
			seen[r.WeightUnit] = true
		}
	}
	out := make([]models.WeightUnit, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
