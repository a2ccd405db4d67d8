package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Workout sources.
const (
	SourceManual = "manual"
	SourceAlpha  = "alpha"
)

// Workout is a WorkoutRecord as stored for one user.
type Workout struct {
	ID        uuid.UUID
	UserID    int
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
	WorkoutRecord
}

// workoutJSON is the flat wire form of Workout. It is needed because the
// embedded record's JSON methods would otherwise be promoted and hide the
// stored fields.
type workoutJSON struct {
	ID         uuid.UUID       `json:"id"`
	UserID     int             `json:"userId"`
	Source     string          `json:"source"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Date       string          `json:"date"`
	Name       string          `json:"name"`
	WeightUnit WeightUnit      `json:"weightUnit"`
	Exercises  []ExerciseEntry `json:"exercises"`
}

// MarshalJSON implements json.Marshaler.
func (w Workout) MarshalJSON() ([]byte, error) {
	exercises := w.Exercises
	if exercises == nil {
		exercises = []ExerciseEntry{}
	}
	return json.Marshal(workoutJSON{
		ID:         w.ID,
		UserID:     w.UserID,
		Source:     w.Source,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
		Date:       w.Date.Format(DateLayout),
		Name:       w.Name,
		WeightUnit: w.WeightUnit,
		Exercises:  exercises,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Workout) UnmarshalJSON(data []byte) error {
	var raw workoutJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var date time.Time
	if raw.Date != "" {
		d, err := ParseDate(raw.Date)
		if err != nil {
			return err
		}
		date = d
	}
	*w = Workout{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Source:    raw.Source,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
		WorkoutRecord: WorkoutRecord{
			Date:       date,
			Name:       raw.Name,
			WeightUnit: raw.WeightUnit,
			Exercises:  raw.Exercises,
		},
	}
	return nil
}

// Records extracts the bare records from stored workouts.
func Records(workouts []Workout) []WorkoutRecord {
	out := make([]WorkoutRecord, len(workouts))
	for i, w := range workouts {
		out[i] = w.WorkoutRecord
	}
	return out
}
