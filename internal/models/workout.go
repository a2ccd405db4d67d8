package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecord is returned for workout data that cannot be scored:
// negative reps or weight, non-numeric values, or an unknown weight unit.
var ErrInvalidRecord = errors.New("invalid workout record")

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// WeightUnit is the unit every set weight in a record is expressed in.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// Valid reports whether u is a known unit.
func (u WeightUnit) Valid() bool {
	return u == UnitKg || u == UnitLbs
}

// SetEntry is one set of an exercise.
type SetEntry struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Volume returns reps x weight.
func (s SetEntry) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// UnmarshalJSON accepts reps and weight either as JSON numbers or as numeric
// strings, which is how form-based clients submit them.
func (s *SetEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Reps   json.RawMessage `json:"reps"`
		Weight json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	reps, err := decodeNumber(raw.Reps)
	if err != nil {
		return fmt.Errorf("%w: reps: %v", ErrInvalidRecord, err)
	}
	if reps != math.Trunc(reps) {
		return fmt.Errorf("%w: reps must be a whole number, got %v", ErrInvalidRecord, reps)
	}
	weight, err := decodeNumber(raw.Weight)
	if err != nil {
		return fmt.Errorf("%w: weight: %v", ErrInvalidRecord, err)
	}
	s.Reps = int(reps)
	s.Weight = weight
	return nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing value")
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(str), 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// ExerciseEntry is one exercise performed in a workout.
type ExerciseEntry struct {
	Name string     `json:"name"`
	Sets []SetEntry `json:"sets"`
}

// Volume returns the summed volume of all sets.
func (e ExerciseEntry) Volume() float64 {
	var v float64
	for _, s := range e.Sets {
		v += s.Volume()
	}
	return v
}

// MaxWeight returns the heaviest single-set weight, or 0 with no sets.
func (e ExerciseEntry) MaxWeight() float64 {
	var m float64
	for _, s := range e.Sets {
		if s.Weight > m {
			m = s.Weight
		}
	}
	return m
}

// WorkoutRecord is a single logged training session.
type WorkoutRecord struct {
	Date       time.Time       `json:"date"`
	Name       string          `json:"name"`
	WeightUnit WeightUnit      `json:"weightUnit"`
	Exercises  []ExerciseEntry `json:"exercises"`
}

// Volume returns the summed volume of every exercise in the record.
func (w WorkoutRecord) Volume() float64 {
	var v float64
	for _, e := range w.Exercises {
		v += e.Volume()
	}
	return v
}

// Validate checks the record can be aggregated without producing NaN or
// negative load. The returned error wraps ErrInvalidRecord.
func (w WorkoutRecord) Validate() error {
	if w.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if !w.WeightUnit.Valid() {
		return fmt.Errorf("%w: unknown weight unit %q", ErrInvalidRecord, w.WeightUnit)
	}
	for i, e := range w.Exercises {
		for j, s := range e.Sets {
			if s.Reps < 0 {
				return fmt.Errorf("%w: exercise %d (%s) set %d: negative reps %d", ErrInvalidRecord, i+1, e.Name, j+1, s.Reps)
			}
			if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
				return fmt.Errorf("%w: exercise %d (%s) set %d: weight is not a number", ErrInvalidRecord, i+1, e.Name, j+1)
			}
			if s.Weight < 0 {
				return fmt.Errorf("%w: exercise %d (%s) set %d: negative weight %v", ErrInvalidRecord, i+1, e.Name, j+1, s.Weight)
			}
		}
	}
	return nil
}

// UnmarshalJSON accepts the date as "YYYY-MM-DD" or RFC 3339 and normalizes
// it to midnight UTC.
func (w *WorkoutRecord) UnmarshalJSON(data []byte) error {
	type plain WorkoutRecord
	var raw struct {
		plain
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WorkoutRecord(raw.plain)
	if raw.Date == "" {
		w.Date = time.Time{}
		return nil
	}
	d, err := ParseDate(raw.Date)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	w.Date = d
	return nil
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (w WorkoutRecord) MarshalJSON() ([]byte, error) {
	type plain WorkoutRecord
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain: plain(w), Date: w.Date.Format(DateLayout)})
}

// ParseDate parses "YYYY-MM-DD" or an RFC 3339 timestamp into a calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse date %q", s)
	}
	return Day(t), nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
