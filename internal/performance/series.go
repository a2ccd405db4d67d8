package performance

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// Point is one chart point: the volume a muscle group received on a date.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{p.Date.Format(models.DateLayout), p.Value})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := models.ParseDate(raw.Date)
	if err != nil {
		return err
	}
	p.Date, p.Value = d, raw.Value
	return nil
}

// MuscleGroupSeries returns the per-date volume of group for records dated
// within [start, end], sorted by date. Records on the same date are summed
// into one point and dates with no volume for the group are omitted.
func MuscleGroupSeries(records []models.WorkoutRecord, group catalog.MuscleGroup, cat *catalog.Catalog, start, end time.Time) []Point {
	byDate := make(map[time.Time]float64)
	for _, r := range records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		v := recordGroupVolume(r, group, cat)
		if v == 0 {
			continue
		}
		byDate[r.Date.UTC()] += v
	}

	points := make([]Point, 0, len(byDate))
	for d, v := range byDate {
		points = append(points, Point{Date: d, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// AllSeries returns one series per catalog group over the window's chart range.
func AllSeries(records []models.WorkoutRecord, cat *catalog.Catalog, w Window) map[catalog.MuscleGroup][]Point {
	out := make(map[catalog.MuscleGroup][]Point, len(cat.Groups()))
	for _, g := range cat.Groups() {
		out[g] = MuscleGroupSeries(records, g, cat, w.CurrentStart, w.CurrentEnd)
	}
	return out
}
