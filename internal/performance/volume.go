package performance

import (
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// TotalVolume sums reps x weight over every set of every record. Units are
// not converted.
func TotalVolume(records []models.WorkoutRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Volume()
	}
	return total
}

// MuscleGroupVolume sums reps x weight over the exercises the catalog
// attributes to group. Exercises missing from the catalog contribute nothing.
func MuscleGroupVolume(records []models.WorkoutRecord, group catalog.MuscleGroup, cat *catalog.Catalog) float64 {
	var total float64
	for _, r := range records {
		total += recordGroupVolume(r, group, cat)
	}
	return total
}

func recordGroupVolume(r models.WorkoutRecord, group catalog.MuscleGroup, cat *catalog.Catalog) float64 {
	var v float64
	for _, e := range r.Exercises {
		if cat.Contains(group, e.Name) {
			v += e.Volume()
		}
	}
	return v
}
