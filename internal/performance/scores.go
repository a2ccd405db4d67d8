package performance

import (
	"math"
	"sort"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
)

// VolumeScore compares training volume against the previous period as a
// percentage. It is 100 when there was no previous volume and is not capped,
// so growth scores above 100.
func VolumeScore(current, previous []models.WorkoutRecord) float64 {
	prev := TotalVolume(previous)
	if prev <= 0 {
		return 100
	}
	return TotalVolume(current) / prev * 100
}

// FrequencyScore is the workout count as a percentage of the period's
// expected count, capped at 100.
func FrequencyScore(current []models.WorkoutRecord, p Period) (float64, error) {
	expected, err := p.ExpectedWorkouts()
	if err != nil {
		return 0, err
	}
	return math.Min(float64(len(current))/float64(expected)*100, 100), nil
}

// BalanceScore measures how evenly volume is spread over the catalog groups.
// 100 means every group received the same volume. The total is the sum of
// the per-group volumes, so uncatalogued exercises are ignored and an
// exercise listed under two groups counts twice. With no group volume at all
// the score is 0. Heavily lopsided training can score below zero.
func BalanceScore(current []models.WorkoutRecord, cat *catalog.Catalog) float64 {
	groups := cat.Groups()
	volumes := make([]float64, len(groups))
	var total float64
	for i, g := range groups {
		volumes[i] = MuscleGroupVolume(current, g, cat)
		total += volumes[i]
	}
	if total == 0 {
		return 0
	}
	ideal := total / float64(len(groups))
	var deviation float64
	for _, v := range volumes {
		deviation += math.Abs(v - ideal)
	}
	return (1 - deviation/total) * 100
}

// ProgressiveOverloadScore is the share of consecutive workout pairs, in date
// order, where the later workout moved more volume than the earlier one.
// Records on the same date keep their input order. Fewer than two workouts
// score 0.
func ProgressiveOverloadScore(current []models.WorkoutRecord) float64 {
	if len(current) < 2 {
		return 0
	}
	sorted := sortByDate(current)
	improvements := 0
	prev := sorted[0].Volume()
	for _, r := range sorted[1:] {
		v := r.Volume()
		if v > prev {
			improvements++
		}
		prev = v
	}
	return float64(improvements) / float64(len(sorted)-1) * 100
}

// PersonalRecordScore is the share of distinct exercises in the current
// period whose heaviest set beat the previous period's heaviest set for the
// same exercise (0 when it was not performed). No exercises scores 0.
func PersonalRecordScore(current, previous []models.WorkoutRecord) float64 {
	currentMax := maxLifts(current)
	if len(currentMax) == 0 {
		return 0
	}
	previousMax := maxLifts(previous)
	prs := 0
	for name, lift := range currentMax {
		if lift > previousMax[name] {
			prs++
		}
	}
	return float64(prs) / float64(len(currentMax)) * 100
}

// maxLifts returns the heaviest single-set weight per exercise name.
func maxLifts(records []models.WorkoutRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range records {
		for _, e := range r.Exercises {
			m := e.MaxWeight()
			if cur, ok := out[e.Name]; !ok || m > cur {
				out[e.Name] = m
			}
		}
	}
	return out
}

func sortByDate(records []models.WorkoutRecord) []models.WorkoutRecord {
	sorted := make([]models.WorkoutRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
