package models

import "time"

// AlphaSession is one workout session parsed from an Alpha Progression CSV export.
type AlphaSession struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []AlphaExercise
}

// AlphaExercise is a single exercise within a session.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []AlphaSet
}

// AlphaSet is a single set (working or warmup). Alpha Progression always
// exports weights in kilograms.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// Record converts the session into a kg WorkoutRecord dated on the session's
// calendar day. Warmup sets are dropped unless includeWarmups is set;
// exercises left without sets are kept so they still count as performed.
func (s AlphaSession) Record(includeWarmups bool) WorkoutRecord {
	rec := WorkoutRecord{
		Date:       Day(s.Date),
		Name:       s.Name,
		WeightUnit: UnitKg,
		Exercises:  make([]ExerciseEntry, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		entry := ExerciseEntry{Name: ex.Name, Sets: []SetEntry{}}
		for _, set := range ex.Sets {
			if set.IsWarmup && !includeWarmups {
				continue
			}
			entry.Sets = append(entry.Sets, SetEntry{Reps: set.Reps, Weight: set.WeightKg})
		}
		rec.Exercises = append(rec.Exercises, entry)
	}
	return rec
}

// SetCount returns the number of sets Record(includeWarmups) would keep.
func (s AlphaSession) SetCount(includeWarmups bool) int {
	n := 0
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.IsWarmup && !includeWarmups {
				continue
			}
			n++
		}
	}
	return n
}
