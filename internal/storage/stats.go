package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts    int64          `json:"total_workouts"`
	TotalExercises   int64          `json:"total_exercises"`
	TotalSets        int64          `json:"total_sets"`
	EarliestData     *time.Time     `json:"earliest_data"`
	LatestData       *time.Time     `json:"latest_data"`
	WorkoutsBySource []SourceStat   `json:"workouts_by_source"`
	TopExercises     []ExerciseStat `json:"top_exercises"`
}

// SourceStat counts workouts per origin (manual entry or an importer).
type SourceStat struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// ExerciseStat holds summary stats for a single exercise name.
type ExerciseStat struct {
	Name      string  `json:"name"`
	Sessions  int64   `json:"sessions"`
	Sets      int64   `json:"sets"`
	MaxWeight float64 `json:"max_weight"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	// Workouts, exercises and date range
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(jsonb_array_length(exercises)), 0), MIN(date), MAX(date)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalExercises, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	// Total sets
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM workouts w,
		      jsonb_array_elements(w.exercises) e,
		      jsonb_array_elements(e->'sets') s
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	// Workouts by source
	rows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*)
		 FROM workouts
		 WHERE user_id = $1
		 GROUP BY source
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SourceStat
		if err := rows.Scan(&s.Source, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning source stat: %w", err)
		}
		stats.WorkoutsBySource = append(stats.WorkoutsBySource, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Most trained exercises
	exRows, err := db.Pool.Query(ctx,
		`SELECT e->>'name' AS name,
		        COUNT(DISTINCT w.id),
		        COUNT(s),
		        COALESCE(MAX((s->>'weight')::numeric), 0)::float8
		 FROM workouts w
		 CROSS JOIN LATERAL jsonb_array_elements(w.exercises) e
		 LEFT JOIN LATERAL jsonb_array_elements(e->'sets') s ON true
		 WHERE w.user_id = $1
		 GROUP BY name
		 ORDER BY COUNT(DISTINCT w.id) DESC, name
		 LIMIT 20`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var s ExerciseStat
		if err := exRows.Scan(&s.Name, &s.Sessions, &s.Sets, &s.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
