package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingSummaryPeriod holds the raw training load of one calendar bucket
// in one weight unit. Buckets that mix units get one entry per unit.
type TrainingSummaryPeriod struct {
	Period     string  `json:"period"`
	WeightUnit string  `json:"weight_unit"`
	Sessions   int     `json:"sessions"`
	Sets       int     `json:"sets"`
	Reps       int     `json:"reps"`
	Volume     float64 `json:"volume"`
}

// GetTrainingSummary returns session, set, rep and volume totals per calendar
// week, month or year for workouts dated in [start, end), newest first.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, w.date)::date AS period,
		        w.weight_unit,
		        COUNT(DISTINCT w.id)::int,
		        COUNT(s)::int,
		        COALESCE(SUM((s->>'reps')::numeric), 0)::int,
		        COALESCE(SUM((s->>'reps')::numeric * (s->>'weight')::numeric), 0)::float8
		 FROM workouts w
		 LEFT JOIN LATERAL jsonb_array_elements(w.exercises) e ON true
		 LEFT JOIN LATERAL jsonb_array_elements(e->'sets') s ON true
		 WHERE w.date >= $2 AND w.date < $3 AND w.user_id = $4
		 GROUP BY period, w.weight_unit
		 ORDER BY period DESC, w.weight_unit`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	var result []TrainingSummaryPeriod
	for rows.Next() {
		var periodTime time.Time
		var p TrainingSummaryPeriod
		if err := rows.Scan(&periodTime, &p.WeightUnit, &p.Sessions, &p.Sets, &p.Reps, &p.Volume); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		result = append(result, p)
	}
	return result, rows.Err()
}

// truncInterval converts bucket strings like "1 month" or "week" to the
// interval name that date_trunc expects.
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	case "1 year", "year":
		return "year"
	default:
		return "month"
	}
}
