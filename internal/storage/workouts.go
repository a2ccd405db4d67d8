package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

const workoutColumns = `id, user_id, date, name, weight_unit, exercises, source, created_at, updated_at`

// InsertWorkout stores a new workout. A zero ID is replaced with a fresh UUID.
// ID, CreatedAt and UpdatedAt are set on the returned copy.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Source == "" {
		w.Source = models.SourceManual
	}
	exercises, err := encodeExercises(w.Exercises)
	if err != nil {
		return models.Workout{}, err
	}
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, date, name, weight_unit, exercises, source)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		w.ID, w.UserID, w.Date, w.Name, string(w.WeightUnit), exercises, w.Source,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return w, nil
}

// UpdateWorkout replaces the record fields of an existing workout. The source
// is left unchanged.
func (db *DB) UpdateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	exercises, err := encodeExercises(w.Exercises)
	if err != nil {
		return models.Workout{}, err
	}
	err = db.Pool.QueryRow(ctx,
		`UPDATE workouts SET date = $3, name = $4, weight_unit = $5, exercises = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING source, created_at, updated_at`,
		w.ID, w.UserID, w.Date, w.Name, string(w.WeightUnit), exercises,
	).Scan(&w.Source, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Workout{}, fmt.Errorf("workout %s: %w", w.ID, ErrNotFound)
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("updating workout: %w", err)
	}
	return w, nil
}

// DeleteWorkout removes one workout.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteWorkoutsBySource removes every workout of a source on one date and
// returns how many were removed. Imports use it to replace a re-exported day.
func (db *DB) DeleteWorkoutsBySource(ctx context.Context, date time.Time, source string, userID int) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE date = $1 AND source = $2 AND user_id = $3`,
		models.Day(date), source, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting %s workouts: %w", source, err)
	}
	return tag.RowsAffected(), nil
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID)
	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return &w, nil
}

// QueryWorkouts retrieves workouts dated in [start, end), newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC, created_at DESC`,
		models.Day(start), end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// ListWorkouts returns the most recent workouts of a user. A non-positive
// limit returns all of them.
func (db *DB) ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	query := `SELECT ` + workoutColumns + `
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY date DESC, created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

func encodeExercises(exercises []models.ExerciseEntry) ([]byte, error) {
	if exercises == nil {
		exercises = []models.ExerciseEntry{}
	}
	b, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}
	return b, nil
}

func scanWorkout(row pgx.Row) (models.Workout, error) {
	var (
		w         models.Workout
		unit      string
		exercises []byte
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.Name, &unit, &exercises,
		&w.Source, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return models.Workout{}, err
	}
	w.WeightUnit = models.WeightUnit(unit)
	if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
		return models.Workout{}, fmt.Errorf("decoding exercises of workout %s: %w", w.ID, err)
	}
	return w, nil
}

func scanWorkoutRows(rows pgx.Rows) ([]models.Workout, error) {
	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
