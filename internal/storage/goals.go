package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetGoals returns the user's saved goal weights, or fallback when none are stored.
func (db *DB) GetGoals(ctx context.Context, userID int, fallback models.UserGoals) (models.UserGoals, error) {
	var g models.UserGoals
	err := db.Pool.QueryRow(ctx,
		`SELECT volume_importance, frequency_importance, balance_importance,
		 progressive_overload_importance, personal_record_importance
		 FROM user_goals WHERE user_id = $1`, userID,
	).Scan(&g.VolumeImportance, &g.FrequencyImportance, &g.BalanceImportance,
		&g.ProgressiveOverloadImportance, &g.PersonalRecordImportance)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return models.UserGoals{}, fmt.Errorf("querying goals: %w", err)
	}
	return g, nil
}

// UpsertGoals stores the user's goal weights. The caller validates them.
func (db *DB) UpsertGoals(ctx context.Context, userID int, g models.UserGoals) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO user_goals (user_id, volume_importance, frequency_importance, balance_importance,
		 progressive_overload_importance, personal_record_importance)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id) DO UPDATE SET
			volume_importance = EXCLUDED.volume_importance,
			frequency_importance = EXCLUDED.frequency_importance,
			balance_importance = EXCLUDED.balance_importance,
			progressive_overload_importance = EXCLUDED.progressive_overload_importance,
			personal_record_importance = EXCLUDED.personal_record_importance,
			updated_at = NOW()`,
		userID, g.VolumeImportance, g.FrequencyImportance, g.BalanceImportance,
		g.ProgressiveOverloadImportance, g.PersonalRecordImportance)
	if err != nil {
		return fmt.Errorf("upserting goals: %w", err)
	}
	return nil
}
