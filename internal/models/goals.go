package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGoals is returned when goal weights cannot produce a weighted mean.
var ErrInvalidGoals = errors.New("invalid goals")

// UserGoals weights the five sub-scores when combining them into the
// composite performance score.
type UserGoals struct {
	VolumeImportance              float64 `json:"volumeImportance" yaml:"volume"`
	FrequencyImportance           float64 `json:"frequencyImportance" yaml:"frequency"`
	BalanceImportance             float64 `json:"balanceImportance" yaml:"balance"`
	ProgressiveOverloadImportance float64 `json:"progressiveOverloadImportance" yaml:"progressive_overload"`
	PersonalRecordImportance      float64 `json:"personalRecordImportance" yaml:"personal_record"`
}

// DefaultGoals weights every sub-score equally.
func DefaultGoals() UserGoals {
	return UserGoals{
		VolumeImportance:              0.2,
		FrequencyImportance:           0.2,
		BalanceImportance:             0.2,
		ProgressiveOverloadImportance: 0.2,
		PersonalRecordImportance:      0.2,
	}
}

// Weights returns the five weights in sub-score order: volume, frequency,
// balance, progressive overload, personal record.
func (g UserGoals) Weights() [5]float64 {
	return [5]float64{
		g.VolumeImportance,
		g.FrequencyImportance,
		g.BalanceImportance,
		g.ProgressiveOverloadImportance,
		g.PersonalRecordImportance,
	}
}

// Validate requires every weight to be finite and non-negative, and at least
// one to be positive.
func (g UserGoals) Validate() error {
	var sum float64
	for i, w := range g.Weights() {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is not a finite number", ErrInvalidGoals, i+1)
		}
		if w < 0 {
			return fmt.Errorf("%w: weight %d is negative", ErrInvalidGoals, i+1)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("%w: at least one weight must be greater than zero", ErrInvalidGoals)
	}
	return nil
}
