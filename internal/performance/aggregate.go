package performance

import (
	"fmt"
	"math"

	"github.com/claude/liftlog/internal/models"
)

// ErrInvalidGoals is returned when the goal weights sum to zero or contain a
// negative or non-finite weight.
var ErrInvalidGoals = models.ErrInvalidGoals

// SubScores holds the five partial scores of one evaluation.
type SubScores struct {
	Volume              float64 `json:"volume"`
	Frequency           float64 `json:"frequency"`
	Balance             float64 `json:"balance"`
	ProgressiveOverload float64 `json:"progressiveOverload"`
	PersonalRecord      float64 `json:"personalRecord"`
}

func (s SubScores) values() [5]float64 {
	return [5]float64{s.Volume, s.Frequency, s.Balance, s.ProgressiveOverload, s.PersonalRecord}
}

// Composite is the goal-weighted mean of the sub-scores, rounded to the
// nearest integer. Because the volume score is uncapped the result can
// exceed 100.
func Composite(scores SubScores, goals models.UserGoals) (int, error) {
	if err := goals.Validate(); err != nil {
		return 0, err
	}
	weights := goals.Weights()
	var weighted, sum float64
	for i, v := range scores.values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("sub-score %d is not finite", i+1)
		}
		weighted += v * weights[i]
		sum += weights[i]
	}
	return int(math.Round(weighted / sum)), nil
}
