package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the tunable heuristics behind risk detection and the
// at-risk bucket. The defaults match the values the reports were built
// around; a thresholds.yaml next to the binary overrides them.
type Thresholds struct {
	StaleAgeDays       int     `yaml:"stale_age_days"`        // in-progress older than this is stale
	StaleHighAgeDays   int     `yaml:"stale_high_age_days"`   // stale escalates to high severity
	LargeItemPoints    float64 `yaml:"large_item_points"`     // todo item considered too large to start
	LargeItemDaysLeft  int     `yaml:"large_item_days_left"`  // ...when this few days remain
	GoalRiskPoints     float64 `yaml:"goal_risk_points"`      // in-progress item threatening the goal
	GoalRiskDaysLeft   int     `yaml:"goal_risk_days_left"`   // ...when this few days remain
	AtRiskPoints       float64 `yaml:"at_risk_points"`        // metrics at-risk bucket point floor
	AtRiskDaysLeft     int     `yaml:"at_risk_days_left"`     // metrics at-risk bucket day ceiling
	RerankMinScore     int     `yaml:"rerank_min_score"`      // accept AI reordering at or above this
	AutoAssignMinScore int     `yaml:"auto_assign_min_score"` // auto-assign confidence floor
}

// DefaultThresholds returns the built-in heuristic values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StaleAgeDays:       3,
		StaleHighAgeDays:   5,
		LargeItemPoints:    8,
		LargeItemDaysLeft:  3,
		GoalRiskPoints:     5,
		GoalRiskDaysLeft:   2,
		AtRiskPoints:       5,
		AtRiskDaysLeft:     3,
		RerankMinScore:     60,
		AutoAssignMinScore: 80,
	}
}

// LoadThresholds reads overrides from a YAML file, falling back to the
// defaults when the file is absent. A malformed file is an error.
func LoadThresholds(filename string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultThresholds(), err
	}
	return t, nil
}
