package service

import (
	"math"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
)

// MinPassingGrade gates point awards on gradable assignments. Pass/fail work
// always qualifies.
const MinPassingGrade = 90.0

// roundHalfUp rounds the final product using round-half-up semantics.
func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}

// QualifiesForPoints reports whether a completion earns points at all.
func QualifiesForPoints(gradable bool, grade *float64) bool {
	if !gradable {
		return true
	}
	return grade != nil && *grade >= MinPassingGrade
}

// BasePoints returns the category's configured base points. When no config
// resolves, the assignment's own stored base applies; with neither, zero.
func BasePoints(cfg *courseconfig.CourseConfig, categoryKey string, storedBase int) int {
	if cfg == nil {
		return storedBase
	}
	return cfg.BasePointsFor(categoryKey)
}

// Multiplier composes every configured multiplier rule whose category matches
// and whose minimum-grade condition, if any, is satisfied. Multipliers
// compose multiplicatively; with no applicable rule the result is 1.0.
func Multiplier(cfg *courseconfig.CourseConfig, categoryKey string, grade *float64) float64 {
	if cfg == nil || categoryKey == "" {
		return 1.0
	}
	product := 1.0
	for _, rule := range cfg.Multipliers {
		if rule.Category != categoryKey {
			continue
		}
		if rule.MinGrade != nil && (grade == nil || *grade < *rule.MinGrade) {
			continue
		}
		product *= rule.Factor
	}
	return product
}

// AwardPoints computes the main award: base times composed multiplier,
// rounded half-up. The streak bonus is not folded in here; it is written as
// its own ledger entry so the two are never double counted.
func AwardPoints(base int, multiplier float64) int {
	if base <= 0 {
		return 0
	}
	return roundHalfUp(float64(base) * multiplier)
}

// StreakBonusPoints converts the streak bonus percentage into points.
func StreakBonusPoints(base int, bonusPercent float64) int {
	if base <= 0 || bonusPercent <= 0 {
		return 0
	}
	return roundHalfUp(float64(base) * bonusPercent / 100)
}
