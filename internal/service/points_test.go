package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
)

func gradePtr(v float64) *float64 { return &v }

func TestQualifiesForPoints(t *testing.T) {
	require.True(t, QualifiesForPoints(false, nil), "pass/fail work always qualifies")
	require.True(t, QualifiesForPoints(false, gradePtr(10)))
	require.False(t, QualifiesForPoints(true, nil), "gradable without a grade earns nothing")
	require.False(t, QualifiesForPoints(true, gradePtr(89.9)))
	require.True(t, QualifiesForPoints(true, gradePtr(90)))
	require.True(t, QualifiesForPoints(true, gradePtr(100)))
}

func TestBasePoints(t *testing.T) {
	cfg := &courseconfig.CourseConfig{
		Categories: map[string]courseconfig.Category{
			"worksheet": {BasePoints: 10},
		},
	}

	require.Equal(t, 7, BasePoints(nil, "worksheet", 7), "no config falls back to stored base")
	require.Equal(t, 10, BasePoints(cfg, "worksheet", 7))
	require.Equal(t, 0, BasePoints(cfg, "unknown", 7), "unknown category is worth zero under a config")
}

func TestMultiplierComposes(t *testing.T) {
	cfg := &courseconfig.CourseConfig{
		Multipliers: []courseconfig.MultiplierRule{
			{Category: "topic_test", Factor: 2},
			{Category: "topic_test", Factor: 1.5, MinGrade: gradePtr(97)},
			{Category: "worksheet", Factor: 3},
		},
	}

	require.Equal(t, 1.0, Multiplier(nil, "topic_test", gradePtr(100)))
	require.Equal(t, 1.0, Multiplier(cfg, "", gradePtr(100)))
	require.Equal(t, 2.0, Multiplier(cfg, "topic_test", gradePtr(95)), "grade below gate skips the rule")
	require.Equal(t, 3.0, Multiplier(cfg, "topic_test", gradePtr(98)), "both rules compose")
	require.Equal(t, 2.0, Multiplier(cfg, "topic_test", nil), "no grade skips gated rules")
}

func TestAwardPointsRoundsHalfUp(t *testing.T) {
	require.Equal(t, 0, AwardPoints(0, 2))
	require.Equal(t, 0, AwardPoints(-5, 2))
	require.Equal(t, 20, AwardPoints(10, 2))
	require.Equal(t, 13, AwardPoints(10, 1.25), "12.5 rounds up")
	require.Equal(t, 12, AwardPoints(10, 1.24))
}

func TestStreakBonusPoints(t *testing.T) {
	require.Equal(t, 0, StreakBonusPoints(0, 10))
	require.Equal(t, 0, StreakBonusPoints(100, 0))
	require.Equal(t, 10, StreakBonusPoints(100, 10))
	require.Equal(t, 1, StreakBonusPoints(10, 5), "0.5 rounds up")
}
