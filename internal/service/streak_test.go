package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
)

func TestAdvanceStreak(t *testing.T) {
	cases := []struct {
		name             string
		last, today      string
		current, longest int
		wantCurrent      int
		wantLongest      int
	}{
		{name: "first ever completion", last: "", today: "2026-03-10", current: 0, longest: 0, wantCurrent: 1, wantLongest: 1},
		{name: "same day keeps streak", last: "2026-03-10", today: "2026-03-10", current: 4, longest: 6, wantCurrent: 4, wantLongest: 6},
		{name: "next day increments", last: "2026-03-10", today: "2026-03-11", current: 4, longest: 6, wantCurrent: 5, wantLongest: 6},
		{name: "increment raises longest", last: "2026-03-10", today: "2026-03-11", current: 6, longest: 6, wantCurrent: 7, wantLongest: 7},
		{name: "two day gap resets", last: "2026-03-10", today: "2026-03-12", current: 9, longest: 9, wantCurrent: 1, wantLongest: 9},
		{name: "garbage last date resets", last: "not-a-date", today: "2026-03-12", current: 9, longest: 9, wantCurrent: 1, wantLongest: 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, longest := AdvanceStreak(tc.last, tc.today, tc.current, tc.longest)
			require.Equal(t, tc.wantCurrent, current)
			require.Equal(t, tc.wantLongest, longest)
		})
	}
}

func TestStreakBonusPercentDefaults(t *testing.T) {
	require.Equal(t, 0.0, StreakBonusPercent(1, nil))
	require.Equal(t, 0.0, StreakBonusPercent(2, nil))
	require.Equal(t, 5.0, StreakBonusPercent(3, nil))
	require.Equal(t, 5.0, StreakBonusPercent(6, nil))
	require.Equal(t, 10.0, StreakBonusPercent(7, nil))
	require.Equal(t, 15.0, StreakBonusPercent(14, nil))
	require.Equal(t, 20.0, StreakBonusPercent(30, nil))
	require.Equal(t, 20.0, StreakBonusPercent(365, nil))
}

func TestStreakBonusPercentCappedBySchedule(t *testing.T) {
	cfg := &courseconfig.CourseConfig{
		StreakSchedule: []courseconfig.StreakTier{
			{Days: 2, BonusPercent: 10},
			{Days: 5, BonusPercent: 40},
		},
		MaxStreakBonusPercent: 25,
	}

	require.Equal(t, 0.0, StreakBonusPercent(1, cfg))
	require.Equal(t, 10.0, StreakBonusPercent(2, cfg))
	require.Equal(t, 25.0, StreakBonusPercent(5, cfg), "schedule tier above cap is clamped")
}
