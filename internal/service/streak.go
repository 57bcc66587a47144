package service

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
)

// DateLayout is the canonical calendar-date representation used everywhere.
// Dates are derived from server-local time; no other timezone is consulted.
const DateLayout = "2006-01-02"

// CalendarDate formats a timestamp as a canonical calendar date.
func CalendarDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AdvanceStreak is a pure function of the student's last completion date and
// today's date.
//
//   - no prior activity: streak becomes 1
//   - same calendar day: unchanged (re-completions are idempotent)
//   - exactly one day later: increment
//   - longer gap: reset to 1
//
// Longest is raised whenever the new current streak exceeds it.
func AdvanceStreak(lastDate, today string, current, longest int) (int, int) {
	newCurrent := 1

	last, lastErr := time.Parse(DateLayout, lastDate)
	now, nowErr := time.Parse(DateLayout, today)
	if lastErr == nil && nowErr == nil {
		switch days := int(now.Sub(last).Hours() / 24); {
		case days == 0:
			newCurrent = current
		case days == 1:
			newCurrent = current + 1
		}
	}

	if newCurrent < 1 {
		newCurrent = 1
	}
	if newCurrent > longest {
		longest = newCurrent
	}
	return newCurrent, longest
}

// StreakBonusPercent evaluates the streak schedule as a step function of the
// current streak, capped at the configured maximum.
func StreakBonusPercent(streak int, cfg *courseconfig.CourseConfig) float64 {
	schedule := courseconfig.DefaultStreakSchedule
	maxPercent := courseconfig.DefaultMaxStreakBonus
	if cfg != nil {
		schedule = cfg.StreakSchedule
		maxPercent = cfg.MaxStreakBonusPercent
	}

	percent := 0.0
	for _, tier := range schedule {
		if streak >= tier.Days && tier.BonusPercent > percent {
			percent = tier.BonusPercent
		}
	}
	if percent > maxPercent {
		percent = maxPercent
	}
	return percent
}
