package models

import (
	"time"

	"gorm.io/datatypes"
)

// MasteryRecord tracks the best score for one topic test and whether mastery
// has been achieved at the configured threshold.
type MasteryRecord struct {
	BestScore float64 `json:"best_score"`
	Achieved  bool    `json:"achieved"`
}

// ProgressMetrics holds typing and accuracy metrics used by badge rules.
// The WPM baseline is set on first observation and never moves afterwards.
type ProgressMetrics struct {
	WPMBaseline     float64 `json:"wpm_baseline"`
	WPMCurrent      float64 `json:"wpm_current"`
	WPMHigh         float64 `json:"wpm_high"`
	AccuracyAverage float64 `json:"accuracy_average"`
	AccuracySamples int     `json:"accuracy_samples"`
}

// Activity count bucket keys. Buckets tally qualifying grades and feed the
// count-threshold badge rules.
const (
	CountGrade95Plus = "grade_95_plus"
	CountGrade97Plus = "grade_97_plus"
	CountPerfectEOL  = "perfect_eol_test"
)

// SubjectProgress aggregates completion, mastery and metric state for one
// (student, subject) pair.
type SubjectProgress struct {
	ID               uint                                       `gorm:"primaryKey" json:"id"`
	StudentID        uint                                       `gorm:"not null;index:idx_progress_student_subject,unique" json:"student_id"`
	SubjectID        uint                                       `gorm:"not null;index:idx_progress_student_subject,unique" json:"subject_id"`
	CompletedTotal   int                                        `gorm:"not null;default:0" json:"completed_total"`
	Mastery          datatypes.JSONType[map[string]MasteryRecord] `gorm:"type:json" json:"mastery"`
	Metrics          datatypes.JSONType[ProgressMetrics]        `gorm:"type:json" json:"metrics"`
	ActivityCounts   datatypes.JSONType[map[string]int]         `gorm:"type:json" json:"activity_counts"`
	CompletedModules datatypes.JSONSlice[string]                `gorm:"type:json" json:"completed_modules"`
	CreatedAt        time.Time                                  `json:"created_at"`
	UpdatedAt        time.Time                                  `json:"updated_at"`
}

// BadgeEarned is a write-once achievement record. Badges are permanent and
// survive reversal of the activity that triggered them.
type BadgeEarned struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index:idx_badge_student_badge,unique" json:"student_id"`
	BadgeID   string    `gorm:"size:128;not null;index:idx_badge_student_badge,unique" json:"badge_id"`
	Name      string    `gorm:"size:255" json:"name"`
	SubjectID *uint     `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyActivity is the per (student, date) activity log. It records what
// happened during a day but is not the source of truth for streaks; streaks
// derive from the student's last completion date.
type DailyActivity struct {
	ID             uint                               `gorm:"primaryKey" json:"id"`
	StudentID      uint                               `gorm:"not null;index:idx_activity_student_date,unique" json:"student_id"`
	Date           string                             `gorm:"size:10;not null;index:idx_activity_student_date,unique" json:"date"`
	Assignments    int                                `gorm:"not null;default:0" json:"assignments"`
	Minutes        int                                `gorm:"not null;default:0" json:"minutes"`
	SubjectMinutes datatypes.JSONType[map[uint]int]   `gorm:"type:json" json:"subject_minutes"`
	Categories     datatypes.JSONType[map[string]int] `gorm:"type:json" json:"categories"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}
