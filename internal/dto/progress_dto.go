package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// MasteryResponse is the best-score record for one topic test.
type MasteryResponse struct {
	BestScore float64 `json:"best_score"`
	Achieved  bool    `json:"achieved"`
}

// SubjectProgressResponse aggregates one (student, subject) pair.
type SubjectProgressResponse struct {
	ID               uint                       `json:"id"`
	StudentID        uint                       `json:"student_id"`
	SubjectID        uint                       `json:"subject_id"`
	CompletedTotal   int                        `json:"completed_total"`
	Mastery          map[string]MasteryResponse `json:"mastery"`
	Metrics          models.ProgressMetrics     `json:"metrics"`
	ActivityCounts   map[string]int             `json:"activity_counts"`
	CompletedModules []string                   `json:"completed_modules"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// NewSubjectProgressResponse converts a progress row.
func NewSubjectProgressResponse(progress models.SubjectProgress) SubjectProgressResponse {
	mastery := map[string]MasteryResponse{}
	for testID, record := range progress.Mastery.Data() {
		mastery[testID] = MasteryResponse{BestScore: record.BestScore, Achieved: record.Achieved}
	}
	counts := progress.ActivityCounts.Data()
	if counts == nil {
		counts = map[string]int{}
	}
	return SubjectProgressResponse{
		ID:               progress.ID,
		StudentID:        progress.StudentID,
		SubjectID:        progress.SubjectID,
		CompletedTotal:   progress.CompletedTotal,
		Mastery:          mastery,
		Metrics:          progress.Metrics.Data(),
		ActivityCounts:   counts,
		CompletedModules: progress.CompletedModules,
		UpdatedAt:        progress.UpdatedAt,
	}
}

// NewSubjectProgressResponseSlice converts a list of progress rows.
func NewSubjectProgressResponseSlice(rows []models.SubjectProgress) []SubjectProgressResponse {
	responses := make([]SubjectProgressResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, NewSubjectProgressResponse(row))
	}
	return responses
}

// BadgeResponse is one earned achievement.
type BadgeResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	BadgeID   string    `json:"badge_id"`
	Name      string    `json:"name"`
	SubjectID *uint     `json:"subject_id"`
	EarnedAt  time.Time `json:"earned_at"`
}

// NewBadgeResponse converts a badge record.
func NewBadgeResponse(badge models.BadgeEarned) BadgeResponse {
	return BadgeResponse{
		ID:        badge.ID,
		StudentID: badge.StudentID,
		BadgeID:   badge.BadgeID,
		Name:      badge.Name,
		SubjectID: badge.SubjectID,
		EarnedAt:  badge.CreatedAt,
	}
}

// NewBadgeResponseSlice converts a list of badge records.
func NewBadgeResponseSlice(badges []models.BadgeEarned) []BadgeResponse {
	responses := make([]BadgeResponse, 0, len(badges))
	for _, badge := range badges {
		responses = append(responses, NewBadgeResponse(badge))
	}
	return responses
}

// DailyActivityResponse is one day's activity log for a student.
type DailyActivityResponse struct {
	ID             uint           `json:"id"`
	StudentID      uint           `json:"student_id"`
	Date           string         `json:"date"`
	Assignments    int            `json:"assignments"`
	Minutes        int            `json:"minutes"`
	SubjectMinutes map[uint]int   `json:"subject_minutes"`
	Categories     map[string]int `json:"categories"`
}

// NewDailyActivityResponse converts a daily activity row.
func NewDailyActivityResponse(activity models.DailyActivity) DailyActivityResponse {
	subjectMinutes := activity.SubjectMinutes.Data()
	if subjectMinutes == nil {
		subjectMinutes = map[uint]int{}
	}
	categories := activity.Categories.Data()
	if categories == nil {
		categories = map[string]int{}
	}
	return DailyActivityResponse{
		ID:             activity.ID,
		StudentID:      activity.StudentID,
		Date:           activity.Date,
		Assignments:    activity.Assignments,
		Minutes:        activity.Minutes,
		SubjectMinutes: subjectMinutes,
		Categories:     categories,
	}
}

// NewDailyActivityResponseSlice converts a list of daily activity rows.
func NewDailyActivityResponseSlice(rows []models.DailyActivity) []DailyActivityResponse {
	responses := make([]DailyActivityResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, NewDailyActivityResponse(row))
	}
	return responses
}
