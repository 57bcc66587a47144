package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradeAttempt is one historical grading of an assignment. The attempts list
// is append-only; re-grading never rewrites past entries.
type GradeAttempt struct {
	Grade    float64   `json:"grade"`
	GradedAt time.Time `json:"graded_at"`
}

// Assignment is a unit of schoolwork owned by exactly one student and one
// subject. Dates are calendar strings in the "2006-01-02" layout or empty.
type Assignment struct {
	ID                  uint                                  `gorm:"primaryKey" json:"id"`
	FamilyID            string                                `gorm:"size:128;index;not null" json:"family_id"`
	StudentID           uint                                  `gorm:"not null;index" json:"student_id"`
	SubjectID           uint                                  `gorm:"not null;index" json:"subject_id"`
	Name                string                                `gorm:"size:255;not null" json:"name"`
	DueDate             string                                `gorm:"size:10" json:"due_date"`
	CompletionDate      string                                `gorm:"size:10" json:"completion_date"`
	IsCompleted         bool                                  `gorm:"not null;default:false" json:"is_completed"`
	Grade               *float64                              `json:"grade"`
	Gradable            bool                                  `gorm:"not null;default:true" json:"gradable"`
	PointsBase          int                                   `gorm:"not null;default:0" json:"points_base"`
	PointsEarned        int                                   `gorm:"not null;default:0" json:"points_earned"`
	CourseConfigID      string                                `gorm:"size:128" json:"course_config_id"`
	CategoryKey         string                                `gorm:"size:64" json:"category_key"`
	ModuleID            string                                `gorm:"size:128" json:"module_id"`
	Attempts            datatypes.JSONSlice[GradeAttempt]     `gorm:"type:json" json:"attempts"`
	RewardTxnID         *uint                                 `json:"reward_txn_id"`
	RewardPointsApplied int                                   `gorm:"not null;default:0" json:"reward_points_applied"`
	AttachmentURL       string                                `gorm:"size:512" json:"attachment_url"`
	CreatedAt           time.Time                             `json:"created_at"`
	UpdatedAt           time.Time                             `json:"updated_at"`
	Student             Student                               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject             Subject                               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasLiveReward reports whether a deposit is still outstanding for this
// assignment. Completing an already-rewarded assignment is a ledger no-op.
func (a Assignment) HasLiveReward() bool {
	return a.RewardTxnID != nil
}

// BestAttempt returns the highest historical grade, or nil when ungraded.
func (a Assignment) BestAttempt() *float64 {
	var best *float64
	for i := range a.Attempts {
		if best == nil || a.Attempts[i].Grade > *best {
			grade := a.Attempts[i].Grade
			best = &grade
		}
	}
	return best
}
