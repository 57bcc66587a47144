package models

import "time"

// Subject is a family-level course such as "Math" or "Chemistry". A subject
// may carry an explicit curriculum configuration id; when it does not, the
// resolver falls back to name heuristics.
type Subject struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FamilyID       string    `gorm:"size:128;index;not null" json:"family_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	CourseConfigID string    `gorm:"size:128" json:"course_config_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
