package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// SubjectCreateRequest creates a new subject.
type SubjectCreateRequest struct {
	FamilyID       string `json:"family_id" validate:"required"`
	Name           string `json:"name" validate:"required,min=1,max=255"`
	CourseConfigID string `json:"course_config_id" validate:"omitempty,max=128"`
}

// SubjectUpdateRequest patches a subject. Nil fields are untouched.
type SubjectUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=255"`
	CourseConfigID *string `json:"course_config_id" validate:"omitempty,max=128"`
}

// SubjectResponse is the public view of a subject.
type SubjectResponse struct {
	ID             uint      `json:"id"`
	FamilyID       string    `json:"family_id"`
	Name           string    `json:"name"`
	CourseConfigID string    `json:"course_config_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSubjectResponse converts a subject model into its response shape.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:             subject.ID,
		FamilyID:       subject.FamilyID,
		Name:           subject.Name,
		CourseConfigID: subject.CourseConfigID,
		CreatedAt:      subject.CreatedAt,
		UpdatedAt:      subject.UpdatedAt,
	}
}

// NewSubjectResponseSlice converts a list of subjects.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}
	return responses
}
