package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// AssignmentCreateRequest creates a new assignment for a student.
type AssignmentCreateRequest struct {
	StudentID      uint   `json:"student_id" form:"student_id" validate:"required"`
	SubjectID      uint   `json:"subject_id" form:"subject_id" validate:"required"`
	Name           string `json:"name" form:"name" validate:"required,min=1,max=255"`
	DueDate        string `json:"due_date" form:"due_date" validate:"omitempty,len=10"`
	Gradable       *bool  `json:"gradable" form:"gradable"`
	PointsBase     int    `json:"points_base" form:"points_base" validate:"omitempty,gte=0"`
	CourseConfigID string `json:"course_config_id" form:"course_config_id" validate:"omitempty,max=128"`
	CategoryKey    string `json:"category_key" form:"category_key" validate:"omitempty,max=64"`
	ModuleID       string `json:"module_id" form:"module_id" validate:"omitempty,max=128"`
}

// AssignmentUpdateRequest patches an assignment. Nil fields are untouched.
type AssignmentUpdateRequest struct {
	Name           *string `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	DueDate        *string `json:"due_date" form:"due_date" validate:"omitempty,len=10"`
	Gradable       *bool   `json:"gradable" form:"gradable"`
	PointsBase     *int    `json:"points_base" form:"points_base" validate:"omitempty,gte=0"`
	CourseConfigID *string `json:"course_config_id" form:"course_config_id" validate:"omitempty,max=128"`
	CategoryKey    *string `json:"category_key" form:"category_key" validate:"omitempty,max=64"`
	ModuleID       *string `json:"module_id" form:"module_id" validate:"omitempty,max=128"`
}

// GradeAttemptResponse is one historical grading.
type GradeAttemptResponse struct {
	Grade    float64   `json:"grade"`
	GradedAt time.Time `json:"graded_at"`
}

// AssignmentResponse is the public view of an assignment.
type AssignmentResponse struct {
	ID                  uint                   `json:"id"`
	FamilyID            string                 `json:"family_id"`
	StudentID           uint                   `json:"student_id"`
	SubjectID           uint                   `json:"subject_id"`
	Name                string                 `json:"name"`
	DueDate             string                 `json:"due_date"`
	CompletionDate      string                 `json:"completion_date"`
	IsCompleted         bool                   `json:"is_completed"`
	Grade               *float64               `json:"grade"`
	Gradable            bool                   `json:"gradable"`
	PointsBase          int                    `json:"points_base"`
	PointsEarned        int                    `json:"points_earned"`
	CourseConfigID      string                 `json:"course_config_id"`
	CategoryKey         string                 `json:"category_key"`
	ModuleID            string                 `json:"module_id"`
	Attempts            []GradeAttemptResponse `json:"attempts"`
	RewardPointsApplied int                    `json:"reward_points_applied"`
	AttachmentURL       string                 `json:"attachment_url"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewAssignmentResponse converts an assignment model into its response shape.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	attempts := make([]GradeAttemptResponse, 0, len(assignment.Attempts))
	for _, attempt := range assignment.Attempts {
		attempts = append(attempts, GradeAttemptResponse{Grade: attempt.Grade, GradedAt: attempt.GradedAt})
	}

	return AssignmentResponse{
		ID:                  assignment.ID,
		FamilyID:            assignment.FamilyID,
		StudentID:           assignment.StudentID,
		SubjectID:           assignment.SubjectID,
		Name:                assignment.Name,
		DueDate:             assignment.DueDate,
		CompletionDate:      assignment.CompletionDate,
		IsCompleted:         assignment.IsCompleted,
		Grade:               assignment.Grade,
		Gradable:            assignment.Gradable,
		PointsBase:          assignment.PointsBase,
		PointsEarned:        assignment.PointsEarned,
		CourseConfigID:      assignment.CourseConfigID,
		CategoryKey:         assignment.CategoryKey,
		ModuleID:            assignment.ModuleID,
		Attempts:            attempts,
		RewardPointsApplied: assignment.RewardPointsApplied,
		AttachmentURL:       assignment.AttachmentURL,
		CreatedAt:           assignment.CreatedAt,
		UpdatedAt:           assignment.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a list of assignments.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
