package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// StudentCreateRequest creates a new student profile.
type StudentCreateRequest struct {
	FamilyID   string `json:"family_id" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Age        int    `json:"age" validate:"omitempty,gte=0,lte=100"`
	GradeLevel string `json:"grade_level" validate:"omitempty,max=64"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

// StudentUpdateRequest patches a student profile. Nil fields are untouched.
type StudentUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=255"`
	Age        *int    `json:"age" validate:"omitempty,gte=0,lte=100"`
	GradeLevel *string `json:"grade_level" validate:"omitempty,max=64"`
	AvatarURL  *string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

// StudentResponse is the public view of a student.
type StudentResponse struct {
	ID                 uint      `json:"id"`
	FamilyID           string    `json:"family_id"`
	Name               string    `json:"name"`
	Age                int       `json:"age"`
	GradeLevel         string    `json:"grade_level"`
	AvatarURL          string    `json:"avatar_url"`
	WalletBalance      int       `json:"wallet_balance"`
	CurrentStreak      int       `json:"current_streak"`
	LongestStreak      int       `json:"longest_streak"`
	LastCompletionDate string    `json:"last_completion_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewStudentResponse converts a student model into its response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:                 student.ID,
		FamilyID:           student.FamilyID,
		Name:               student.Name,
		Age:                student.Age,
		GradeLevel:         student.GradeLevel,
		AvatarURL:          student.AvatarURL,
		WalletBalance:      student.WalletBalance,
		CurrentStreak:      student.CurrentStreak,
		LongestStreak:      student.LongestStreak,
		LastCompletionDate: student.LastCompletionDate,
		CreatedAt:          student.CreatedAt,
		UpdatedAt:          student.UpdatedAt,
	}
}

// NewStudentResponseSlice converts a list of students.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}
