package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedAttachmentTypes = []string{"application/pdf", "image/png", "image/jpeg", "image/webp"}

// ErrUnsupportedAttachment indicates the uploaded file type is not accepted.
var ErrUnsupportedAttachment = errors.New("unsupported attachment type")

// AssignmentService exposes assignment CRUD. Completion state changes go
// through the completion service instead.
type AssignmentService interface {
	List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	students  repository.StudentRepository
	subjects  repository.SubjectRepository
	validator *validator.Validate
	uploader  FileUploader
	logger    zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, students repository.StudentRepository, subjects repository.SubjectRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		students:  students,
		subjects:  subjects,
		validator: validate,
		uploader:  uploader,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return dto.NewAssignmentResponseSlice(assignments), total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrStudentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrSubjectNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := normalizeDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	gradable := true
	if payload.Gradable != nil {
		gradable = *payload.Gradable
	}

	assignment := models.Assignment{
		FamilyID:       student.FamilyID,
		StudentID:      payload.StudentID,
		SubjectID:      payload.SubjectID,
		Name:           payload.Name,
		DueDate:        dueDate,
		Gradable:       gradable,
		PointsBase:     payload.PointsBase,
		CourseConfigID: payload.CourseConfigID,
		CategoryKey:    payload.CategoryKey,
		ModuleID:       payload.ModuleID,
	}

	if file != nil {
		url, err := s.uploadAttachment(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.AttachmentURL = url
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("student_id", assignment.StudentID).Msg("assignment created")
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Name != nil {
		assignment.Name = *payload.Name
	}
	if payload.DueDate != nil {
		dueDate, err := normalizeDate(*payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}
	if payload.Gradable != nil {
		assignment.Gradable = *payload.Gradable
	}
	if payload.PointsBase != nil {
		assignment.PointsBase = *payload.PointsBase
	}
	if payload.CourseConfigID != nil {
		assignment.CourseConfigID = *payload.CourseConfigID
	}
	if payload.CategoryKey != nil {
		assignment.CategoryKey = *payload.CategoryKey
	}
	if payload.ModuleID != nil {
		assignment.ModuleID = *payload.ModuleID
	}

	if file != nil {
		url, err := s.uploadAttachment(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.AttachmentURL = url
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) uploadAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", errors.New("attachment uploads are not configured")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open attachment: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to inspect attachment: %w", err)
	}
	allowed := false
	for _, accepted := range allowedAttachmentTypes {
		if detected.Is(accepted) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", ErrUnsupportedAttachment
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind attachment: %w", err)
	}

	url, err := s.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	return url, nil
}

// normalizeDate parses and re-renders a calendar date in the canonical
// layout.
func normalizeDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed.Format(DateLayout), nil
}
