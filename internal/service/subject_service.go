package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// SubjectService manages family subjects and their optional link to a
// curriculum configuration.
type SubjectService interface {
	List(ctx context.Context, familyID string) ([]dto.SubjectResponse, error)
	Get(ctx context.Context, id uint) (dto.SubjectResponse, error)
	Create(ctx context.Context, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	Update(ctx context.Context, id uint, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id uint) error
}

type subjectService struct {
	repo      repository.SubjectRepository
	configs   *courseconfig.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubjectService builds the subject service.
func NewSubjectService(repo repository.SubjectRepository, configs *courseconfig.Store, validate *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		repo:      repo,
		configs:   configs,
		validator: validate,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

// ErrUnknownCourseConfig indicates the payload referenced a curriculum
// configuration id that is not loaded.
var ErrUnknownCourseConfig = errors.New("unknown course config id")

func (s *subjectService) List(ctx context.Context, familyID string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.List(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *subjectService) Get(ctx context.Context, id uint) (dto.SubjectResponse, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Create(ctx context.Context, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}
	if err := s.checkConfigID(payload.CourseConfigID); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		FamilyID:       payload.FamilyID,
		Name:           payload.Name,
		CourseConfigID: payload.CourseConfigID,
	}
	if err := s.repo.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Str("name", subject.Name).Msg("subject created")
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Update(ctx context.Context, id uint, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	if payload.Name != nil {
		subject.Name = *payload.Name
	}
	if payload.CourseConfigID != nil {
		if err := s.checkConfigID(*payload.CourseConfigID); err != nil {
			return dto.SubjectResponse{}, err
		}
		subject.CourseConfigID = *payload.CourseConfigID
	}

	if err := s.repo.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted")
	return nil
}

func (s *subjectService) checkConfigID(id string) error {
	if id == "" || s.configs == nil {
		return nil
	}
	if s.configs.Get(id) == nil {
		return ErrUnknownCourseConfig
	}
	return nil
}
