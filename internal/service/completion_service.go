package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/observability"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// CompletionService runs the mark-complete pipeline: resolve configuration,
// compute points and streak, write the ledger deposit and update progress and
// badges. Marking incomplete reverses the deposit but leaves badges and the
// streak alone.
type CompletionService interface {
	Complete(ctx context.Context, assignmentID uint, payload dto.CompleteRequest) (dto.CompletionResponse, error)
	Uncomplete(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error)
}

type completionService struct {
	assignments repository.AssignmentRepository
	wallet      repository.WalletRepository
	resolver    ConfigResolver
	progress    ProgressService
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCompletionService wires the completion pipeline.
func NewCompletionService(
	assignments repository.AssignmentRepository,
	wallet repository.WalletRepository,
	resolver ConfigResolver,
	progress ProgressService,
	events EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) CompletionService {
	return &completionService{
		assignments: assignments,
		wallet:      wallet,
		resolver:    resolver,
		progress:    progress,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "completion_service").Logger(),
		now:         time.Now,
	}
}

func (s *completionService) Complete(ctx context.Context, assignmentID uint, payload dto.CompleteRequest) (dto.CompletionResponse, error) {
	tracer := otel.Tracer("github.com/familyflow/familyflow-api/internal/service/completion")
	ctx, span := tracer.Start(ctx, "completion.complete")
	span.SetAttributes(attribute.Int64("completion.assignment_id", int64(assignmentID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.CompletionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompletionResponse{}, ErrAssignmentNotFound
		}
		return dto.CompletionResponse{}, err
	}

	// Re-completing without un-completing in between is a full no-op, even
	// when the first completion earned nothing: counters, attempts and the
	// activity log must not move twice.
	if assignment.IsCompleted {
		span.SetAttributes(attribute.Bool("completion.noop", true))
		return dto.CompletionResponse{Assignment: dto.NewAssignmentResponse(assignment)}, nil
	}

	resolution, err := s.resolver.Resolve(ctx, assignment)
	if err != nil {
		span.RecordError(err)
		return dto.CompletionResponse{}, err
	}

	today := CalendarDate(s.now())
	previousBest := assignment.BestAttempt()

	var (
		award            int
		streakBonus      int
		improvementBonus int
		studentSnapshot  models.Student
	)

	err = s.wallet.Mutate(ctx, assignment.StudentID, func(txn repository.WalletTxn) error {
		student := txn.Student()

		newCurrent, newLongest := AdvanceStreak(student.LastCompletionDate, today, student.CurrentStreak, student.LongestStreak)
		bonusPercent := StreakBonusPercent(newCurrent, resolution.Config)

		award, streakBonus, improvementBonus = 0, 0, 0
		totalApplied := 0

		if QualifiesForPoints(assignment.Gradable, payload.Grade) {
			base := BasePoints(resolution.Config, resolution.CategoryKey, assignment.PointsBase)
			award = AwardPoints(base, Multiplier(resolution.Config, resolution.CategoryKey, payload.Grade))

			if award > 0 {
				aid := assignment.ID
				deposit := models.WalletTransaction{
					Type:         models.TxnDeposit,
					Points:       award,
					AssignmentID: &aid,
				}
				if err := txn.Append(&deposit); err != nil {
					return err
				}
				assignment.RewardTxnID = &deposit.ID
				totalApplied += award

				streakBonus = StreakBonusPoints(base, bonusPercent)
				if streakBonus > 0 {
					if err := txn.Append(&models.WalletTransaction{
						Type:         models.TxnStreakBonus,
						Points:       streakBonus,
						AssignmentID: &aid,
					}); err != nil {
						return err
					}
					totalApplied += streakBonus
				}

				if resolution.Config != nil && resolution.Config.ImprovementBonusPoints > 0 &&
					previousBest != nil && payload.Grade != nil && *payload.Grade > *previousBest {
					improvementBonus = resolution.Config.ImprovementBonusPoints
					if err := txn.Append(&models.WalletTransaction{
						Type:         models.TxnImprovementBonus,
						Points:       improvementBonus,
						AssignmentID: &aid,
					}); err != nil {
						return err
					}
					totalApplied += improvementBonus
				}
			}
		}

		student.CurrentStreak = newCurrent
		student.LongestStreak = newLongest
		student.LastCompletionDate = today

		assignment.IsCompleted = true
		assignment.CompletionDate = today
		assignment.Grade = payload.Grade
		assignment.PointsEarned = totalApplied
		assignment.RewardPointsApplied = totalApplied
		if payload.Grade != nil {
			assignment.Attempts = append(assignment.Attempts, models.GradeAttempt{
				Grade:    *payload.Grade,
				GradedAt: s.now(),
			})
		}

		if err := txn.SaveAssignment(&assignment); err != nil {
			return err
		}

		studentSnapshot = *student
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompletionResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion_failed")
		return dto.CompletionResponse{}, err
	}

	badges, err := s.progress.ApplyCompletion(ctx, CompletionInput{
		Assignment: assignment,
		Student:    studentSnapshot,
		Config:     resolution.Config,
		Category:   resolution.CategoryKey,
		Grade:      payload.Grade,
		WPM:        payload.WPM,
		Accuracy:   payload.Accuracy,
		Minutes:    payload.Minutes,
		Date:       today,
	})
	if err != nil {
		// The deposit is committed; progress failures are surfaced but the
		// ledger stays intact.
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("progress update failed after deposit")
		return dto.CompletionResponse{}, err
	}

	observability.Completions().Inc()
	if total := award + streakBonus + improvementBonus; total > 0 {
		observability.PointsAwarded().Add(float64(total))
		s.events.Publish(ctx, Event{
			Type:      EventPointsDeposited,
			StudentID: assignment.StudentID,
			Payload:   map[string]interface{}{"assignment_id": assignment.ID, "points": total},
		})
	}
	s.events.Publish(ctx, Event{
		Type:      EventAssignmentCompleted,
		StudentID: assignment.StudentID,
		Payload:   map[string]interface{}{"assignment_id": assignment.ID},
	})

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", assignment.StudentID).
		Int("points", award).
		Int("streak_bonus", streakBonus).
		Msg("assignment completed")

	return dto.CompletionResponse{
		Assignment:       dto.NewAssignmentResponse(assignment),
		PointsAwarded:    award,
		StreakBonus:      streakBonus,
		ImprovementBonus: improvementBonus,
		CurrentStreak:    studentSnapshot.CurrentStreak,
		LongestStreak:    studentSnapshot.LongestStreak,
		Badges:           dto.NewBadgeResponseSlice(badges),
	}, nil
}

// Uncomplete reverses the outstanding deposit, if any, and decrements the
// completion counter. Earned badges and the streak are intentionally left in
// place; achievements are permanent.
func (s *completionService) Uncomplete(ctx context.Context, assignmentID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if !assignment.IsCompleted {
		return dto.NewAssignmentResponse(assignment), nil
	}

	err = s.wallet.Mutate(ctx, assignment.StudentID, func(txn repository.WalletTxn) error {
		if assignment.HasLiveReward() && assignment.RewardPointsApplied != 0 {
			aid := assignment.ID
			if err := txn.Append(&models.WalletTransaction{
				Type:         models.TxnReversal,
				Points:       -assignment.RewardPointsApplied,
				AssignmentID: &aid,
				OriginalID:   assignment.RewardTxnID,
			}); err != nil {
				return err
			}
		}

		assignment.IsCompleted = false
		assignment.CompletionDate = ""
		assignment.RewardTxnID = nil
		assignment.RewardPointsApplied = 0
		assignment.PointsEarned = 0

		return txn.SaveAssignment(&assignment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrStudentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.progress.ReverseCompletion(ctx, assignment.StudentID, assignment.SubjectID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.events.Publish(ctx, Event{
		Type:      EventAssignmentReversed,
		StudentID: assignment.StudentID,
		Payload:   map[string]interface{}{"assignment_id": assignment.ID},
	})
	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment completion reversed")

	return dto.NewAssignmentResponse(assignment), nil
}
