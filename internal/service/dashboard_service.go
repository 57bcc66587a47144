package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// DashboardService aggregates the per-student home screen: wallet, streak,
// recent ledger entries, pending claims and badge count. Results are cached
// in Redis; the cache is best effort and a miss or failure falls through to
// the database.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	Invalidate(ctx context.Context, studentID uint)
}

type dashboardService struct {
	students    repository.StudentRepository
	wallet      repository.WalletRepository
	progress    repository.ProgressRepository
	rewards     repository.RewardRepository
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(
	students repository.StudentRepository,
	wallet repository.WalletRepository,
	progress repository.ProgressRepository,
	rewards repository.RewardRepository,
	assignments repository.AssignmentRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		students:    students,
		wallet:      wallet,
		progress:    progress,
		rewards:     rewards,
		assignments: assignments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, ErrStudentNotFound
	}

	transactions, err := s.wallet.ListTransactions(ctx, studentID, 10)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	badges, err := s.progress.ListBadges(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	claims, err := s.rewards.ListClaims(ctx, student.FamilyID, &studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	pendingClaims := 0
	for _, claim := range claims {
		if claim.Status == models.ClaimStatusPending {
			pendingClaims++
		}
	}

	open := false
	openAssignments, openTotal, err := s.assignments.List(ctx, repository.AssignmentFilter{
		StudentID: &studentID,
		Completed: &open,
		PageSize:  5,
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{
		Student:            dto.NewStudentResponse(student),
		RecentTransactions: dto.NewWalletTransactionResponseSlice(transactions),
		BadgeCount:         len(badges),
		PendingClaims:      pendingClaims,
		OpenAssignments:    openTotal,
		UpNext:             dto.NewAssignmentResponseSlice(openAssignments),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard after a mutation.
func (s *dashboardService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}
