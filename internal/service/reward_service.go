package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// RewardService manages the reward catalog, claim fulfilment and group
// reward definitions. Redemption and contribution live on the wallet service
// because they touch balances.
type RewardService interface {
	List(ctx context.Context, familyID string, forStudent *uint) ([]dto.RewardResponse, error)
	Get(ctx context.Context, id uint) (dto.RewardResponse, error)
	Create(ctx context.Context, payload dto.RewardCreateRequest) (dto.RewardResponse, error)
	Update(ctx context.Context, id uint, payload dto.RewardUpdateRequest) (dto.RewardResponse, error)
	Deactivate(ctx context.Context, id uint) (dto.RewardResponse, error)
	HardDelete(ctx context.Context, id uint) error

	ListClaims(ctx context.Context, familyID string, studentID *uint) ([]dto.RewardClaimResponse, error)
	FulfillClaim(ctx context.Context, claimID uint) (dto.RewardClaimResponse, error)

	ListGroupRewards(ctx context.Context, familyID string) ([]dto.GroupRewardResponse, error)
	CreateGroupReward(ctx context.Context, payload dto.GroupRewardCreateRequest) (dto.GroupRewardResponse, error)
	RedeemGroupReward(ctx context.Context, id uint) (dto.GroupRewardResponse, error)
}

type rewardService struct {
	repo      repository.RewardRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRewardService builds the reward service.
func NewRewardService(repo repository.RewardRepository, validate *validator.Validate, logger zerolog.Logger) RewardService {
	return &rewardService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "reward_service").Logger(),
		now:       time.Now,
	}
}

func (s *rewardService) List(ctx context.Context, familyID string, forStudent *uint) ([]dto.RewardResponse, error) {
	rewards, err := s.repo.List(ctx, familyID, forStudent != nil)
	if err != nil {
		return nil, err
	}

	if forStudent != nil {
		visible := rewards[:0]
		for _, reward := range rewards {
			if reward.VisibleTo(*forStudent) {
				visible = append(visible, reward)
			}
		}
		rewards = visible
	}

	return dto.NewRewardResponseSlice(rewards), nil
}

func (s *rewardService) Get(ctx context.Context, id uint) (dto.RewardResponse, error) {
	reward, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RewardResponse{}, ErrRewardNotFound
		}
		return dto.RewardResponse{}, err
	}
	return dto.NewRewardResponse(reward), nil
}

func (s *rewardService) Create(ctx context.Context, payload dto.RewardCreateRequest) (dto.RewardResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RewardResponse{}, err
	}

	tier := payload.Tier
	if tier == "" {
		tier = models.TierForCost(payload.PointCost)
	}

	reward := models.Reward{
		FamilyID:           payload.FamilyID,
		Name:               strings.TrimSpace(s.sanitizer.Sanitize(payload.Name)),
		Description:        strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		PointCost:          payload.PointCost,
		Tier:               tier,
		IsActive:           true,
		AssignedStudentIDs: datatypes.JSONSlice[uint](payload.AssignedStudentIDs),
	}
	if err := s.repo.Create(ctx, &reward); err != nil {
		return dto.RewardResponse{}, err
	}

	s.logger.Info().Uint("reward_id", reward.ID).Str("tier", reward.Tier).Msg("reward created")
	return dto.NewRewardResponse(reward), nil
}

func (s *rewardService) Update(ctx context.Context, id uint, payload dto.RewardUpdateRequest) (dto.RewardResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RewardResponse{}, err
	}

	reward, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RewardResponse{}, ErrRewardNotFound
		}
		return dto.RewardResponse{}, err
	}

	if payload.Name != nil {
		reward.Name = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Name))
	}
	if payload.Description != nil {
		reward.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.PointCost != nil {
		reward.PointCost = *payload.PointCost
		if payload.Tier == nil {
			reward.Tier = models.TierForCost(reward.PointCost)
		}
	}
	if payload.Tier != nil {
		reward.Tier = *payload.Tier
	}
	if payload.IsActive != nil {
		reward.IsActive = *payload.IsActive
	}
	if payload.AssignedStudentIDs != nil {
		reward.AssignedStudentIDs = datatypes.JSONSlice[uint](*payload.AssignedStudentIDs)
	}

	if err := s.repo.Update(ctx, &reward); err != nil {
		return dto.RewardResponse{}, err
	}
	return dto.NewRewardResponse(reward), nil
}

// Deactivate is the default removal path: the reward stays for history but is
// no longer redeemable.
func (s *rewardService) Deactivate(ctx context.Context, id uint) (dto.RewardResponse, error) {
	reward, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RewardResponse{}, ErrRewardNotFound
		}
		return dto.RewardResponse{}, err
	}

	reward.IsActive = false
	if err := s.repo.Update(ctx, &reward); err != nil {
		return dto.RewardResponse{}, err
	}

	s.logger.Info().Uint("reward_id", reward.ID).Msg("reward deactivated")
	return dto.NewRewardResponse(reward), nil
}

func (s *rewardService) HardDelete(ctx context.Context, id uint) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRewardNotFound
		}
		return err
	}

	s.logger.Info().Uint("reward_id", id).Msg("reward hard deleted")
	return nil
}

func (s *rewardService) ListClaims(ctx context.Context, familyID string, studentID *uint) ([]dto.RewardClaimResponse, error) {
	claims, err := s.repo.ListClaims(ctx, familyID, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewRewardClaimResponseSlice(claims), nil
}

// FulfillClaim moves a pending claim to its terminal state. There is no
// un-fulfill.
func (s *rewardService) FulfillClaim(ctx context.Context, claimID uint) (dto.RewardClaimResponse, error) {
	claim, err := s.repo.GetClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RewardClaimResponse{}, ErrClaimNotFound
		}
		return dto.RewardClaimResponse{}, err
	}
	if claim.Status == models.ClaimStatusFulfilled {
		return dto.RewardClaimResponse{}, ErrClaimFulfilled
	}

	fulfilledAt := s.now()
	claim.Status = models.ClaimStatusFulfilled
	claim.FulfilledAt = &fulfilledAt

	if err := s.repo.UpdateClaim(ctx, &claim); err != nil {
		return dto.RewardClaimResponse{}, err
	}

	s.logger.Info().Uint("claim_id", claim.ID).Msg("claim fulfilled")
	return dto.NewRewardClaimResponse(claim), nil
}

func (s *rewardService) ListGroupRewards(ctx context.Context, familyID string) ([]dto.GroupRewardResponse, error) {
	goals, err := s.repo.ListGroupRewards(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupRewardResponseSlice(goals), nil
}

func (s *rewardService) CreateGroupReward(ctx context.Context, payload dto.GroupRewardCreateRequest) (dto.GroupRewardResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupRewardResponse{}, err
	}

	goal := models.GroupReward{
		FamilyID:     payload.FamilyID,
		Name:         strings.TrimSpace(s.sanitizer.Sanitize(payload.Name)),
		Description:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		PointsNeeded: payload.PointsNeeded,
	}
	if err := s.repo.CreateGroupReward(ctx, &goal); err != nil {
		return dto.GroupRewardResponse{}, err
	}

	s.logger.Info().Uint("group_reward_id", goal.ID).Msg("group reward created")
	return dto.NewGroupRewardResponse(goal), nil
}

// RedeemGroupReward marks the shared goal redeemed, freezing further
// contribution. The flag is terminal.
func (s *rewardService) RedeemGroupReward(ctx context.Context, id uint) (dto.GroupRewardResponse, error) {
	goal, err := s.repo.GetGroupReward(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupRewardResponse{}, ErrGroupRewardNotFound
		}
		return dto.GroupRewardResponse{}, err
	}
	if goal.IsRedeemed {
		return dto.GroupRewardResponse{}, ErrGroupRewardRedeemed
	}

	goal.IsRedeemed = true
	if err := s.repo.UpdateGroupReward(ctx, &goal); err != nil {
		return dto.GroupRewardResponse{}, err
	}

	s.logger.Info().Uint("group_reward_id", goal.ID).Msg("group reward redeemed")
	return dto.NewGroupRewardResponse(goal), nil
}
