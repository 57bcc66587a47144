package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
)

// RewardRepository provides access to the reward catalog, claims and shared
// group goals. Balance-coupled writes (redeem, contribute) go through the
// wallet repository instead.
type RewardRepository interface {
	List(ctx context.Context, familyID string, activeOnly bool) ([]models.Reward, error)
	GetByID(ctx context.Context, id uint) (models.Reward, error)
	Create(ctx context.Context, reward *models.Reward) error
	Update(ctx context.Context, reward *models.Reward) error
	HardDelete(ctx context.Context, id uint) error

	ListClaims(ctx context.Context, familyID string, studentID *uint) ([]models.RewardClaim, error)
	GetClaim(ctx context.Context, id uint) (models.RewardClaim, error)
	UpdateClaim(ctx context.Context, claim *models.RewardClaim) error

	ListGroupRewards(ctx context.Context, familyID string) ([]models.GroupReward, error)
	GetGroupReward(ctx context.Context, id uint) (models.GroupReward, error)
	CreateGroupReward(ctx context.Context, goal *models.GroupReward) error
	UpdateGroupReward(ctx context.Context, goal *models.GroupReward) error
}

type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository constructs a reward repository.
func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) List(ctx context.Context, familyID string, activeOnly bool) ([]models.Reward, error) {
	query := r.db.WithContext(ctx).Order("point_cost ASC, id ASC")
	if familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rewards []models.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *rewardRepository) GetByID(ctx context.Context, id uint) (models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, id).Error; err != nil {
		return models.Reward{}, err
	}
	return reward, nil
}

func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *rewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	return r.db.WithContext(ctx).Save(reward).Error
}

func (r *rewardRepository) HardDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Reward{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rewardRepository) ListClaims(ctx context.Context, familyID string, studentID *uint) ([]models.RewardClaim, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var claims []models.RewardClaim
	if err := query.Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *rewardRepository) GetClaim(ctx context.Context, id uint) (models.RewardClaim, error) {
	var claim models.RewardClaim
	if err := r.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		return models.RewardClaim{}, err
	}
	return claim, nil
}

func (r *rewardRepository) UpdateClaim(ctx context.Context, claim *models.RewardClaim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}

func (r *rewardRepository) ListGroupRewards(ctx context.Context, familyID string) ([]models.GroupReward, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}

	var goals []models.GroupReward
	if err := query.Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *rewardRepository) GetGroupReward(ctx context.Context, id uint) (models.GroupReward, error) {
	var goal models.GroupReward
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return models.GroupReward{}, err
	}
	return goal, nil
}

func (r *rewardRepository) CreateGroupReward(ctx context.Context, goal *models.GroupReward) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *rewardRepository) UpdateGroupReward(ctx context.Context, goal *models.GroupReward) error {
	return r.db.WithContext(ctx).Save(goal).Error
}
