package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// RewardCreateRequest adds a catalog entry. Tier is derived from cost when
// omitted.
type RewardCreateRequest struct {
	FamilyID           string `json:"family_id" validate:"required"`
	Name               string `json:"name" validate:"required,min=1,max=255"`
	Description        string `json:"description" validate:"omitempty,max=2000"`
	PointCost          int    `json:"point_cost" validate:"required,gt=0"`
	Tier               string `json:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
	AssignedStudentIDs []uint `json:"assigned_student_ids"`
}

// RewardUpdateRequest patches a catalog entry. Nil fields are untouched.
type RewardUpdateRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description        *string `json:"description" validate:"omitempty,max=2000"`
	PointCost          *int    `json:"point_cost" validate:"omitempty,gt=0"`
	Tier               *string `json:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
	IsActive           *bool   `json:"is_active"`
	AssignedStudentIDs *[]uint `json:"assigned_student_ids"`
}

// RewardResponse is the public view of a catalog entry.
type RewardResponse struct {
	ID                 uint      `json:"id"`
	FamilyID           string    `json:"family_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	PointCost          int       `json:"point_cost"`
	Tier               string    `json:"tier"`
	IsActive           bool      `json:"is_active"`
	AssignedStudentIDs []uint    `json:"assigned_student_ids"`
	TimesClaimedTotal  int       `json:"times_claimed_total"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewRewardResponse converts a reward model.
func NewRewardResponse(reward models.Reward) RewardResponse {
	return RewardResponse{
		ID:                 reward.ID,
		FamilyID:           reward.FamilyID,
		Name:               reward.Name,
		Description:        reward.Description,
		PointCost:          reward.PointCost,
		Tier:               reward.Tier,
		IsActive:           reward.IsActive,
		AssignedStudentIDs: reward.AssignedStudentIDs,
		TimesClaimedTotal:  reward.TimesClaimedTotal,
		CreatedAt:          reward.CreatedAt,
		UpdatedAt:          reward.UpdatedAt,
	}
}

// NewRewardResponseSlice converts a list of rewards.
func NewRewardResponseSlice(rewards []models.Reward) []RewardResponse {
	responses := make([]RewardResponse, 0, len(rewards))
	for _, reward := range rewards {
		responses = append(responses, NewRewardResponse(reward))
	}
	return responses
}

// RewardClaimResponse is one redemption with its snapshotted cost and tier.
type RewardClaimResponse struct {
	ID          uint       `json:"id"`
	FamilyID    string     `json:"family_id"`
	StudentID   uint       `json:"student_id"`
	RewardID    uint       `json:"reward_id"`
	RewardName  string     `json:"reward_name"`
	PointCost   int        `json:"point_cost"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewRewardClaimResponse converts a claim model.
func NewRewardClaimResponse(claim models.RewardClaim) RewardClaimResponse {
	return RewardClaimResponse{
		ID:          claim.ID,
		FamilyID:    claim.FamilyID,
		StudentID:   claim.StudentID,
		RewardID:    claim.RewardID,
		RewardName:  claim.RewardName,
		PointCost:   claim.PointCost,
		Tier:        claim.Tier,
		Status:      claim.Status,
		FulfilledAt: claim.FulfilledAt,
		CreatedAt:   claim.CreatedAt,
	}
}

// NewRewardClaimResponseSlice converts a list of claims.
func NewRewardClaimResponseSlice(claims []models.RewardClaim) []RewardClaimResponse {
	responses := make([]RewardClaimResponse, 0, len(claims))
	for _, claim := range claims {
		responses = append(responses, NewRewardClaimResponse(claim))
	}
	return responses
}

// GroupRewardCreateRequest defines a shared family goal.
type GroupRewardCreateRequest struct {
	FamilyID     string `json:"family_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"omitempty,max=2000"`
	PointsNeeded int    `json:"points_needed" validate:"required,gt=0"`
}

// GroupContributeRequest moves points from a student wallet into the goal.
type GroupContributeRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

// GroupRewardResponse is the public view of a shared goal.
type GroupRewardResponse struct {
	ID                   uint         `json:"id"`
	FamilyID             string       `json:"family_id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	PointsNeeded         int          `json:"points_needed"`
	PointsContributed    int          `json:"points_contributed"`
	StudentContributions map[uint]int `json:"student_contributions"`
	IsRedeemed           bool         `json:"is_redeemed"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// NewGroupRewardResponse converts a group reward model.
func NewGroupRewardResponse(goal models.GroupReward) GroupRewardResponse {
	contributions := goal.StudentContributions.Data()
	if contributions == nil {
		contributions = map[uint]int{}
	}
	return GroupRewardResponse{
		ID:                   goal.ID,
		FamilyID:             goal.FamilyID,
		Name:                 goal.Name,
		Description:          goal.Description,
		PointsNeeded:         goal.PointsNeeded,
		PointsContributed:    goal.PointsContributed,
		StudentContributions: contributions,
		IsRedeemed:           goal.IsRedeemed,
		CreatedAt:            goal.CreatedAt,
		UpdatedAt:            goal.UpdatedAt,
	}
}

// NewGroupRewardResponseSlice converts a list of shared goals.
func NewGroupRewardResponseSlice(goals []models.GroupReward) []GroupRewardResponse {
	responses := make([]GroupRewardResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, NewGroupRewardResponse(goal))
	}
	return responses
}
