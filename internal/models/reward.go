package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reward tiers, derived from point cost unless explicitly overridden.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// TierForCost maps a point cost onto a tier using fixed thresholds.
func TierForCost(cost int) string {
	switch {
	case cost >= 3000:
		return TierPlatinum
	case cost >= 1500:
		return TierGold
	case cost >= 500:
		return TierSilver
	default:
		return TierBronze
	}
}

// Reward is a catalog entry. An empty AssignedStudentIDs list makes the
// reward visible to every student in the family.
type Reward struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	FamilyID           string                      `gorm:"size:128;index;not null" json:"family_id"`
	Name               string                      `gorm:"size:255;not null" json:"name"`
	Description        string                      `gorm:"type:text" json:"description"`
	PointCost          int                         `gorm:"not null" json:"point_cost"`
	Tier               string                      `gorm:"size:16;not null" json:"tier"`
	IsActive           bool                        `gorm:"not null;default:true" json:"is_active"`
	AssignedStudentIDs datatypes.JSONSlice[uint]   `gorm:"type:json" json:"assigned_student_ids"`
	TimesClaimedTotal  int                         `gorm:"not null;default:0" json:"times_claimed_total"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// VisibleTo reports whether the reward is offered to the given student.
func (r Reward) VisibleTo(studentID uint) bool {
	if len(r.AssignedStudentIDs) == 0 {
		return true
	}
	for _, id := range r.AssignedStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Reward claim statuses. Fulfilled is terminal.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusFulfilled = "fulfilled"
)

// RewardClaim records one redemption. Cost and tier are snapshotted at claim
// time so later catalog edits do not rewrite history.
type RewardClaim struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FamilyID    string     `gorm:"size:128;index;not null" json:"family_id"`
	StudentID   uint       `gorm:"not null;index" json:"student_id"`
	RewardID    uint       `gorm:"not null;index" json:"reward_id"`
	RewardName  string     `gorm:"size:255" json:"reward_name"`
	PointCost   int        `gorm:"not null" json:"point_cost"`
	Tier        string     `gorm:"size:16" json:"tier"`
	Status      string     `gorm:"size:16;not null" json:"status"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GroupReward is a shared goal any eligible student may contribute points
// toward. PointsContributed is clamped to [0, PointsNeeded]; the per-student
// contribution map keeps the unclamped cumulative totals.
type GroupReward struct {
	ID                   uint                             `gorm:"primaryKey" json:"id"`
	FamilyID             string                           `gorm:"size:128;index;not null" json:"family_id"`
	Name                 string                           `gorm:"size:255;not null" json:"name"`
	Description          string                           `gorm:"type:text" json:"description"`
	PointsNeeded         int                              `gorm:"not null" json:"points_needed"`
	PointsContributed    int                              `gorm:"not null;default:0" json:"points_contributed"`
	StudentContributions datatypes.JSONType[map[uint]int] `gorm:"type:json" json:"student_contributions"`
	IsRedeemed           bool                             `gorm:"not null;default:false" json:"is_redeemed"`
	CreatedAt            time.Time                        `json:"created_at"`
	UpdatedAt            time.Time                        `json:"updated_at"`
}
