package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student represents a learner inside a family. The wallet fields are only
// mutated through the wallet repository's atomic unit so that the balance
// always matches the sum of the student's ledger transactions.
type Student struct {
	ID                 uint                             `gorm:"primaryKey" json:"id"`
	FamilyID           string                           `gorm:"size:128;index;not null" json:"family_id"`
	Name               string                           `gorm:"size:255;not null" json:"name"`
	Age                int                              `json:"age"`
	GradeLevel         string                           `gorm:"size:64" json:"grade_level"`
	AvatarURL          string                           `gorm:"size:512" json:"avatar_url"`
	WalletBalance      int                              `gorm:"not null;default:0" json:"wallet_balance"`
	RewardAllocations  datatypes.JSONType[map[uint]int] `gorm:"type:json" json:"reward_allocations"`
	CurrentStreak      int                              `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak      int                              `gorm:"not null;default:0" json:"longest_streak"`
	LastCompletionDate string                           `gorm:"size:10" json:"last_completion_date"`
	CreatedAt          time.Time                        `json:"created_at"`
	UpdatedAt          time.Time                        `json:"updated_at"`
}

// AllocationFor returns the points currently reserved for a reward.
func (s Student) AllocationFor(rewardID uint) int {
	allocations := s.RewardAllocations.Data()
	if allocations == nil {
		return 0
	}
	return allocations[rewardID]
}

// TotalAllocated sums every per-reward reservation.
func (s Student) TotalAllocated() int {
	total := 0
	for _, amount := range s.RewardAllocations.Data() {
		total += amount
	}
	return total
}
