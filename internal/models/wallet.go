package models

import "time"

// Wallet transaction types. Points is a signed delta; the student balance is
// always the sum of these deltas.
const (
	TxnDeposit          = "deposit"
	TxnReversal         = "reversal"
	TxnRedemption       = "redemption"
	TxnAdjustment       = "adjustment"
	TxnStreakBonus      = "streak_bonus"
	TxnImprovementBonus = "improvement_bonus"
	TxnAllocation       = "allocation"
)

// WalletTransaction is an immutable ledger entry. Entries are only created by
// wallet operations, inside the same database transaction that updates the
// student balance; they are never updated or deleted.
type WalletTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	Type         string    `gorm:"size:32;not null" json:"type"`
	Points       int       `gorm:"not null" json:"points"`
	Reason       string    `gorm:"size:255" json:"reason"`
	AssignmentID *uint     `gorm:"index" json:"assignment_id"`
	RewardID     *uint     `json:"reward_id"`
	ClaimID      *uint     `json:"claim_id"`
	OriginalID   *uint     `json:"original_id"`
	CreatedAt    time.Time `json:"created_at"`
}
