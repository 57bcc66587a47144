package dto

import (
	"time"

	"github.com/familyflow/familyflow-api/internal/models"
)

// WalletAdjustRequest applies a parent-initiated signed delta.
type WalletAdjustRequest struct {
	Points int    `json:"points" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

// WalletAllocateRequest sets the absolute number of points reserved for a
// reward. Amount zero releases the reservation.
type WalletAllocateRequest struct {
	RewardID uint `json:"reward_id" validate:"required"`
	Amount   int  `json:"amount" validate:"gte=0"`
}

// WalletResponse is the student's wallet state: the spendable balance plus
// the per-reward reservations held outside it.
type WalletResponse struct {
	StudentID      uint         `json:"student_id"`
	Balance        int          `json:"balance"`
	Allocations    map[uint]int `json:"allocations"`
	TotalAllocated int          `json:"total_allocated"`
	CurrentStreak  int          `json:"current_streak"`
	LongestStreak  int          `json:"longest_streak"`
}

// NewWalletResponse builds a wallet view from a student row.
func NewWalletResponse(student models.Student) WalletResponse {
	allocations := student.RewardAllocations.Data()
	if allocations == nil {
		allocations = map[uint]int{}
	}
	return WalletResponse{
		StudentID:      student.ID,
		Balance:        student.WalletBalance,
		Allocations:    allocations,
		TotalAllocated: student.TotalAllocated(),
		CurrentStreak:  student.CurrentStreak,
		LongestStreak:  student.LongestStreak,
	}
}

// WalletTransactionResponse is one immutable ledger entry.
type WalletTransactionResponse struct {
	ID           uint      `json:"id"`
	StudentID    uint      `json:"student_id"`
	Type         string    `json:"type"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason"`
	AssignmentID *uint     `json:"assignment_id"`
	RewardID     *uint     `json:"reward_id"`
	ClaimID      *uint     `json:"claim_id"`
	OriginalID   *uint     `json:"original_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewWalletTransactionResponse converts a ledger entry.
func NewWalletTransactionResponse(txn models.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:           txn.ID,
		StudentID:    txn.StudentID,
		Type:         txn.Type,
		Points:       txn.Points,
		Reason:       txn.Reason,
		AssignmentID: txn.AssignmentID,
		RewardID:     txn.RewardID,
		ClaimID:      txn.ClaimID,
		OriginalID:   txn.OriginalID,
		CreatedAt:    txn.CreatedAt,
	}
}

// NewWalletTransactionResponseSlice converts a list of ledger entries.
func NewWalletTransactionResponseSlice(txns []models.WalletTransaction) []WalletTransactionResponse {
	responses := make([]WalletTransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, NewWalletTransactionResponse(txn))
	}
	return responses
}
