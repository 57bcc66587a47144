package dto

// StudentDashboardResponse aggregates the student home screen: profile and
// wallet state, the latest ledger entries and what is due next.
type StudentDashboardResponse struct {
	Student            StudentResponse             `json:"student"`
	RecentTransactions []WalletTransactionResponse `json:"recent_transactions"`
	BadgeCount         int                         `json:"badge_count"`
	PendingClaims      int                         `json:"pending_claims"`
	OpenAssignments    int64                       `json:"open_assignments"`
	UpNext             []AssignmentResponse        `json:"up_next"`
}
