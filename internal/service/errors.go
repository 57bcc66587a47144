package service

import (
	"errors"
	"fmt"
)

// Sentinel business errors. These are never retried; they propagate to the
// handler for user-facing display.
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrClaimNotFound       = errors.New("claim not found")
	ErrGroupRewardNotFound = errors.New("group reward not found")
	ErrRewardInactive      = errors.New("reward is not active")
	ErrRewardNotVisible    = errors.New("reward is not offered to this student")
	ErrClaimFulfilled      = errors.New("claim is already fulfilled")
	ErrGroupRewardRedeemed = errors.New("group reward is already redeemed")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// InsufficientBalanceError reports a wallet operation that would require more
// points than the student has available.
type InsufficientBalanceError struct {
	Required  int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, available %d", e.Required, e.Available)
}

// Shortfall returns how many points are missing.
func (e *InsufficientBalanceError) Shortfall() int {
	return e.Required - e.Available
}

// IsInsufficientBalance extracts the typed error, if present.
func IsInsufficientBalance(err error) (*InsufficientBalanceError, bool) {
	var target *InsufficientBalanceError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
