package dto

// CompleteRequest marks an assignment done. All measurements are optional;
// ungradable assignments ignore the grade.
type CompleteRequest struct {
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	WPM      *float64 `json:"wpm" validate:"omitempty,gte=0"`
	Accuracy *float64 `json:"accuracy" validate:"omitempty,gte=0,lte=100"`
	Minutes  int      `json:"minutes" validate:"omitempty,gte=0,lte=1440"`
}

// CompletionResponse reports everything a completion produced: the updated
// assignment, the points breakdown, streak state and any badges just earned.
type CompletionResponse struct {
	Assignment       AssignmentResponse `json:"assignment"`
	PointsAwarded    int                `json:"points_awarded"`
	StreakBonus      int                `json:"streak_bonus"`
	ImprovementBonus int                `json:"improvement_bonus"`
	CurrentStreak    int                `json:"current_streak"`
	LongestStreak    int                `json:"longest_streak"`
	Badges           []BadgeResponse    `json:"badges"`
}
