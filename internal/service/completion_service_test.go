package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

func newCompletionService(t *testing.T, db *gorm.DB, res Resolution, at time.Time) *completionService {
	t.Helper()
	progress := NewProgressService(repository.NewProgressRepository(db), NopPublisher{}, testLogger())
	svc := NewCompletionService(
		repository.NewAssignmentRepository(db),
		repository.NewWalletRepository(db),
		fixedResolver{res: res},
		progress,
		NopPublisher{},
		newValidator(),
		testLogger(),
	).(*completionService)
	svc.now = func() time.Time { return at }
	return svc
}

func TestCompleteAwardsPointsOnceAndUncompleteReverses(t *testing.T) {
	db := newTestDB(t)

	cfg := &courseconfig.CourseConfig{
		ID:         "math-7",
		Categories: map[string]courseconfig.Category{"worksheet": {BasePoints: 10}},
		Multipliers: []courseconfig.MultiplierRule{
			{Category: "worksheet", Factor: 2, MinGrade: gradePtr(90)},
		},
	}

	student := models.Student{}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)
	assignment := models.Assignment{
		FamilyID:    "fam-1",
		StudentID:   student.ID,
		SubjectID:   subject.ID,
		Name:        "Fractions Worksheet",
		Gradable:    true,
		CategoryKey: "worksheet",
	}
	require.NoError(t, db.Create(&assignment).Error)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{Config: cfg, ConfigID: cfg.ID, CategoryKey: "worksheet"}, at)
	ctx := context.Background()

	resp, err := svc.Complete(ctx, assignment.ID, dto.CompleteRequest{Grade: gradePtr(95)})
	require.NoError(t, err)
	require.Equal(t, 20, resp.PointsAwarded, "base 10 times factor 2")
	require.Equal(t, 0, resp.StreakBonus)
	require.Equal(t, 0, resp.ImprovementBonus)
	require.Equal(t, 1, resp.CurrentStreak)
	require.Equal(t, 1, resp.LongestStreak)
	require.True(t, resp.Assignment.IsCompleted)
	require.Equal(t, 20, resp.Assignment.RewardPointsApplied)
	require.Len(t, resp.Assignment.Attempts, 1)
	require.Equal(t, 20, studentBalance(t, db, student.ID))

	// Completing again without un-completing must not deposit twice.
	again, err := svc.Complete(ctx, assignment.ID, dto.CompleteRequest{Grade: gradePtr(95)})
	require.NoError(t, err)
	require.Equal(t, 0, again.PointsAwarded)
	require.Equal(t, 20, studentBalance(t, db, student.ID))

	reversed, err := svc.Uncomplete(ctx, assignment.ID)
	require.NoError(t, err)
	require.False(t, reversed.IsCompleted)
	require.Equal(t, 0, reversed.RewardPointsApplied)
	require.Equal(t, 0, studentBalance(t, db, student.ID))

	entries, err := repository.NewWalletRepository(db).ListTransactions(ctx, student.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "deposit plus reversal, never deleted")

	var progress models.SubjectProgress
	require.NoError(t, db.Where("student_id = ? AND subject_id = ?", student.ID, subject.ID).First(&progress).Error)
	require.Equal(t, 0, progress.CompletedTotal)
}

func TestCompleteAppliesStreakAndImprovementBonuses(t *testing.T) {
	db := newTestDB(t)

	cfg := &courseconfig.CourseConfig{
		ID:         "math-7",
		Categories: map[string]courseconfig.Category{"worksheet": {BasePoints: 10}},
		Multipliers: []courseconfig.MultiplierRule{
			{Category: "worksheet", Factor: 2},
		},
		StreakSchedule:         []courseconfig.StreakTier{{Days: 3, BonusPercent: 5}},
		MaxStreakBonusPercent:  20,
		ImprovementBonusPoints: 7,
		Badges: []courseconfig.BadgeRule{
			{ID: "streak-3", Name: "On Fire", Kind: courseconfig.RuleStreak, Threshold: 3},
		},
	}

	student := models.Student{
		CurrentStreak:      2,
		LongestStreak:      2,
		LastCompletionDate: "2026-03-09",
	}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)
	assignment := models.Assignment{
		FamilyID:    "fam-1",
		StudentID:   student.ID,
		SubjectID:   subject.ID,
		Name:        "Fractions Worksheet",
		Gradable:    true,
		CategoryKey: "worksheet",
		Attempts: datatypes.NewJSONSlice([]models.GradeAttempt{
			{Grade: 80, GradedAt: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)},
		}),
	}
	require.NoError(t, db.Create(&assignment).Error)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{Config: cfg, ConfigID: cfg.ID, CategoryKey: "worksheet"}, at)

	resp, err := svc.Complete(context.Background(), assignment.ID, dto.CompleteRequest{Grade: gradePtr(95)})
	require.NoError(t, err)
	require.Equal(t, 20, resp.PointsAwarded)
	require.Equal(t, 1, resp.StreakBonus, "5 percent of base 10, rounded half up")
	require.Equal(t, 7, resp.ImprovementBonus, "95 beats the previous best of 80")
	require.Equal(t, 3, resp.CurrentStreak)
	require.Equal(t, 3, resp.LongestStreak)
	require.Equal(t, 28, studentBalance(t, db, student.ID))

	require.Len(t, resp.Badges, 1)
	require.Equal(t, "streak-3", resp.Badges[0].BadgeID)
	require.Len(t, resp.Assignment.Attempts, 2, "attempt history is append only")
}

func TestCompleteUngradableUsesStoredBase(t *testing.T) {
	db := newTestDB(t)

	student := models.Student{}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)
	assignment := models.Assignment{
		FamilyID:   "fam-1",
		StudentID:  student.ID,
		SubjectID:  subject.ID,
		Name:       "Practice Reading",
		Gradable:   false,
		PointsBase: 15,
	}
	require.NoError(t, db.Create(&assignment).Error)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{}, at)

	resp, err := svc.Complete(context.Background(), assignment.ID, dto.CompleteRequest{})
	require.NoError(t, err)
	require.Equal(t, 15, resp.PointsAwarded)
	require.Equal(t, 15, studentBalance(t, db, student.ID))
}

func TestCompleteFailingGradeEarnsNothingButCompletes(t *testing.T) {
	db := newTestDB(t)

	cfg := &courseconfig.CourseConfig{
		ID:         "math-7",
		Categories: map[string]courseconfig.Category{"worksheet": {BasePoints: 10}},
	}

	student := models.Student{}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)
	assignment := models.Assignment{
		FamilyID:    "fam-1",
		StudentID:   student.ID,
		SubjectID:   subject.ID,
		Name:        "Fractions Worksheet",
		Gradable:    true,
		CategoryKey: "worksheet",
	}
	require.NoError(t, db.Create(&assignment).Error)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{Config: cfg, ConfigID: cfg.ID, CategoryKey: "worksheet"}, at)

	resp, err := svc.Complete(context.Background(), assignment.ID, dto.CompleteRequest{Grade: gradePtr(80)})
	require.NoError(t, err)
	require.Equal(t, 0, resp.PointsAwarded)
	require.True(t, resp.Assignment.IsCompleted)
	require.Equal(t, 1, resp.CurrentStreak, "the streak still advances")
	require.Equal(t, 0, studentBalance(t, db, student.ID))
}

func TestRecompleteWithoutRewardIsNoop(t *testing.T) {
	db := newTestDB(t)

	cfg := &courseconfig.CourseConfig{
		ID:         "math-7",
		Categories: map[string]courseconfig.Category{"worksheet": {BasePoints: 10}},
	}

	student := models.Student{}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)
	assignment := models.Assignment{
		FamilyID:    "fam-1",
		StudentID:   student.ID,
		SubjectID:   subject.ID,
		Name:        "Fractions Worksheet",
		Gradable:    true,
		CategoryKey: "worksheet",
	}
	require.NoError(t, db.Create(&assignment).Error)

	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{Config: cfg, ConfigID: cfg.ID, CategoryKey: "worksheet"}, at)
	ctx := context.Background()

	first, err := svc.Complete(ctx, assignment.ID, dto.CompleteRequest{Grade: gradePtr(80)})
	require.NoError(t, err)
	require.Equal(t, 0, first.PointsAwarded)
	require.True(t, first.Assignment.IsCompleted)

	// Completing again must not move counters, attempts or the activity log,
	// even though the first completion earned no deposit.
	second, err := svc.Complete(ctx, assignment.ID, dto.CompleteRequest{Grade: gradePtr(80)})
	require.NoError(t, err)
	require.True(t, second.Assignment.IsCompleted)
	require.Len(t, second.Assignment.Attempts, 1)

	var progress models.SubjectProgress
	require.NoError(t, db.Where("student_id = ? AND subject_id = ?", student.ID, subject.ID).First(&progress).Error)
	require.Equal(t, 1, progress.CompletedTotal)

	var activity models.DailyActivity
	require.NoError(t, db.Where("student_id = ? AND date = ?", student.ID, "2026-03-10").First(&activity).Error)
	require.Equal(t, 1, activity.Assignments)
}

func TestCompleteValidationAndMissingAssignment(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newCompletionService(t, db, Resolution{}, at)
	ctx := context.Background()

	_, err := svc.Complete(ctx, 1, dto.CompleteRequest{Grade: gradePtr(101)})
	require.Error(t, err, "grades are bounded at 100")

	_, err = svc.Complete(ctx, 1, dto.CompleteRequest{Grade: gradePtr(-1)})
	require.Error(t, err)

	_, err = svc.Complete(ctx, 999, dto.CompleteRequest{})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.Uncomplete(ctx, 999)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
