package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

func newDashboardService(t *testing.T, db *gorm.DB, cache *redis.Client) DashboardService {
	t.Helper()
	return NewDashboardService(
		repository.NewStudentRepository(db),
		repository.NewWalletRepository(db),
		repository.NewProgressRepository(db),
		repository.NewRewardRepository(db),
		repository.NewAssignmentRepository(db),
		cache,
		time.Minute,
		testLogger(),
	)
}

func TestStudentDashboardAggregatesAndCaches(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	svc := newDashboardService(t, db, cache)
	ctx := context.Background()

	student := models.Student{WalletBalance: 120, CurrentStreak: 4}
	createStudent(t, db, &student)
	subject := models.Subject{}
	createSubject(t, db, &subject)

	require.NoError(t, db.Create(&models.WalletTransaction{StudentID: student.ID, Type: models.TxnDeposit, Points: 120}).Error)
	require.NoError(t, db.Create(&models.BadgeEarned{StudentID: student.ID, BadgeID: "streak-3", Name: "On Fire"}).Error)
	require.NoError(t, db.Create(&models.RewardClaim{
		FamilyID: "fam-1", StudentID: student.ID, RewardID: 1,
		RewardName: "Lego set", Status: models.ClaimStatusPending,
	}).Error)
	require.NoError(t, db.Create(&models.Assignment{
		FamilyID: "fam-1", StudentID: student.ID, SubjectID: subject.ID, Name: "Fractions Worksheet",
	}).Error)
	require.NoError(t, db.Create(&models.Assignment{
		FamilyID: "fam-1", StudentID: student.ID, SubjectID: subject.ID, Name: "Done Already", IsCompleted: true,
	}).Error)

	dashboard, err := svc.StudentDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, dashboard.Student.ID)
	require.Equal(t, 120, dashboard.Student.WalletBalance)
	require.Len(t, dashboard.RecentTransactions, 1)
	require.Equal(t, 1, dashboard.BadgeCount)
	require.Equal(t, 1, dashboard.PendingClaims)
	require.EqualValues(t, 1, dashboard.OpenAssignments, "completed work is not counted")
	require.Len(t, dashboard.UpNext, 1)

	require.True(t, mr.Exists("dashboard:student:1"), "the aggregate is cached after a miss")

	// A write that bypasses invalidation is not visible while cached.
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", student.ID).
		Update("wallet_balance", 999).Error)

	cached, err := svc.StudentDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 120, cached.Student.WalletBalance)

	svc.Invalidate(ctx, student.ID)
	require.False(t, mr.Exists("dashboard:student:1"))

	fresh, err := svc.StudentDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 999, fresh.Student.WalletBalance)
}

func TestStudentDashboardUnknownStudent(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	svc := newDashboardService(t, db, cache)
	_, err := svc.StudentDashboard(context.Background(), 999)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentDashboardWorksWithoutCache(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(t, db, nil)

	student := models.Student{}
	createStudent(t, db, &student)

	dashboard, err := svc.StudentDashboard(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, dashboard.Student.ID)
}
