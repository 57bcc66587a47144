package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

func newWalletService(db *gorm.DB) WalletService {
	return NewWalletService(
		repository.NewWalletRepository(db),
		repository.NewStudentRepository(db),
		repository.NewRewardRepository(db),
		newValidator(),
		NopPublisher{},
		testLogger(),
	)
}

func TestAdjustRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	student := models.Student{WalletBalance: 10}
	createStudent(t, db, &student)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, student.ID, dto.WalletAdjustRequest{Points: -25, Reason: "oops"})
	insufficient, ok := IsInsufficientBalance(err)
	require.True(t, ok)
	require.Equal(t, 15, insufficient.Shortfall())
	require.Equal(t, 10, studentBalance(t, db, student.ID), "denied adjustment leaves the balance alone")

	wallet, err := svc.Adjust(ctx, student.ID, dto.WalletAdjustRequest{Points: -10, Reason: "spent it all"})
	require.NoError(t, err)
	require.Equal(t, 0, wallet.Balance, "draining to exactly zero is allowed")
}

func TestAdjustValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	student := models.Student{}
	createStudent(t, db, &student)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, student.ID, dto.WalletAdjustRequest{Points: 0, Reason: "zero"})
	require.Error(t, err)

	_, err = svc.Adjust(ctx, student.ID, dto.WalletAdjustRequest{Points: 10})
	require.Error(t, err, "a reason is required")

	_, err = svc.Adjust(ctx, 999, dto.WalletAdjustRequest{Points: 10, Reason: "ghost"})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAllocateRedeemFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	ctx := context.Background()

	student := models.Student{}
	createStudent(t, db, &student)
	reward := models.Reward{FamilyID: "fam-1", Name: "Lego set", PointCost: 50, Tier: models.TierBronze, IsActive: true}
	require.NoError(t, db.Create(&reward).Error)

	_, err := svc.Adjust(ctx, student.ID, dto.WalletAdjustRequest{Points: 100, Reason: "chores"})
	require.NoError(t, err)

	wallet, err := svc.Allocate(ctx, student.ID, dto.WalletAllocateRequest{RewardID: reward.ID, Amount: 30})
	require.NoError(t, err)
	require.Equal(t, 70, wallet.Balance, "reserved points leave the spendable balance")
	require.Equal(t, 30, wallet.Allocations[reward.ID])
	require.Equal(t, 30, wallet.TotalAllocated)

	// Allocation is consumed first; only the 20 point shortfall hits the wallet.
	claim, err := svc.Redeem(ctx, student.ID, reward.ID)
	require.NoError(t, err)
	require.Equal(t, models.ClaimStatusPending, claim.Status)
	require.Equal(t, 50, claim.PointCost)
	require.Equal(t, models.TierBronze, claim.Tier)

	wallet, err = svc.Wallet(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 50, wallet.Balance)
	require.Empty(t, wallet.Allocations)

	var reloaded models.Reward
	require.NoError(t, db.First(&reloaded, reward.ID).Error)
	require.Equal(t, 1, reloaded.TimesClaimedTotal)

	entries, err := svc.Transactions(ctx, student.ID, 0)
	require.NoError(t, err)
	sum := 0
	for _, entry := range entries {
		sum += entry.Points
	}
	require.Equal(t, 50, sum, "balance equals the ledger sum")
}

func TestAllocateReleaseAndOverdraw(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	ctx := context.Background()

	student := models.Student{WalletBalance: 40}
	createStudent(t, db, &student)
	reward := models.Reward{FamilyID: "fam-1", Name: "Lego set", PointCost: 500, Tier: models.TierSilver, IsActive: true}
	require.NoError(t, db.Create(&reward).Error)

	_, err := svc.Allocate(ctx, student.ID, dto.WalletAllocateRequest{RewardID: reward.ID, Amount: 60})
	_, ok := IsInsufficientBalance(err)
	require.True(t, ok)

	wallet, err := svc.Allocate(ctx, student.ID, dto.WalletAllocateRequest{RewardID: reward.ID, Amount: 25})
	require.NoError(t, err)
	require.Equal(t, 15, wallet.Balance)

	// Amount zero releases the whole reservation back.
	wallet, err = svc.Allocate(ctx, student.ID, dto.WalletAllocateRequest{RewardID: reward.ID, Amount: 0})
	require.NoError(t, err)
	require.Equal(t, 40, wallet.Balance)
	require.Empty(t, wallet.Allocations)

	_, err = svc.Allocate(ctx, student.ID, dto.WalletAllocateRequest{RewardID: 999, Amount: 5})
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestRedeemGuards(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	ctx := context.Background()

	student := models.Student{WalletBalance: 1000}
	createStudent(t, db, &student)

	inactive := models.Reward{FamilyID: "fam-1", Name: "Retired", PointCost: 10, Tier: models.TierBronze, IsActive: false}
	require.NoError(t, db.Create(&inactive).Error)
	_, err := svc.Redeem(ctx, student.ID, inactive.ID)
	require.ErrorIs(t, err, ErrRewardInactive)

	other := student.ID + 100
	restricted := models.Reward{FamilyID: "fam-1", Name: "Sibling only", PointCost: 10, Tier: models.TierBronze, IsActive: true}
	restricted.AssignedStudentIDs = append(restricted.AssignedStudentIDs, other)
	require.NoError(t, db.Create(&restricted).Error)
	_, err = svc.Redeem(ctx, student.ID, restricted.ID)
	require.ErrorIs(t, err, ErrRewardNotVisible)

	pricey := models.Reward{FamilyID: "fam-1", Name: "Console", PointCost: 5000, Tier: models.TierPlatinum, IsActive: true}
	require.NoError(t, db.Create(&pricey).Error)
	_, err = svc.Redeem(ctx, student.ID, pricey.ID)
	_, ok := IsInsufficientBalance(err)
	require.True(t, ok)

	_, err = svc.Redeem(ctx, student.ID, 999)
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestContributeClampsAtGoal(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	ctx := context.Background()

	student := models.Student{WalletBalance: 100}
	createStudent(t, db, &student)
	goal := models.GroupReward{FamilyID: "fam-1", Name: "Zoo trip", PointsNeeded: 50}
	require.NoError(t, db.Create(&goal).Error)

	updated, err := svc.Contribute(ctx, student.ID, goal.ID, dto.GroupContributeRequest{Amount: 30})
	require.NoError(t, err)
	require.Equal(t, 30, updated.PointsContributed)
	require.Equal(t, 30, updated.StudentContributions[student.ID])
	require.Equal(t, 70, studentBalance(t, db, student.ID))

	updated, err = svc.Contribute(ctx, student.ID, goal.ID, dto.GroupContributeRequest{Amount: 30})
	require.NoError(t, err)
	require.Equal(t, 50, updated.PointsContributed, "contributed total clamps at the goal")
	require.Equal(t, 60, updated.StudentContributions[student.ID], "per-student totals keep the full amount")
	require.Equal(t, 40, studentBalance(t, db, student.ID))
}

func TestContributeGuards(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	ctx := context.Background()

	student := models.Student{WalletBalance: 20}
	createStudent(t, db, &student)
	goal := models.GroupReward{FamilyID: "fam-1", Name: "Zoo trip", PointsNeeded: 50}
	require.NoError(t, db.Create(&goal).Error)
	redeemed := models.GroupReward{FamilyID: "fam-1", Name: "Done", PointsNeeded: 10, IsRedeemed: true}
	require.NoError(t, db.Create(&redeemed).Error)

	_, err := svc.Contribute(ctx, student.ID, goal.ID, dto.GroupContributeRequest{Amount: 40})
	_, ok := IsInsufficientBalance(err)
	require.True(t, ok)
	require.Equal(t, 20, studentBalance(t, db, student.ID))

	_, err = svc.Contribute(ctx, student.ID, redeemed.ID, dto.GroupContributeRequest{Amount: 5})
	require.ErrorIs(t, err, ErrGroupRewardRedeemed)

	_, err = svc.Contribute(ctx, student.ID, 999, dto.GroupContributeRequest{Amount: 5})
	require.ErrorIs(t, err, ErrGroupRewardNotFound)

	_, err = svc.Contribute(ctx, student.ID, goal.ID, dto.GroupContributeRequest{Amount: 0})
	require.Error(t, err)
}
