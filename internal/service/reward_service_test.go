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

func newRewardService(db *gorm.DB) RewardService {
	return NewRewardService(repository.NewRewardRepository(db), newValidator(), testLogger())
}

func TestCreateRewardDerivesTierAndSanitizes(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.RewardCreateRequest{
		FamilyID:    "fam-1",
		Name:        "<b>Movie night</b>",
		Description: "Pick <i>any</i> movie",
		PointCost:   1600,
	})
	require.NoError(t, err)
	require.Equal(t, models.TierGold, created.Tier, "tier derives from cost when omitted")
	require.Equal(t, "Movie night", created.Name, "markup is stripped")
	require.Equal(t, "Pick any movie", created.Description)
	require.True(t, created.IsActive)

	explicit, err := svc.Create(ctx, dto.RewardCreateRequest{
		FamilyID:  "fam-1",
		Name:      "Sticker",
		PointCost: 4000,
		Tier:      models.TierBronze,
	})
	require.NoError(t, err)
	require.Equal(t, models.TierBronze, explicit.Tier, "an explicit tier wins over the cost")

	_, err = svc.Create(ctx, dto.RewardCreateRequest{FamilyID: "fam-1", Name: "Free", PointCost: 0})
	require.Error(t, err)
}

func TestUpdateRewardRederivesTierOnCostChange(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.RewardCreateRequest{FamilyID: "fam-1", Name: "Lego set", PointCost: 100})
	require.NoError(t, err)
	require.Equal(t, models.TierBronze, created.Tier)

	cost := 2000
	updated, err := svc.Update(ctx, created.ID, dto.RewardUpdateRequest{PointCost: &cost})
	require.NoError(t, err)
	require.Equal(t, models.TierGold, updated.Tier)

	_, err = svc.Update(ctx, 999, dto.RewardUpdateRequest{})
	require.ErrorIs(t, err, ErrRewardNotFound)
}

func TestDeactivateKeepsRewardForHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.RewardCreateRequest{FamilyID: "fam-1", Name: "Lego set", PointCost: 100})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, fetched.IsActive)
}

func TestListRewardsFiltersForStudent(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.RewardCreateRequest{FamilyID: "fam-1", Name: "For everyone", PointCost: 10})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.RewardCreateRequest{
		FamilyID:           "fam-1",
		Name:               "Only for two",
		PointCost:          10,
		AssignedStudentIDs: []uint{2},
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, "fam-1", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	one := uint(1)
	visible, err := svc.List(ctx, "fam-1", &one)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "For everyone", visible[0].Name)
}

func TestFulfillClaimIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	claim := models.RewardClaim{
		FamilyID:   "fam-1",
		StudentID:  1,
		RewardID:   1,
		RewardName: "Lego set",
		PointCost:  50,
		Tier:       models.TierBronze,
		Status:     models.ClaimStatusPending,
	}
	require.NoError(t, db.Create(&claim).Error)

	fulfilled, err := svc.FulfillClaim(ctx, claim.ID)
	require.NoError(t, err)
	require.Equal(t, models.ClaimStatusFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.FulfilledAt)

	_, err = svc.FulfillClaim(ctx, claim.ID)
	require.ErrorIs(t, err, ErrClaimFulfilled)

	_, err = svc.FulfillClaim(ctx, 999)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestRedeemGroupRewardIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)
	ctx := context.Background()

	created, err := svc.CreateGroupReward(ctx, dto.GroupRewardCreateRequest{
		FamilyID:     "fam-1",
		Name:         "Zoo trip",
		PointsNeeded: 200,
	})
	require.NoError(t, err)
	require.False(t, created.IsRedeemed)

	redeemed, err := svc.RedeemGroupReward(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, redeemed.IsRedeemed)

	_, err = svc.RedeemGroupReward(ctx, created.ID)
	require.ErrorIs(t, err, ErrGroupRewardRedeemed)

	_, err = svc.RedeemGroupReward(ctx, 999)
	require.ErrorIs(t, err, ErrGroupRewardNotFound)
}
