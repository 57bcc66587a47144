package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Subject{},
		&models.Assignment{},
		&models.WalletTransaction{},
		&models.Reward{},
		&models.RewardClaim{},
		&models.GroupReward{},
		&models.SubjectProgress{},
		&models.BadgeEarned{},
		&models.DailyActivity{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, balance int) models.Student {
	t.Helper()
	student := models.Student{FamilyID: "fam-1", Name: "Mia", WalletBalance: balance}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestMutateAppendsLedgerAndBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWalletRepository(db)
	student := seedStudent(t, db, 0)

	err := repo.Mutate(context.Background(), student.ID, func(txn WalletTxn) error {
		if err := txn.Append(&models.WalletTransaction{Type: models.TxnDeposit, Points: 100, Reason: "worksheet"}); err != nil {
			return err
		}
		return txn.Append(&models.WalletTransaction{Type: models.TxnRedemption, Points: -30, Reason: "lego set"})
	})
	require.NoError(t, err)

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	require.Equal(t, 70, reloaded.WalletBalance)

	entries, err := repo.ListTransactions(context.Background(), student.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sum := 0
	for _, entry := range entries {
		sum += entry.Points
	}
	require.Equal(t, reloaded.WalletBalance, sum, "balance must equal the ledger sum")
}

func TestMutateRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWalletRepository(db)
	student := seedStudent(t, db, 50)

	boom := errors.New("insufficient balance")
	err := repo.Mutate(context.Background(), student.ID, func(txn WalletTxn) error {
		if err := txn.Append(&models.WalletTransaction{Type: models.TxnRedemption, Points: -40}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	require.Equal(t, 50, reloaded.WalletBalance, "failed mutation must not change the balance")

	entries, err := repo.ListTransactions(context.Background(), student.ID, 0)
	require.NoError(t, err)
	require.Empty(t, entries, "failed mutation must not leave ledger entries")
}

func TestMutateUnknownStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWalletRepository(db)

	err := repo.Mutate(context.Background(), 999, func(txn WalletTxn) error { return nil })
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIncrementRewardClaims(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWalletRepository(db)
	student := seedStudent(t, db, 0)

	reward := models.Reward{FamilyID: "fam-1", Name: "Movie night", PointCost: 100, Tier: models.TierBronze, IsActive: true}
	require.NoError(t, db.Create(&reward).Error)

	for i := 0; i < 2; i++ {
		err := repo.Mutate(context.Background(), student.ID, func(txn WalletTxn) error {
			return txn.IncrementRewardClaims(reward.ID)
		})
		require.NoError(t, err)
	}

	var reloaded models.Reward
	require.NoError(t, db.First(&reloaded, reward.ID).Error)
	require.Equal(t, 2, reloaded.TimesClaimedTotal)
}

func TestListTransactionsLimitAndOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWalletRepository(db)
	student := seedStudent(t, db, 0)

	for i := 1; i <= 5; i++ {
		err := repo.Mutate(context.Background(), student.ID, func(txn WalletTxn) error {
			return txn.Append(&models.WalletTransaction{Type: models.TxnDeposit, Points: i})
		})
		require.NoError(t, err)
	}

	entries, err := repo.ListTransactions(context.Background(), student.ID, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 5, entries[0].Points, "newest entry first")
}
