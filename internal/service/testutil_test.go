package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestDB(t *testing.T) *gorm.DB {
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

func createStudent(t *testing.T, db *gorm.DB, student *models.Student) {
	t.Helper()
	if student.FamilyID == "" {
		student.FamilyID = "fam-1"
	}
	if student.Name == "" {
		student.Name = "Mia"
	}
	require.NoError(t, db.Create(student).Error)
}

func createSubject(t *testing.T, db *gorm.DB, subject *models.Subject) {
	t.Helper()
	if subject.FamilyID == "" {
		subject.FamilyID = "fam-1"
	}
	if subject.Name == "" {
		subject.Name = "Math"
	}
	require.NoError(t, db.Create(subject).Error)
}

func studentBalance(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var student models.Student
	require.NoError(t, db.First(&student, id).Error)
	return student.WalletBalance
}

// fixedResolver pins the resolution so completion tests control the policy
// directly instead of going through subject lookups.
type fixedResolver struct {
	res Resolution
}

func (f fixedResolver) Resolve(context.Context, models.Assignment) (Resolution, error) {
	return f.res, nil
}
