package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
)

// StudentRepository provides access to student records. Wallet balances are
// never written through this repository; that is the wallet repository's job.
type StudentRepository interface {
	List(ctx context.Context, familyID string) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	CascadeDelete(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context, familyID string) ([]models.Student, error) {
	var students []models.Student
	query := r.db.WithContext(ctx).Order("name ASC")
	if familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// CascadeDelete removes a student together with every dependent record. This
// is an explicit maintenance operation, not the default delete path.
func (r *studentRepository) CascadeDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, id).Error; err != nil {
			return err
		}

		dependents := []interface{}{
			&models.Assignment{},
			&models.WalletTransaction{},
			&models.SubjectProgress{},
			&models.BadgeEarned{},
			&models.DailyActivity{},
			&models.RewardClaim{},
		}
		for _, model := range dependents {
			if err := tx.Where("student_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&student).Error
	})
}
