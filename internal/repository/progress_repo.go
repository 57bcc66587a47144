package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/models"
)

// ProgressRepository stores per-subject progress aggregates, earned badges
// and the daily activity log.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, studentID, subjectID uint) (models.SubjectProgress, error)
	Save(ctx context.Context, progress *models.SubjectProgress) error
	ListForStudent(ctx context.Context, studentID uint) ([]models.SubjectProgress, error)

	ListBadges(ctx context.Context, studentID uint) ([]models.BadgeEarned, error)
	HasBadge(ctx context.Context, studentID uint, badgeID string) (bool, error)
	CreateBadge(ctx context.Context, badge *models.BadgeEarned) error

	GetDailyActivity(ctx context.Context, studentID uint, date string) (models.DailyActivity, error)
	SaveDailyActivity(ctx context.Context, activity *models.DailyActivity) error
	ListDailyActivity(ctx context.Context, studentID uint, from, to string) ([]models.DailyActivity, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetOrCreate(ctx context.Context, studentID, subjectID uint) (models.SubjectProgress, error) {
	var progress models.SubjectProgress
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		First(&progress).Error
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SubjectProgress{}, err
	}

	progress = models.SubjectProgress{StudentID: studentID, SubjectID: subjectID}
	if err := r.db.WithContext(ctx).Create(&progress).Error; err != nil {
		return models.SubjectProgress{}, err
	}
	return progress, nil
}

func (r *progressRepository) Save(ctx context.Context, progress *models.SubjectProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *progressRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.SubjectProgress, error) {
	var rows []models.SubjectProgress
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *progressRepository) ListBadges(ctx context.Context, studentID uint) ([]models.BadgeEarned, error) {
	var badges []models.BadgeEarned
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&badges).Error
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *progressRepository) HasBadge(ctx context.Context, studentID uint, badgeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BadgeEarned{}).
		Where("student_id = ? AND badge_id = ?", studentID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBadge inserts a badge once; a concurrent duplicate loses against the
// unique (student_id, badge_id) index and is reported as already earned.
func (r *progressRepository) CreateBadge(ctx context.Context, badge *models.BadgeEarned) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND badge_id = ?", badge.StudentID, badge.BadgeID).
		FirstOrCreate(badge).Error
}

func (r *progressRepository) GetDailyActivity(ctx context.Context, studentID uint, date string) (models.DailyActivity, error) {
	var activity models.DailyActivity
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, date).
		First(&activity).Error
	if err != nil {
		return models.DailyActivity{}, err
	}
	return activity, nil
}

func (r *progressRepository) SaveDailyActivity(ctx context.Context, activity *models.DailyActivity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

func (r *progressRepository) ListDailyActivity(ctx context.Context, studentID uint, from, to string) ([]models.DailyActivity, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	var rows []models.DailyActivity
	if err := query.Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
