package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/familyflow/familyflow-api/internal/models"
)

const (
	walletRetryAttempts = 3
	walletRetryBackoff  = 50 * time.Millisecond
)

// WalletTxn is the atomic unit handed to wallet mutations. The student row is
// locked for the duration of the enclosing database transaction, so "read
// balance, validate, write balance + ledger entry" happens as one conditional
// write. Returning an error from the callback rolls everything back.
type WalletTxn interface {
	Student() *models.Student
	Append(entry *models.WalletTransaction) error
	SaveAssignment(assignment *models.Assignment) error
	IncrementRewardClaims(rewardID uint) error
	CreateClaim(claim *models.RewardClaim) error
	GetGroupReward(id uint) (models.GroupReward, error)
	SaveGroupReward(goal *models.GroupReward) error
}

// WalletRepository owns every balance-changing write for a student.
type WalletRepository interface {
	Mutate(ctx context.Context, studentID uint, fn func(txn WalletTxn) error) error
	ListTransactions(ctx context.Context, studentID uint, limit int) ([]models.WalletTransaction, error)
	GetTransaction(ctx context.Context, id uint) (models.WalletTransaction, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository constructs a GORM-backed wallet repository.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

type walletTxn struct {
	tx      *gorm.DB
	student models.Student
}

func (w *walletTxn) Student() *models.Student { return &w.student }

// Append persists the ledger entry and applies its delta to the in-memory
// balance; the student row is flushed when the enclosing transaction commits.
func (w *walletTxn) Append(entry *models.WalletTransaction) error {
	entry.StudentID = w.student.ID
	if err := w.tx.Create(entry).Error; err != nil {
		return err
	}
	w.student.WalletBalance += entry.Points
	return nil
}

func (w *walletTxn) SaveAssignment(assignment *models.Assignment) error {
	return w.tx.Save(assignment).Error
}

// IncrementRewardClaims bumps the monotonic claim counter in place so that
// concurrent redemptions of the same reward never lose an increment.
func (w *walletTxn) IncrementRewardClaims(rewardID uint) error {
	return w.tx.Model(&models.Reward{}).
		Where("id = ?", rewardID).
		UpdateColumn("times_claimed_total", gorm.Expr("times_claimed_total + 1")).Error
}

func (w *walletTxn) CreateClaim(claim *models.RewardClaim) error {
	return w.tx.Create(claim).Error
}

func (w *walletTxn) GetGroupReward(id uint) (models.GroupReward, error) {
	var goal models.GroupReward
	query := w.tx
	if w.tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&goal, id).Error; err != nil {
		return models.GroupReward{}, err
	}
	return goal, nil
}

func (w *walletTxn) SaveGroupReward(goal *models.GroupReward) error {
	return w.tx.Save(goal).Error
}

// Mutate runs fn inside one database transaction with the student row locked.
// Transient contention errors are retried with backoff; business errors are
// returned to the caller untouched after rolling back.
func (r *walletRepository) Mutate(ctx context.Context, studentID uint, fn func(txn WalletTxn) error) error {
	var err error
	for attempt := 0; attempt < walletRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(walletRetryBackoff * time.Duration(attempt)):
			}
		}

		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			unit := &walletTxn{tx: tx}

			query := tx
			if tx.Dialector.Name() == "postgres" {
				query = query.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			if findErr := query.First(&unit.student, studentID).Error; findErr != nil {
				return findErr
			}

			if fnErr := fn(unit); fnErr != nil {
				return fnErr
			}

			return tx.Save(&unit.student).Error
		})

		if err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

func (r *walletRepository) ListTransactions(ctx context.Context, studentID uint, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var transactions []models.WalletTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *walletRepository) GetTransaction(ctx context.Context, id uint) (models.WalletTransaction, error) {
	var txn models.WalletTransaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return models.WalletTransaction{}, err
	}
	return txn, nil
}

// isTransient reports whether the failure is worth retrying. Only driver
// level contention qualifies; business-rule failures never do.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, marker := range []string{"deadlock", "serialization", "could not serialize", "database is locked", "busy"} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
