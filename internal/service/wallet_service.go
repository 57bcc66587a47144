package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/observability"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// WalletService exposes the parent/student facing ledger operations. Every
// operation is one atomic conditional write: the balance check, the balance
// update and the appended ledger entry commit or roll back together.
type WalletService interface {
	Wallet(ctx context.Context, studentID uint) (dto.WalletResponse, error)
	Transactions(ctx context.Context, studentID uint, limit int) ([]dto.WalletTransactionResponse, error)
	Adjust(ctx context.Context, studentID uint, payload dto.WalletAdjustRequest) (dto.WalletResponse, error)
	Allocate(ctx context.Context, studentID uint, payload dto.WalletAllocateRequest) (dto.WalletResponse, error)
	Redeem(ctx context.Context, studentID, rewardID uint) (dto.RewardClaimResponse, error)
	Contribute(ctx context.Context, studentID, groupRewardID uint, payload dto.GroupContributeRequest) (dto.GroupRewardResponse, error)
}

type walletService struct {
	wallet    repository.WalletRepository
	students  repository.StudentRepository
	rewards   repository.RewardRepository
	validator *validator.Validate
	events    EventPublisher
	logger    zerolog.Logger
}

// NewWalletService builds the wallet service.
func NewWalletService(wallet repository.WalletRepository, students repository.StudentRepository, rewards repository.RewardRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) WalletService {
	return &walletService{
		wallet:    wallet,
		students:  students,
		rewards:   rewards,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "wallet_service").Logger(),
	}
}

func (s *walletService) Wallet(ctx context.Context, studentID uint) (dto.WalletResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.WalletResponse{}, s.mapStudentErr(err)
	}
	return dto.NewWalletResponse(student), nil
}

func (s *walletService) Transactions(ctx context.Context, studentID uint, limit int) ([]dto.WalletTransactionResponse, error) {
	transactions, err := s.wallet.ListTransactions(ctx, studentID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewWalletTransactionResponseSlice(transactions), nil
}

// Adjust applies a parent-initiated signed delta. It fails when the delta
// would drive the balance negative.
func (s *walletService) Adjust(ctx context.Context, studentID uint, payload dto.WalletAdjustRequest) (dto.WalletResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WalletResponse{}, err
	}

	var wallet dto.WalletResponse
	err := s.wallet.Mutate(ctx, studentID, func(txn repository.WalletTxn) error {
		student := txn.Student()
		if student.WalletBalance+payload.Points < 0 {
			observability.WalletDenials().WithLabelValues("adjustment").Inc()
			return &InsufficientBalanceError{Required: -payload.Points, Available: student.WalletBalance}
		}

		if err := txn.Append(&models.WalletTransaction{
			Type:   models.TxnAdjustment,
			Points: payload.Points,
			Reason: payload.Reason,
		}); err != nil {
			return err
		}

		wallet = dto.NewWalletResponse(*student)
		return nil
	})
	if err != nil {
		return dto.WalletResponse{}, s.mapStudentErr(err)
	}

	s.logger.Info().Uint("student_id", studentID).Int("points", payload.Points).Msg("wallet adjusted")
	return wallet, nil
}

// Allocate moves points between the general balance and the reservation
// bucket for one reward. The target amount is absolute; the delta may reserve
// further (needs available balance) or release back.
func (s *walletService) Allocate(ctx context.Context, studentID uint, payload dto.WalletAllocateRequest) (dto.WalletResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WalletResponse{}, err
	}

	reward, err := s.rewards.GetByID(ctx, payload.RewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WalletResponse{}, ErrRewardNotFound
		}
		return dto.WalletResponse{}, err
	}

	var wallet dto.WalletResponse
	err = s.wallet.Mutate(ctx, studentID, func(txn repository.WalletTxn) error {
		student := txn.Student()
		current := student.AllocationFor(reward.ID)
		delta := payload.Amount - current
		if delta == 0 {
			wallet = dto.NewWalletResponse(*student)
			return nil
		}
		if delta > 0 && student.WalletBalance < delta {
			observability.WalletDenials().WithLabelValues("allocation").Inc()
			return &InsufficientBalanceError{Required: delta, Available: student.WalletBalance}
		}

		rewardID := reward.ID
		if err := txn.Append(&models.WalletTransaction{
			Type:     models.TxnAllocation,
			Points:   -delta,
			RewardID: &rewardID,
		}); err != nil {
			return err
		}

		allocations := student.RewardAllocations.Data()
		if allocations == nil {
			allocations = map[uint]int{}
		}
		if payload.Amount == 0 {
			delete(allocations, reward.ID)
		} else {
			allocations[reward.ID] = payload.Amount
		}
		student.RewardAllocations = datatypesJSON(allocations)

		wallet = dto.NewWalletResponse(*student)
		return nil
	})
	if err != nil {
		return dto.WalletResponse{}, s.mapStudentErr(err)
	}

	return wallet, nil
}

// Redeem exchanges points for a reward and opens a pending claim. Points
// already reserved for this reward are consumed first; only the shortfall is
// drawn from the general balance.
func (s *walletService) Redeem(ctx context.Context, studentID, rewardID uint) (dto.RewardClaimResponse, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RewardClaimResponse{}, ErrRewardNotFound
		}
		return dto.RewardClaimResponse{}, err
	}
	if !reward.IsActive {
		return dto.RewardClaimResponse{}, ErrRewardInactive
	}
	if !reward.VisibleTo(studentID) {
		return dto.RewardClaimResponse{}, ErrRewardNotVisible
	}

	var claim models.RewardClaim
	err = s.wallet.Mutate(ctx, studentID, func(txn repository.WalletTxn) error {
		student := txn.Student()
		allocated := student.AllocationFor(reward.ID)
		available := student.WalletBalance + allocated
		if available < reward.PointCost {
			observability.WalletDenials().WithLabelValues("redemption").Inc()
			return &InsufficientBalanceError{Required: reward.PointCost, Available: available}
		}

		fromAllocation := allocated
		if fromAllocation > reward.PointCost {
			fromAllocation = reward.PointCost
		}
		fromWallet := reward.PointCost - fromAllocation

		claim = models.RewardClaim{
			FamilyID:   student.FamilyID,
			StudentID:  student.ID,
			RewardID:   reward.ID,
			RewardName: reward.Name,
			PointCost:  reward.PointCost,
			Tier:       reward.Tier,
			Status:     models.ClaimStatusPending,
		}
		if err := txn.CreateClaim(&claim); err != nil {
			return err
		}

		rid := reward.ID
		if err := txn.Append(&models.WalletTransaction{
			Type:     models.TxnRedemption,
			Points:   -fromWallet,
			RewardID: &rid,
			ClaimID:  &claim.ID,
		}); err != nil {
			return err
		}

		if fromAllocation > 0 {
			allocations := student.RewardAllocations.Data()
			remaining := allocated - fromAllocation
			if remaining == 0 {
				delete(allocations, reward.ID)
			} else {
				allocations[reward.ID] = remaining
			}
			student.RewardAllocations = datatypesJSON(allocations)
		}

		return txn.IncrementRewardClaims(reward.ID)
	})
	if err != nil {
		return dto.RewardClaimResponse{}, s.mapStudentErr(err)
	}

	observability.RewardClaims().Inc()
	s.events.Publish(ctx, Event{
		Type:      EventRewardClaimed,
		StudentID: studentID,
		Payload:   map[string]interface{}{"reward_id": reward.ID, "claim_id": claim.ID, "point_cost": reward.PointCost},
	})
	s.logger.Info().Uint("student_id", studentID).Uint("reward_id", reward.ID).Msg("reward redeemed")

	return dto.NewRewardClaimResponse(claim), nil
}

// Contribute adds points from one student toward a shared group goal. The
// goal update and the student debit commit in the same database transaction;
// the contributed total clamps at the goal while the per-student map keeps
// the full cumulative amount.
func (s *walletService) Contribute(ctx context.Context, studentID, groupRewardID uint, payload dto.GroupContributeRequest) (dto.GroupRewardResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupRewardResponse{}, err
	}
	if payload.Amount <= 0 {
		return dto.GroupRewardResponse{}, ErrInvalidAmount
	}

	var updated models.GroupReward
	err := s.wallet.Mutate(ctx, studentID, func(txn repository.WalletTxn) error {
		goal, err := txn.GetGroupReward(groupRewardID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupRewardNotFound
			}
			return err
		}
		if goal.IsRedeemed {
			return ErrGroupRewardRedeemed
		}

		student := txn.Student()
		if student.WalletBalance < payload.Amount {
			observability.WalletDenials().WithLabelValues("contribution").Inc()
			return &InsufficientBalanceError{Required: payload.Amount, Available: student.WalletBalance}
		}

		goalID := goal.ID
		if err := txn.Append(&models.WalletTransaction{
			Type:     models.TxnRedemption,
			Points:   -payload.Amount,
			Reason:   "group reward contribution",
			RewardID: &goalID,
		}); err != nil {
			return err
		}

		contributions := goal.StudentContributions.Data()
		if contributions == nil {
			contributions = map[uint]int{}
		}
		contributions[student.ID] += payload.Amount
		goal.StudentContributions = datatypesJSON(contributions)

		goal.PointsContributed += payload.Amount
		if goal.PointsContributed > goal.PointsNeeded {
			goal.PointsContributed = goal.PointsNeeded
		}

		if err := txn.SaveGroupReward(&goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		return dto.GroupRewardResponse{}, s.mapStudentErr(err)
	}

	s.logger.Info().Uint("student_id", studentID).Uint("group_reward_id", groupRewardID).
		Int("amount", payload.Amount).Msg("group reward contribution")
	return dto.NewGroupRewardResponse(updated), nil
}

func (s *walletService) mapStudentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}
