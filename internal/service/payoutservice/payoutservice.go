package payoutservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/provider"
	"go.uber.org/zap"
)

type WithdrawalRepo interface {
	Create(ctx context.Context, wr *domain.WithdrawalRequest) error
	FindByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error)
	Cancel(ctx context.Context, id string, userID int, at time.Time) (bool, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	UpdatePayoutFlags(ctx context.Context, userID int, status *domain.PayoutAccountStatus) error
}

type BalanceService interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
}

type Service struct {
	withdrawalRepo WithdrawalRepo
	userRepo       UserRepo
	balanceService BalanceService
	provider       provider.ClientI
	minWithdrawal  int64
}

func New(cfg *config.Config, withdrawalRepo WithdrawalRepo, userRepo UserRepo, balanceService BalanceService, providerClient provider.ClientI) *Service {
	return &Service{
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		balanceService: balanceService,
		provider:       providerClient,
		minWithdrawal:  cfg.MinWithdrawal,
	}
}

var (
	ErrNoExternalAccount   = errors.New("no_external_account")
	ErrPayoutsNotEnabled   = errors.New("payouts_not_enabled")
	ErrBelowMinimum        = errors.New("below_minimum")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrWithdrawalNotFound  = errors.New("withdrawal request not found")
	ErrUserNotFound        = errors.New("user not found")
)

// PayoutsNotEnabledError carries the provider's outstanding requirement
// codes back to the user.
type PayoutsNotEnabledError struct {
	Requirements []string
	PastDue      bool
}

func (e *PayoutsNotEnabledError) Error() string {
	return fmt.Sprintf("payouts not enabled, %d outstanding requirements", len(e.Requirements))
}

func (e *PayoutsNotEnabledError) Is(target error) bool {
	return target == ErrPayoutsNotEnabled
}

// NotCancelableError reports why a cancel was rejected, specific to the
// request's current status.
type NotCancelableError struct {
	Status string
}

func (e *NotCancelableError) Error() string {
	switch e.Status {
	case domain.ProcessingWithdrawalStatus:
		return "withdrawal is already being processed and can no longer be canceled"
	case domain.PaidWithdrawalStatus:
		return "withdrawal has already been paid out"
	case domain.FailedWithdrawalStatus:
		return "withdrawal has already failed"
	case domain.CanceledWithdrawalStatus:
		return "withdrawal is already canceled"
	default:
		return fmt.Sprintf("withdrawal in status %q cannot be canceled", e.Status)
	}
}

// CheckEligibility re-reads the provider's account state rather than
// trusting the cached flags: a stale cache could queue a request that only
// fails later in the batch, a worse failure mode than rejecting now.
// The cached flags are refreshed as a side effect.
func (s *Service) CheckEligibility(ctx context.Context, userID int, amount int64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.ProviderAccountID == "" {
		return ErrNoExternalAccount
	}

	status, err := s.provider.GetAccountStatus(ctx, user.ProviderAccountID)
	if err != nil {
		zap.L().Error("failed to fetch account status", zap.Error(err))
		return err
	}

	if err := s.userRepo.UpdatePayoutFlags(ctx, userID, status); err != nil {
		zap.L().Error("failed to refresh payout flags", zap.Error(err))
	}

	if !status.HasExternalAccount {
		return ErrNoExternalAccount
	}
	if !status.PayoutsEnabled {
		return &PayoutsNotEnabledError{
			Requirements: append(append([]string{}, status.CurrentlyDue...), status.PastDue...),
			PastDue:      len(status.PastDue) > 0,
		}
	}
	if amount < s.minWithdrawal {
		return ErrBelowMinimum
	}

	balance, err := s.balanceService.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if amount > balance.WithdrawableAmount {
		return ErrInsufficientBalance
	}

	return nil
}

// RequestWithdrawal creates a queued payout instruction. Eligibility was
// just confirmed, so the request does not linger in the requested state.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int, amount int64) (*domain.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrBelowMinimum
	}

	if err := s.CheckEligibility(ctx, userID, amount); err != nil {
		return nil, err
	}

	now := time.Now()
	wr := &domain.WithdrawalRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Status:      domain.QueuedWithdrawalStatus,
		TargetYear:  now.Year(),
		TargetMonth: int(now.Month()),
		RequestedAt: now,
		QueuedAt:    &now,
	}

	if err := s.withdrawalRepo.Create(ctx, wr); err != nil {
		zap.L().Error("failed to create withdrawal request", zap.Error(err))
		return nil, err
	}

	zap.L().Info("withdrawal request queued",
		zap.String("request_id", wr.ID), zap.Int("user_id", userID), zap.Int64("amount", amount))
	return wr, nil
}

// CancelWithdrawal is a conditional update guarded on status = queued.
// A request claimed by a batch run mid-flight loses the race and stays
// untouched.
func (s *Service) CancelWithdrawal(ctx context.Context, userID int, id string) error {
	canceled, err := s.withdrawalRepo.Cancel(ctx, id, userID, time.Now())
	if err != nil {
		return err
	}
	if canceled {
		zap.L().Info("withdrawal request canceled", zap.String("request_id", id))
		return nil
	}

	wr, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if wr == nil || wr.UserID != userID {
		return ErrWithdrawalNotFound
	}
	return &NotCancelableError{Status: wr.Status}
}

func (s *Service) GetWithdrawals(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error) {
	requests, err := s.withdrawalRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, err
	}
	return requests, nil
}
