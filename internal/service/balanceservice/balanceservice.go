package balanceservice

import (
	"context"

	"github.com/selivanovm/creatorpay/internal/domain"
	"go.uber.org/zap"
)

type OrderRepo interface {
	SumUnsweptByUser(ctx context.Context, userID int) (authorSum int64, affiliateSum int64, err error)
}

type WithdrawalRepo interface {
	SumPendingByUser(ctx context.Context, userID int) (int64, error)
}

// Service derives a user's balance from the order and withdrawal history.
// There is no stored balance counter: summing immutable rows sidesteps
// lost-update races on a shared field.
type Service struct {
	orderRepo      OrderRepo
	withdrawalRepo WithdrawalRepo
}

func New(orderRepo OrderRepo, withdrawalRepo WithdrawalRepo) *Service {
	return &Service{
		orderRepo:      orderRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// GetBalance is eventually consistent under concurrent order arrival; the
// authoritative re-check happens at withdrawal creation and settlement time.
func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	authorSum, affiliateSum, err := s.orderRepo.SumUnsweptByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to sum earnings", zap.Error(err))
		return nil, err
	}

	pending, err := s.withdrawalRepo.SumPendingByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to sum pending withdrawals", zap.Error(err))
		return nil, err
	}

	withdrawable := authorSum + affiliateSum - pending
	if withdrawable < 0 {
		withdrawable = 0
	}

	return &domain.Balance{
		AuthorAmount:            authorSum,
		AffiliateAmount:         affiliateSum,
		PendingWithdrawalAmount: pending,
		WithdrawableAmount:      withdrawable,
	}, nil
}
