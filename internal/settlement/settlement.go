// Package settlement drains queued withdrawal requests through the payment
// provider's transfer API. Each request settles independently: one failure
// never rolls back or aborts the rest of the batch.
package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/notify"
	"github.com/selivanovm/creatorpay/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var processingRequests sync.Map

const (
	payoutsDisabledReason = "payouts not enabled for account"
	userMissingReason     = "user account no longer exists"
)

type WithdrawalRepo interface {
	FindQueued(ctx context.Context, limit int, year, month int) ([]domain.WithdrawalRequest, error)
	Claim(ctx context.Context, id string, at time.Time) (bool, error)
	MarkPaid(ctx context.Context, id string, transferID string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string, fromStatus string, reason string, at time.Time) (bool, error)
}

type OrderRepo interface {
	FindUnsweptPaidByUser(ctx context.Context, userID int) ([]domain.Order, error)
	Sweep(ctx context.Context, orderIDs []string, withdrawalID string) ([]string, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	UpdatePayoutFlags(ctx context.Context, userID int, status *domain.PayoutAccountStatus) error
}

type ItemResult struct {
	RequestID string
	UserID    int
	Amount    int64
	Status    string
	Reason    string
}

// Summary reports one batch run. Failures here are data, not errors: the
// run itself succeeds even when every item fails.
type Summary struct {
	Processed        int
	Failed           int
	Skipped          int
	TotalTransferred int64
	Items            []ItemResult
}

type Service struct {
	withdrawalRepo WithdrawalRepo
	orderRepo      OrderRepo
	userRepo       UserRepo
	provider       provider.ClientI
	notifier       notify.Notifier
	currency       string
	limit          int
	workerPool     WorkerPoolI
	runInterval    time.Duration
}

func New(cfg *config.Config, withdrawalRepo WithdrawalRepo, orderRepo OrderRepo, userRepo UserRepo, providerClient provider.ClientI, notifier notify.Notifier) *Service {
	return &Service{
		withdrawalRepo: withdrawalRepo,
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		provider:       providerClient,
		notifier:       notifier,
		currency:       cfg.Currency,
		limit:          cfg.SettlementBatch,
		workerPool:     NewWorkerPool(10),
		runInterval:    cfg.SettlementInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Settlement service started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping settlement service")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx, 0, 0); err != nil {
				zap.L().Error("Scheduled settlement run failed", zap.Error(err))
			}
		}
	}
}

// Run drains up to the configured number of queued requests, oldest first.
// Year and month filter by batch grouping key when non-zero.
func (s *Service) Run(ctx context.Context, year, month int) (*Summary, error) {
	requests, err := s.withdrawalRepo.FindQueued(ctx, s.limit, year, month)
	if err != nil {
		zap.L().Error("Failed to fetch queued withdrawal requests", zap.Error(err))
		return nil, err
	}

	summary := &Summary{}
	var mu sync.Mutex

	var g errgroup.Group
	for _, request := range requests {
		request := request

		if _, loaded := processingRequests.LoadOrStore(request.ID, struct{}{}); loaded {
			mu.Lock()
			summary.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			// AddTask returns on enqueue; the done channel makes this
			// goroutine block until the task has actually run, so g.Wait
			// only releases once the summary is complete.
			done := make(chan struct{})
			err := s.workerPool.AddTask(ctx, func() error {
				defer close(done)
				defer processingRequests.Delete(request.ID)
				item := s.settle(ctx, request)

				mu.Lock()
				defer mu.Unlock()
				summary.Items = append(summary.Items, item)
				switch item.Status {
				case domain.PaidWithdrawalStatus:
					summary.Processed++
					summary.TotalTransferred += item.Amount
				case domain.FailedWithdrawalStatus:
					summary.Failed++
				default:
					summary.Skipped++
				}
				return nil
			})
			if err != nil {
				processingRequests.Delete(request.ID)
				return err
			}
			<-done
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error processing settlement batch", zap.Error(err))
	}

	zap.L().Info("Settlement run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int64("total_transferred", summary.TotalTransferred),
	)
	return summary, nil
}

func (s *Service) settle(ctx context.Context, request domain.WithdrawalRequest) ItemResult {
	item := ItemResult{RequestID: request.ID, UserID: request.UserID, Amount: request.Amount}

	user, err := s.userRepo.FindByID(ctx, request.UserID)
	if err != nil {
		item.Status = domain.QueuedWithdrawalStatus
		item.Reason = "user lookup failed"
		return item
	}
	if user == nil {
		// The account row is gone; no retry can ever succeed.
		return s.fail(ctx, request, nil, domain.QueuedWithdrawalStatus, userMissingReason, item)
	}

	// Re-check the provider's payout flag before touching the request. A
	// disabled account needs user action, so the request fails now rather
	// than being silently retried forever.
	status, err := s.provider.GetAccountStatus(ctx, user.ProviderAccountID)
	if err != nil {
		zap.L().Warn("Account status check failed, leaving request queued",
			zap.String("request_id", request.ID), zap.Error(err))
		item.Status = domain.QueuedWithdrawalStatus
		item.Reason = "account status check failed"
		return item
	}
	if updErr := s.userRepo.UpdatePayoutFlags(ctx, request.UserID, status); updErr != nil {
		zap.L().Error("Failed to refresh payout flags", zap.Error(updErr))
	}

	if !status.PayoutsEnabled {
		return s.fail(ctx, request, user, domain.QueuedWithdrawalStatus, payoutsDisabledReason, item)
	}

	claimed, err := s.withdrawalRepo.Claim(ctx, request.ID, time.Now())
	if err != nil || !claimed {
		// Another runner or a cancel won the race.
		item.Status = domain.QueuedWithdrawalStatus
		item.Reason = "claim lost"
		return item
	}

	// The request id doubles as the idempotency key: a crash-and-retry of
	// the same request returns the original transfer instead of paying twice.
	transferID, err := s.provider.CreateTransfer(ctx, user.ProviderAccountID, request.Amount, s.currency,
		request.ID, map[string]string{"withdrawal_request_id": request.ID})
	if err != nil {
		if errors.Is(err, provider.ErrTimeout) {
			// Outcome unknown: the transfer may have landed. Leave the
			// request in processing for manual reconciliation.
			zap.L().Warn("Transfer timed out, leaving request in processing",
				zap.String("request_id", request.ID))
			item.Status = domain.ProcessingWithdrawalStatus
			item.Reason = provider.ErrTimeout.Error()
			return item
		}
		return s.fail(ctx, request, user, domain.ProcessingWithdrawalStatus, err.Error(), item)
	}

	if _, err := s.withdrawalRepo.MarkPaid(ctx, request.ID, transferID, time.Now()); err != nil {
		zap.L().Error("Transfer succeeded but status write failed; safe to re-run under the same idempotency key",
			zap.String("request_id", request.ID), zap.Error(err))
		item.Status = domain.ProcessingWithdrawalStatus
		item.Reason = "status write failed after transfer"
		return item
	}

	s.sweepOrders(ctx, request)

	if s.notifier != nil {
		if err := s.notifier.PayoutPaid(ctx, user.Email, request.Amount); err != nil {
			zap.L().Warn("Failed to send payout notification", zap.Error(err))
		}
	}

	zap.L().Info("Withdrawal request settled",
		zap.String("request_id", request.ID), zap.String("transfer_id", transferID))
	item.Status = domain.PaidWithdrawalStatus
	return item
}

func (s *Service) fail(ctx context.Context, request domain.WithdrawalRequest, user *domain.User, fromStatus, reason string, item ItemResult) ItemResult {
	marked, err := s.withdrawalRepo.MarkFailed(ctx, request.ID, fromStatus, reason, time.Now())
	if err != nil || !marked {
		item.Status = fromStatus
		item.Reason = "failure write lost: " + reason
		return item
	}

	if s.notifier != nil && user != nil {
		if err := s.notifier.PayoutFailed(ctx, user.Email, request.Amount, reason); err != nil {
			zap.L().Warn("Failed to send payout failure notification", zap.Error(err))
		}
	}

	zap.L().Info("Withdrawal request failed",
		zap.String("request_id", request.ID), zap.String("reason", reason))
	item.Status = domain.FailedWithdrawalStatus
	item.Reason = reason
	return item
}

const sweepAttempts = 3

// sweepOrders stamps the paid orders whose proceeds this withdrawal
// consumed, oldest first, until the request amount is covered. Orders whose
// proceeds belong entirely to the withdrawing user are preferred; a shared
// order is swept only when nothing else can cover the amount, because the
// stamp erases the other beneficiary's unswept share. A concurrent
// settlement can steal selected orders, so the sweep re-selects from the
// remaining unswept set until covered or out of attempts.
func (s *Service) sweepOrders(ctx context.Context, request domain.WithdrawalRequest) {
	remaining := request.Amount

	for attempt := 0; attempt < sweepAttempts && remaining > 0; attempt++ {
		orders, err := s.orderRepo.FindUnsweptPaidByUser(ctx, request.UserID)
		if err != nil {
			zap.L().Error("Failed to fetch orders for sweeping",
				zap.String("request_id", request.ID), zap.Error(err))
			return
		}

		ids, shares := selectForSweep(orders, request.UserID, remaining)
		if len(ids) == 0 {
			break
		}

		swept, err := s.orderRepo.Sweep(ctx, ids, request.ID)
		if err != nil {
			zap.L().Error("Failed to sweep orders",
				zap.String("request_id", request.ID), zap.Error(err))
			return
		}
		for _, id := range swept {
			remaining -= shares[id]
		}
		if len(swept) == len(ids) {
			break
		}
		zap.L().Warn("Sweep lost orders to a concurrent settlement, re-selecting",
			zap.String("request_id", request.ID),
			zap.Int("selected", len(ids)), zap.Int("swept", len(swept)))
	}

	if remaining > 0 {
		zap.L().Warn("Sweep under-covered the withdrawal amount",
			zap.String("request_id", request.ID),
			zap.Int64("uncovered", remaining),
		)
	}
	if remaining < 0 {
		zap.L().Warn("Sweep over-covered the withdrawal amount",
			zap.String("request_id", request.ID),
			zap.Int64("overage", -remaining),
		)
	}
}

// selectForSweep picks unswept orders covering amount, exclusive orders
// first. Returns the chosen ids in sweep order and each order's share of
// the proceeds for the withdrawing user.
func selectForSweep(orders []domain.Order, userID int, amount int64) ([]string, map[string]int64) {
	shares := make(map[string]int64, len(orders))
	var exclusive, shared []domain.Order
	for _, order := range orders {
		var share, other int64
		if order.AuthorID == userID {
			share += order.AuthorAmount
		} else {
			other += order.AuthorAmount
		}
		if order.ReferrerID != nil && *order.ReferrerID == userID {
			share += order.AffiliateAmount
		} else {
			other += order.AffiliateAmount
		}
		if share == 0 {
			continue
		}
		shares[order.ID] = share
		if other == 0 {
			exclusive = append(exclusive, order)
		} else {
			shared = append(shared, order)
		}
	}

	var ids []string
	var covered int64
	for _, order := range exclusive {
		if covered >= amount {
			break
		}
		covered += shares[order.ID]
		ids = append(ids, order.ID)
	}
	for _, order := range shared {
		if covered >= amount {
			break
		}
		covered += shares[order.ID]
		ids = append(ids, order.ID)
		zap.L().Warn("Sweeping an order that still carries another user's unswept earnings",
			zap.String("order_id", order.ID), zap.Int("user_id", userID))
	}
	return ids, shares
}
