package reconcileservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/provider"
	"github.com/selivanovm/creatorpay/internal/split"
	"go.uber.org/zap"
)

type OrderRepo interface {
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string, platformFee, authorAmount, affiliateAmount int64, paidAt time.Time) (bool, error)
	MarkRefunded(ctx context.Context, orderID string, status string, refundedAt time.Time) (bool, error)
}

type UserRepo interface {
	UpdateMemberByCustomerID(ctx context.Context, customerID string, member bool) (bool, error)
}

type EventRepo interface {
	Record(ctx context.Context, providerEventID, eventType string) (bool, error)
}

// Service applies provider webhook events to local state. Every apply is
// idempotent under redelivery and tolerant of out-of-order arrival.
type Service struct {
	orderRepo  OrderRepo
	userRepo   UserRepo
	eventRepo  EventRepo
	feePercent int
}

func New(cfg *config.Config, orderRepo OrderRepo, userRepo UserRepo, eventRepo EventRepo) *Service {
	return &Service{
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		eventRepo:  eventRepo,
		feePercent: cfg.PlatformFeePercent,
	}
}

var (
	// ErrSplitIntegrity marks a calculator defect. The affected order is
	// halted; other events keep processing.
	ErrSplitIntegrity = errors.New("settlement split failed integrity check")
)

// Apply routes a verified event to its handler. Duplicate deliveries and
// events for unknown or already-terminal orders are no-ops, not errors, so
// the provider stops redelivering.
func (s *Service) Apply(ctx context.Context, event *provider.Event) error {
	var err error
	switch event.Type {
	case provider.EventCheckoutCompleted:
		err = s.applyPaid(ctx, event)
	case provider.EventChargeRefunded:
		err = s.applyRefund(ctx, event)
	case provider.EventSubscriptionCreated, provider.EventSubscriptionUpdated:
		err = s.applySubscription(ctx, event, event.Data.SubscriptionStatus == "active")
	case provider.EventSubscriptionDeleted:
		err = s.applySubscription(ctx, event, false)
	default:
		zap.L().Info("unhandled webhook event type", zap.String("type", event.Type))
	}
	if err != nil {
		return err
	}

	// The event id lands in the dedup store only after the apply succeeded.
	// A transient failure leaves no row, so the provider's redelivery gets a
	// clean retry; the status-guarded updates keep the retry idempotent.
	fresh, err := s.eventRepo.Record(ctx, event.ID, event.Type)
	if err != nil {
		return err
	}
	if !fresh {
		zap.L().Info("duplicate webhook event", zap.String("event_id", event.ID))
	}
	return nil
}

func (s *Service) applyPaid(ctx context.Context, event *provider.Event) error {
	order, err := s.orderRepo.FindByPaymentIntentID(ctx, event.Data.PaymentIntentID)
	if err != nil {
		return err
	}
	if order == nil {
		zap.L().Warn("payment event for unknown order skipped",
			zap.String("payment_intent_id", event.Data.PaymentIntentID))
		return nil
	}
	if order.Status != domain.PendingOrderStatus {
		zap.L().Info("order already paid, skipping",
			zap.String("order_id", order.ID), zap.String("status", order.Status))
		return nil
	}

	result, err := split.Calc(order.Amount, s.feePercent, split.AffiliateConfig{
		Enabled:    order.AffiliateOn,
		Rate:       order.AffiliateRate,
		ReferrerID: order.ReferrerID,
	}, order.AuthorID)
	if err != nil {
		zap.L().Error("settlement split failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("%w: %s", ErrSplitIntegrity, err)
	}

	applied, err := s.orderRepo.MarkPaid(ctx, order.ID,
		result.PlatformFee, result.AuthorAmount, result.AffiliateAmount, time.Now())
	if err != nil {
		return err
	}
	if !applied {
		// Lost a race with another delivery of the same event.
		zap.L().Info("order paid concurrently, skipping", zap.String("order_id", order.ID))
		return nil
	}

	zap.L().Info("order settled",
		zap.String("order_id", order.ID),
		zap.Int64("platform_fee", result.PlatformFee),
		zap.Int64("author_amount", result.AuthorAmount),
		zap.Int64("affiliate_amount", result.AffiliateAmount),
	)
	return nil
}

func (s *Service) applyRefund(ctx context.Context, event *provider.Event) error {
	order, err := s.orderRepo.FindByPaymentIntentID(ctx, event.Data.PaymentIntentID)
	if err != nil {
		return err
	}
	if order == nil {
		zap.L().Warn("refund event for unknown order skipped",
			zap.String("payment_intent_id", event.Data.PaymentIntentID))
		return nil
	}
	if order.Status == domain.PendingOrderStatus {
		// The paid webhook may simply be late. Log and skip.
		zap.L().Warn("refund event for unpaid order skipped", zap.String("order_id", order.ID))
		return nil
	}
	if order.Status != domain.PaidOrderStatus {
		zap.L().Info("order already refunded, skipping", zap.String("order_id", order.ID))
		return nil
	}

	status := domain.RefundedOrderStatus
	if event.Data.AmountRefunded > 0 && event.Data.AmountRefunded < order.Amount {
		status = domain.PartiallyRefundedOrderStatus
	}

	applied, err := s.orderRepo.MarkRefunded(ctx, order.ID, status, time.Now())
	if err != nil {
		return err
	}
	if !applied {
		zap.L().Info("order refunded concurrently, skipping", zap.String("order_id", order.ID))
		return nil
	}

	if order.WithdrawalID != nil {
		// Proceeds were already paid out. Surfaced for the operator.
		zap.L().Warn("refunded order was already swept into a withdrawal",
			zap.String("order_id", order.ID), zap.String("withdrawal_id", *order.WithdrawalID))
	}
	zap.L().Info("order refunded", zap.String("order_id", order.ID), zap.String("status", status))
	return nil
}

func (s *Service) applySubscription(ctx context.Context, event *provider.Event, active bool) error {
	matched, err := s.userRepo.UpdateMemberByCustomerID(ctx, event.Data.CustomerAccountID, active)
	if err != nil {
		return err
	}
	if !matched {
		zap.L().Warn("subscription event for unknown customer skipped",
			zap.String("customer_account_id", event.Data.CustomerAccountID))
		return nil
	}
	zap.L().Info("membership updated",
		zap.String("customer_account_id", event.Data.CustomerAccountID), zap.Bool("active", active))
	return nil
}
