package orderservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/split"
	"go.uber.org/zap"
)

type Repo interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	FindOrdersByAuthor(ctx context.Context, authorID int) ([]domain.Order, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
	}
}

var (
	ErrOrderAlreadyExists = errors.New("order already exists for payment intent")
	ErrInvalidOrder       = errors.New("invalid order parameters")
)

type CreateOrderParams struct {
	BuyerID         *int
	ArticleID       string
	AuthorID        int
	ReferrerID      *int
	AffiliateOn     bool
	AffiliateRate   int
	Amount          int64
	PaymentIntentID string
}

// CreateOrder records a pending sale at checkout-session creation time,
// snapshotting the article's affiliate configuration so the split can be
// computed later without the article service.
func (s *Service) CreateOrder(ctx context.Context, p CreateOrderParams) (*domain.Order, error) {
	if p.Amount <= 0 || p.ArticleID == "" || p.PaymentIntentID == "" || p.AuthorID == 0 {
		return nil, ErrInvalidOrder
	}
	if p.AffiliateRate < split.MinAffiliateRate || p.AffiliateRate > split.MaxAffiliateRate ||
		p.AffiliateRate%split.AffiliateRateStep != 0 {
		return nil, ErrInvalidOrder
	}

	existing, err := s.repo.FindByPaymentIntentID(ctx, p.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Info("order already exists", zap.String("payment_intent_id", p.PaymentIntentID))
		return nil, ErrOrderAlreadyExists
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         p.BuyerID,
		ArticleID:       p.ArticleID,
		AuthorID:        p.AuthorID,
		ReferrerID:      p.ReferrerID,
		AffiliateOn:     p.AffiliateOn,
		AffiliateRate:   p.AffiliateRate,
		Amount:          p.Amount,
		Status:          domain.PendingOrderStatus,
		PaymentIntentID: p.PaymentIntentID,
		CreatedAt:       time.Now(),
	}

	if err := s.repo.Save(ctx, order); err != nil {
		zap.L().Error("can't save order: ", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (s *Service) GetOrders(ctx context.Context, authorID int) ([]domain.Order, error) {
	orders, err := s.repo.FindOrdersByAuthor(ctx, authorID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}
