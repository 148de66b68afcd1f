package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const orderColumns = `id, buyer_id, article_id, author_id, referrer_id, affiliate_enabled, affiliate_rate, amount, status, platform_fee, author_amount, affiliate_amount, payment_intent_id, withdrawal_id, created_at, paid_at, refunded_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.BuyerID, &order.ArticleID, &order.AuthorID, &order.ReferrerID,
		&order.AffiliateOn, &order.AffiliateRate, &order.Amount, &order.Status, &order.PlatformFee, &order.AuthorAmount,
		&order.AffiliateAmount, &order.PaymentIntentID, &order.WithdrawalID,
		&order.CreatedAt, &order.PaidAt, &order.RefundedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	query := `
        INSERT INTO orders (id, buyer_id, article_id, author_id, referrer_id, affiliate_enabled, affiliate_rate, amount, status, payment_intent_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			order.ID, order.BuyerID, order.ArticleID, order.AuthorID, order.ReferrerID,
			order.AffiliateOn, order.AffiliateRate, order.Amount, order.Status,
			order.PaymentIntentID, order.CreatedAt,
		)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *Repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE payment_intent_id = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, paymentIntentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order by payment intent", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindOrdersByAuthor(ctx context.Context, authorID int) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE author_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// MarkPaid applies the settlement split to a pending order. The status guard
// makes a redelivered payment webhook a no-op: the second update matches zero rows.
func (r *Repository) MarkPaid(ctx context.Context, orderID string, platformFee, authorAmount, affiliateAmount int64, paidAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, platform_fee = $2, author_amount = $3, affiliate_amount = $4, paid_at = $5
		WHERE id = $6 AND status = $7
	`
	var applied bool
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query,
			domain.PaidOrderStatus, platformFee, authorAmount, affiliateAmount, paidAt,
			orderID, domain.PendingOrderStatus,
		)
		if err != nil {
			zap.L().Error("failed to mark order paid", zap.Error(err))
			return err
		}
		applied = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// MarkRefunded moves a paid order to refunded or partially_refunded.
func (r *Repository) MarkRefunded(ctx context.Context, orderID string, status string, refundedAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, refunded_at = $2
		WHERE id = $3 AND status = $4
	`
	var applied bool
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, status, refundedAt, orderID, domain.PaidOrderStatus)
		if err != nil {
			zap.L().Error("failed to mark order refunded", zap.Error(err))
			return err
		}
		applied = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// SumUnsweptByUser returns the author and affiliate earnings still sitting
// on paid orders no withdrawal has swept yet.
func (r *Repository) SumUnsweptByUser(ctx context.Context, userID int) (authorSum int64, affiliateSum int64, err error) {
	query := `
        SELECT
            COALESCE(SUM(author_amount) FILTER (WHERE author_id = $1), 0),
            COALESCE(SUM(affiliate_amount) FILTER (WHERE referrer_id = $1), 0)
        FROM orders
        WHERE status = $2 AND withdrawal_id IS NULL AND (author_id = $1 OR referrer_id = $1)
    `
	err = r.db.QueryRow(ctx, query, userID, domain.PaidOrderStatus).Scan(&authorSum, &affiliateSum)
	if err != nil {
		zap.L().Error("failed to sum unswept orders", zap.Error(err))
		return 0, 0, err
	}
	return authorSum, affiliateSum, nil
}

// FindUnsweptPaidByUser lists the user's paid unswept orders oldest first,
// for sweeping into a settled withdrawal.
func (r *Repository) FindUnsweptPaidByUser(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE status = $1 AND withdrawal_id IS NULL AND (author_id = $2 OR referrer_id = $2)
        ORDER BY paid_at ASC
    `
	rows, err := r.db.Query(ctx, query, domain.PaidOrderStatus, userID)
	if err != nil {
		zap.L().Error("can't get unswept orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan unswept order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// Sweep stamps orders with the withdrawal that consumed their proceeds,
// excluding them from future balance computations. Returns the ids that
// were actually stamped: an order already swept by a concurrent settlement
// is guarded out, and the caller must re-select to cover the shortfall.
func (r *Repository) Sweep(ctx context.Context, orderIDs []string, withdrawalID string) ([]string, error) {
	query := `
		UPDATE orders
		SET withdrawal_id = $1
		WHERE id = ANY($2) AND withdrawal_id IS NULL
		RETURNING id
	`
	var swept []string
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, withdrawalID, orderIDs)
		if err != nil {
			zap.L().Error("failed to sweep orders", zap.Error(err))
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				zap.L().Error("can't scan swept order id", zap.Error(err))
				return err
			}
			swept = append(swept, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return swept, nil
}
