package withdrawalrepo

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
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const requestColumns = `id, user_id, amount, status, failure_reason, transfer_id, target_year, target_month, requested_at, queued_at, processing_started_at, processed_at, canceled_at`

func scanRequest(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var wr domain.WithdrawalRequest
	err := row.Scan(
		&wr.ID, &wr.UserID, &wr.Amount, &wr.Status, &wr.FailureReason, &wr.TransferID,
		&wr.TargetYear, &wr.TargetMonth, &wr.RequestedAt, &wr.QueuedAt,
		&wr.ProcessingStartedAt, &wr.ProcessedAt, &wr.CanceledAt,
	)
	if err != nil {
		return nil, err
	}
	return &wr, nil
}

func (r *Repository) Create(ctx context.Context, wr *domain.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (id, user_id, amount, status, target_year, target_month, requested_at, queued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		wr.ID, wr.UserID, wr.Amount, wr.Status, wr.TargetYear, wr.TargetMonth,
		wr.RequestedAt, wr.QueuedAt,
	)
	if err != nil {
		zap.L().Error("can't save withdrawal request", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM withdrawal_requests
        WHERE id = $1
    `
	wr, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find withdrawal request", zap.Error(err))
		return nil, err
	}
	return wr, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM withdrawal_requests
        WHERE user_id = $1
        ORDER BY requested_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		wr, err := scanRequest(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal request row", zap.Error(err))
			return nil, err
		}
		requests = append(requests, *wr)
	}
	return requests, nil
}

// SumPendingByUser sums the amounts reserved by the user's non-terminal
// requests. Canceled and failed requests release their amounts here.
func (r *Repository) SumPendingByUser(ctx context.Context, userID int) (int64, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM withdrawal_requests
        WHERE user_id = $1 AND status = ANY($2)
    `
	var sum int64
	err := r.db.QueryRow(ctx, query, userID, domain.NonTerminalWithdrawalStatuses).Scan(&sum)
	if err != nil {
		zap.L().Error("failed to sum pending withdrawals", zap.Error(err))
		return 0, err
	}
	return sum, nil
}

// FindQueued returns up to limit queued requests oldest first. Year and
// month filter by batch grouping key when non-zero.
func (r *Repository) FindQueued(ctx context.Context, limit int, year, month int) ([]domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + requestColumns + `
        FROM withdrawal_requests
        WHERE status = $1 AND ($2 = 0 OR target_year = $2) AND ($3 = 0 OR target_month = $3)
        ORDER BY requested_at ASC
        LIMIT $4
    `
	rows, err := r.db.Query(ctx, query, domain.QueuedWithdrawalStatus, year, month, limit)
	if err != nil {
		zap.L().Error("can't get queued withdrawal requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		wr, err := scanRequest(rows)
		if err != nil {
			zap.L().Error("can't scan queued request row", zap.Error(err))
			return nil, err
		}
		requests = append(requests, *wr)
	}
	return requests, nil
}

// Claim is the queued -> processing transition. The status guard makes it
// atomic: of two racing batch runs, exactly one sees a row updated.
func (r *Repository) Claim(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, processing_started_at = $2
		WHERE id = $3 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, domain.ProcessingWithdrawalStatus, at, id, domain.QueuedWithdrawalStatus)
	if err != nil {
		zap.L().Error("failed to claim withdrawal request", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel is the user-facing queued -> canceled transition, racing against
// Claim on the same guard.
func (r *Repository) Cancel(ctx context.Context, id string, userID int, at time.Time) (bool, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, canceled_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, domain.CanceledWithdrawalStatus, at, id, userID, domain.QueuedWithdrawalStatus)
	if err != nil {
		zap.L().Error("failed to cancel withdrawal request", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaid is the processing -> paid transition, recording the external
// transfer id.
func (r *Repository) MarkPaid(ctx context.Context, id string, transferID string, at time.Time) (bool, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, transfer_id = $2, processed_at = $3
		WHERE id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, domain.PaidWithdrawalStatus, transferID, at, id, domain.ProcessingWithdrawalStatus)
	if err != nil {
		zap.L().Error("failed to mark withdrawal request paid", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed records a terminal failure. fromStatus is the state the row
// must still be in (queued for eligibility fail-fast, processing for
// transfer errors).
func (r *Repository) MarkFailed(ctx context.Context, id string, fromStatus string, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, failure_reason = $2, processed_at = $3
		WHERE id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, domain.FailedWithdrawalStatus, reason, at, id, fromStatus)
	if err != nil {
		zap.L().Error("failed to mark withdrawal request failed", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
