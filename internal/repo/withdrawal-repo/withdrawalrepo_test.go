package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/stretchr/testify/assert"
)

var requestColumnList = []string{
	"id", "user_id", "amount", "status", "failure_reason", "transfer_id", "target_year", "target_month",
	"requested_at", "queued_at", "processing_started_at", "processed_at", "canceled_at",
}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `INSERT INTO withdrawal_requests (id, user_id, amount, status, target_year, target_month, requested_at, queued_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	wr := &domain.WithdrawalRequest{
		ID:          "wr-1",
		UserID:      1,
		Amount:      5000,
		Status:      domain.QueuedWithdrawalStatus,
		TargetYear:  2026,
		TargetMonth: 9,
		RequestedAt: timeNow,
		QueuedAt:    &timeNow,
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Create request successfully",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs("wr-1", 1, int64(5000), domain.QueuedWithdrawalStatus, 2026, 9, timeNow, &timeNow).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs("wr-1", 1, int64(5000), domain.QueuedWithdrawalStatus, 2026, 9, timeNow, &timeNow).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Create(context.Background(), wr)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `SELECT ` + requestColumns + ` FROM withdrawal_requests WHERE id = $1`

	tests := []struct {
		name      string
		id        string
		mockSetup func()
		expectErr bool
		result    *domain.WithdrawalRequest
	}{
		{
			name: "Request exists",
			id:   "wr-1",
			mockSetup: func() {
				rows := pgxmock.NewRows(requestColumnList).
					AddRow("wr-1", 1, int64(5000), "queued", nil, nil, 2026, 9,
						timeNow, &timeNow, nil, nil, nil)
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("wr-1").
					WillReturnRows(rows)
			},
			result: &domain.WithdrawalRequest{
				ID:          "wr-1",
				UserID:      1,
				Amount:      5000,
				Status:      "queued",
				TargetYear:  2026,
				TargetMonth: 9,
				RequestedAt: timeNow,
				QueuedAt:    &timeNow,
			},
		},
		{
			name: "Request does not exist",
			id:   "wr-missing",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("wr-missing").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			id:   "wr-1",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs("wr-1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
			result:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), tt.id)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if tt.result == nil {
				assert.Nil(t, result)
			} else {
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_SumPendingByUser(t *testing.T) {
	repo, mock := NewMock(t)
	query := `SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests WHERE user_id = $1 AND status = ANY($2)`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		sum       int64
	}{
		{
			name: "Pending amounts summed",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"sum"}).AddRow(int64(8000))
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(1, domain.NonTerminalWithdrawalStatuses).
					WillReturnRows(rows)
			},
			sum: 8000,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(1, domain.NonTerminalWithdrawalStatuses).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			sum, err := repo.SumPendingByUser(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.sum, sum)
			}
		})
	}
}

func TestRepository_FindQueued(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `SELECT ` + requestColumns + ` FROM withdrawal_requests WHERE status = $1 AND ($2 = 0 OR target_year = $2) AND ($3 = 0 OR target_month = $3) ORDER BY requested_at ASC LIMIT $4`

	tests := []struct {
		name        string
		year, month int
		mockSetup   func()
		expectErr   bool
		count       int
	}{
		{
			name: "Queued requests found",
			mockSetup: func() {
				rows := pgxmock.NewRows(requestColumnList).
					AddRow("wr-1", 1, int64(5000), "queued", nil, nil, 2026, 9, timeNow, &timeNow, nil, nil, nil).
					AddRow("wr-2", 2, int64(3000), "queued", nil, nil, 2026, 9, timeNow, &timeNow, nil, nil, nil)
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(domain.QueuedWithdrawalStatus, 0, 0, 100).
					WillReturnRows(rows)
			},
			count: 2,
		},
		{
			name:  "Batch grouping filter applied",
			year:  2026,
			month: 8,
			mockSetup: func() {
				rows := pgxmock.NewRows(requestColumnList)
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(domain.QueuedWithdrawalStatus, 2026, 8, 100).
					WillReturnRows(rows)
			},
			count: 0,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(domain.QueuedWithdrawalStatus, 0, 0, 100).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			requests, err := repo.FindQueued(context.Background(), 100, tt.year, tt.month)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, requests, tt.count)
			}
		})
	}
}

func TestRepository_Claim(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `UPDATE withdrawal_requests SET status = $1, processing_started_at = $2 WHERE id = $3 AND status = $4`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		claimed   bool
	}{
		{
			name: "Queued request claimed",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(domain.ProcessingWithdrawalStatus, timeNow, "wr-1", domain.QueuedWithdrawalStatus).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			claimed: true,
		},
		{
			name: "Claim race lost",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(domain.ProcessingWithdrawalStatus, timeNow, "wr-1", domain.QueuedWithdrawalStatus).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			claimed: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(domain.ProcessingWithdrawalStatus, timeNow, "wr-1", domain.QueuedWithdrawalStatus).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			claimed, err := repo.Claim(context.Background(), "wr-1", timeNow)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.claimed, claimed)
			}
		})
	}
}

func TestRepository_Cancel(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `UPDATE withdrawal_requests SET status = $1, canceled_at = $2 WHERE id = $3 AND user_id = $4 AND status = $5`

	tests := []struct {
		name      string
		mockSetup func()
		canceled  bool
	}{
		{
			name: "Queued request canceled",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(domain.CanceledWithdrawalStatus, timeNow, "wr-1", 1, domain.QueuedWithdrawalStatus).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			canceled: true,
		},
		{
			name: "Already claimed request untouched",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(domain.CanceledWithdrawalStatus, timeNow, "wr-1", 1, domain.QueuedWithdrawalStatus).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			canceled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			canceled, err := repo.Cancel(context.Background(), "wr-1", 1, timeNow)
			assert.NoError(t, err)
			assert.Equal(t, tt.canceled, canceled)
		})
	}
}

func TestRepository_MarkPaid(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `UPDATE withdrawal_requests SET status = $1, transfer_id = $2, processed_at = $3 WHERE id = $4 AND status = $5`

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(domain.PaidWithdrawalStatus, "tr_1", timeNow, "wr-1", domain.ProcessingWithdrawalStatus).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	marked, err := repo.MarkPaid(context.Background(), "wr-1", "tr_1", timeNow)
	assert.NoError(t, err)
	assert.True(t, marked)
}

func TestRepository_MarkFailed(t *testing.T) {
	repo, mock := NewMock(t)
	timeNow := time.Now()
	query := `UPDATE withdrawal_requests SET status = $1, failure_reason = $2, processed_at = $3 WHERE id = $4 AND status = $5`

	tests := []struct {
		name       string
		fromStatus string
	}{
		{name: "Failed from queued", fromStatus: domain.QueuedWithdrawalStatus},
		{name: "Failed from processing", fromStatus: domain.ProcessingWithdrawalStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectExec(regexp.QuoteMeta(query)).
				WithArgs(domain.FailedWithdrawalStatus, "transfer rejected", timeNow, "wr-1", tt.fromStatus).
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))

			marked, err := repo.MarkFailed(context.Background(), "wr-1", tt.fromStatus, "transfer rejected", timeNow)
			assert.NoError(t, err)
			assert.True(t, marked)
		})
	}
}
