package payoutservice

import (
	"context"
	"errors"
	"testing"

	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/provider"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockWithdrawalRepo, *MockUserRepo, *MockBalanceService, *provider.MockClientI) {
	ctrl := gomock.NewController(t)
	withdrawalRepo := NewMockWithdrawalRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)
	balanceService := NewMockBalanceService(ctrl)
	providerClient := provider.NewMockClientI(ctrl)
	service := New(&config.Config{MinWithdrawal: 3000}, withdrawalRepo, userRepo, balanceService, providerClient)
	defer ctrl.Finish()
	return service, withdrawalRepo, userRepo, balanceService, providerClient
}

func enabledStatus() *domain.PayoutAccountStatus {
	return &domain.PayoutAccountStatus{
		AccountID:          "acct_1",
		PayoutsEnabled:     true,
		HasExternalAccount: true,
	}
}

func TestRequestWithdrawal(t *testing.T) {
	user := &domain.User{ID: 1, Email: "author@example.com", ProviderAccountID: "acct_1"}
	errProviderDown := errors.New("provider down")
	errDB := errors.New("db error")

	tests := []struct {
		name          string
		userID        int
		amount        int64
		prepareMock   func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI)
		expectedError error
	}{
		{
			name:   "Successful withdrawal request",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(enabledStatus(), nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
				b.EXPECT().GetBalance(gomock.Any(), 1).Return(&domain.Balance{WithdrawableAmount: 10000}, nil)
				w.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:          "Non-positive amount rejected",
			userID:        1,
			amount:        0,
			expectedError: ErrBelowMinimum,
		},
		{
			name:   "Unknown user rejected",
			userID: 99,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "No provider account rejected",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
			},
			expectedError: ErrNoExternalAccount,
		},
		{
			name:   "No external bank account rejected",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(&domain.PayoutAccountStatus{
					PayoutsEnabled: true, HasExternalAccount: false,
				}, nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
			},
			expectedError: ErrNoExternalAccount,
		},
		{
			name:   "Payouts disabled carries requirements",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(&domain.PayoutAccountStatus{
					HasExternalAccount: true,
					CurrentlyDue:       []string{"individual.id_number"},
					PastDue:            []string{"individual.verification.document"},
				}, nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
			},
			expectedError: ErrPayoutsNotEnabled,
		},
		{
			name:   "Below minimum rejected",
			userID: 1,
			amount: 2999,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(enabledStatus(), nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
			},
			expectedError: ErrBelowMinimum,
		},
		{
			name:   "Insufficient balance rejected",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(enabledStatus(), nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
				b.EXPECT().GetBalance(gomock.Any(), 1).Return(&domain.Balance{WithdrawableAmount: 4000}, nil)
			},
			expectedError: ErrInsufficientBalance,
		},
		{
			name:   "Provider status error propagates",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(nil, errProviderDown)
			},
			expectedError: errProviderDown,
		},
		{
			name:   "Error creating request",
			userID: 1,
			amount: 5000,
			prepareMock: func(w *MockWithdrawalRepo, u *MockUserRepo, b *MockBalanceService, p *provider.MockClientI) {
				u.EXPECT().FindByID(gomock.Any(), 1).Return(user, nil)
				p.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").Return(enabledStatus(), nil)
				u.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)
				b.EXPECT().GetBalance(gomock.Any(), 1).Return(&domain.Balance{WithdrawableAmount: 10000}, nil)
				w.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errDB)
			},
			expectedError: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, withdrawalRepo, userRepo, balanceService, providerClient := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(withdrawalRepo, userRepo, balanceService, providerClient)
			}

			wr, err := service.RequestWithdrawal(context.Background(), tt.userID, tt.amount)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, wr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, wr.ID)
				assert.Equal(t, domain.QueuedWithdrawalStatus, wr.Status)
				assert.Equal(t, tt.amount, wr.Amount)
				assert.NotZero(t, wr.TargetYear)
				assert.NotZero(t, wr.TargetMonth)
			}
		})
	}
}

func TestRequestWithdrawalRequirements(t *testing.T) {
	service, _, userRepo, _, providerClient := NewMock(t)
	userRepo.EXPECT().FindByID(gomock.Any(), 1).
		Return(&domain.User{ID: 1, ProviderAccountID: "acct_1"}, nil)
	providerClient.EXPECT().GetAccountStatus(gomock.Any(), "acct_1").
		Return(&domain.PayoutAccountStatus{
			HasExternalAccount: true,
			CurrentlyDue:       []string{"individual.id_number"},
			PastDue:            []string{"individual.verification.document"},
		}, nil)
	userRepo.EXPECT().UpdatePayoutFlags(gomock.Any(), 1, gomock.Any()).Return(nil)

	_, err := service.RequestWithdrawal(context.Background(), 1, 5000)

	var notEnabled *PayoutsNotEnabledError
	assert.ErrorAs(t, err, &notEnabled)
	assert.Equal(t, []string{"individual.id_number", "individual.verification.document"}, notEnabled.Requirements)
	assert.True(t, notEnabled.PastDue)
}

func TestCancelWithdrawal(t *testing.T) {
	tests := []struct {
		name          string
		userID        int
		requestID     string
		prepareMock   func(w *MockWithdrawalRepo)
		expectedError error
	}{
		{
			name:      "Successful cancel",
			userID:    1,
			requestID: "wr-1",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-1", 1, gomock.Any()).Return(true, nil)
			},
		},
		{
			name:      "Unknown request",
			userID:    1,
			requestID: "wr-missing",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-missing", 1, gomock.Any()).Return(false, nil)
				w.EXPECT().FindByID(gomock.Any(), "wr-missing").Return(nil, nil)
			},
			expectedError: ErrWithdrawalNotFound,
		},
		{
			name:      "Another user's request looks like not found",
			userID:    1,
			requestID: "wr-2",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-2", 1, gomock.Any()).Return(false, nil)
				w.EXPECT().FindByID(gomock.Any(), "wr-2").Return(&domain.WithdrawalRequest{
					ID: "wr-2", UserID: 2, Status: domain.QueuedWithdrawalStatus,
				}, nil)
			},
			expectedError: ErrWithdrawalNotFound,
		},
		{
			name:      "Processing request is not cancelable",
			userID:    1,
			requestID: "wr-3",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-3", 1, gomock.Any()).Return(false, nil)
				w.EXPECT().FindByID(gomock.Any(), "wr-3").Return(&domain.WithdrawalRequest{
					ID: "wr-3", UserID: 1, Status: domain.ProcessingWithdrawalStatus,
				}, nil)
			},
			expectedError: &NotCancelableError{Status: domain.ProcessingWithdrawalStatus},
		},
		{
			name:      "Paid request is not cancelable",
			userID:    1,
			requestID: "wr-4",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-4", 1, gomock.Any()).Return(false, nil)
				w.EXPECT().FindByID(gomock.Any(), "wr-4").Return(&domain.WithdrawalRequest{
					ID: "wr-4", UserID: 1, Status: domain.PaidWithdrawalStatus,
				}, nil)
			},
			expectedError: &NotCancelableError{Status: domain.PaidWithdrawalStatus},
		},
		{
			name:      "Cancel error propagates",
			userID:    1,
			requestID: "wr-5",
			prepareMock: func(w *MockWithdrawalRepo) {
				w.EXPECT().Cancel(gomock.Any(), "wr-5", 1, gomock.Any()).Return(false, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, withdrawalRepo, _, _, _ := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(withdrawalRepo)
			}

			err := service.CancelWithdrawal(context.Background(), tt.userID, tt.requestID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetWithdrawals(t *testing.T) {
	service, withdrawalRepo, _, _, _ := NewMock(t)
	tests := []struct {
		name          string
		userID        int
		prepareMock   func()
		expectedCount int
		expectedError error
	}{
		{
			name:   "Retrieve withdrawal requests successfully",
			userID: 1,
			prepareMock: func() {
				withdrawalRepo.EXPECT().FindByUserID(gomock.Any(), 1).Return([]domain.WithdrawalRequest{
					{ID: "wr-1", UserID: 1, Amount: 5000, Status: domain.PaidWithdrawalStatus},
					{ID: "wr-2", UserID: 1, Amount: 3000, Status: domain.QueuedWithdrawalStatus},
				}, nil)
			},
			expectedCount: 2,
		},
		{
			name:   "Error retrieving withdrawal requests",
			userID: 1,
			prepareMock: func() {
				withdrawalRepo.EXPECT().FindByUserID(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			requests, err := service.GetWithdrawals(context.Background(), tt.userID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Len(t, requests, tt.expectedCount)
			}
		})
	}
}
