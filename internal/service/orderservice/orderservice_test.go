package orderservice

import (
	"context"
	"errors"
	"testing"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	service := New(repo)
	defer ctrl.Finish()
	return service, repo
}

func TestCreateOrder(t *testing.T) {
	service, repo := NewMock(t)

	valid := CreateOrderParams{
		ArticleID:       "article-1",
		AuthorID:        10,
		Amount:          1000,
		PaymentIntentID: "pi_123",
		AffiliateOn:     true,
		AffiliateRate:   20,
	}

	tests := []struct {
		name          string
		params        CreateOrderParams
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Successful order creation",
			params: valid,
			prepareMock: func() {
				repo.EXPECT().FindByPaymentIntentID(gomock.Any(), "pi_123").Return(nil, nil)
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "Non-positive amount rejected",
			params: CreateOrderParams{
				ArticleID: "article-1", AuthorID: 10, Amount: 0, PaymentIntentID: "pi_123",
			},
			expectedError: ErrInvalidOrder,
		},
		{
			name: "Missing payment intent rejected",
			params: CreateOrderParams{
				ArticleID: "article-1", AuthorID: 10, Amount: 1000,
			},
			expectedError: ErrInvalidOrder,
		},
		{
			name: "Affiliate rate above maximum rejected",
			params: CreateOrderParams{
				ArticleID: "article-1", AuthorID: 10, Amount: 1000, PaymentIntentID: "pi_123",
				AffiliateRate: 55,
			},
			expectedError: ErrInvalidOrder,
		},
		{
			name: "Affiliate rate off step rejected",
			params: CreateOrderParams{
				ArticleID: "article-1", AuthorID: 10, Amount: 1000, PaymentIntentID: "pi_123",
				AffiliateRate: 13,
			},
			expectedError: ErrInvalidOrder,
		},
		{
			name:   "Duplicate payment intent rejected",
			params: valid,
			prepareMock: func() {
				repo.EXPECT().FindByPaymentIntentID(gomock.Any(), "pi_123").Return(&domain.Order{ID: "existing"}, nil)
			},
			expectedError: ErrOrderAlreadyExists,
		},
		{
			name:   "Error looking up payment intent",
			params: valid,
			prepareMock: func() {
				repo.EXPECT().FindByPaymentIntentID(gomock.Any(), "pi_123").Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
		{
			name:   "Error saving order",
			params: valid,
			prepareMock: func() {
				repo.EXPECT().FindByPaymentIntentID(gomock.Any(), "pi_123").Return(nil, nil)
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			order, err := service.CreateOrder(context.Background(), tt.params)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, order.ID)
				assert.Equal(t, domain.PendingOrderStatus, order.Status)
				assert.Equal(t, tt.params.AffiliateRate, order.AffiliateRate)
			}
		})
	}
}

func TestGetOrders(t *testing.T) {
	service, repo := NewMock(t)
	tests := []struct {
		name           string
		authorID       int
		prepareMock    func()
		expectedOrders []domain.Order
		expectedError  error
	}{
		{
			name:     "Retrieve orders successfully",
			authorID: 10,
			prepareMock: func() {
				repo.EXPECT().FindOrdersByAuthor(gomock.Any(), 10).Return([]domain.Order{
					{ID: "order-1", AuthorID: 10, Amount: 1000, Status: domain.PaidOrderStatus},
				}, nil)
			},
			expectedOrders: []domain.Order{
				{ID: "order-1", AuthorID: 10, Amount: 1000, Status: domain.PaidOrderStatus},
			},
			expectedError: nil,
		},
		{
			name:     "Error retrieving orders",
			authorID: 10,
			prepareMock: func() {
				repo.EXPECT().FindOrdersByAuthor(gomock.Any(), 10).Return(nil, errors.New("db error"))
			},
			expectedOrders: nil,
			expectedError:  errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			orders, err := service.GetOrders(context.Background(), tt.authorID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOrders, orders)
			}
		})
	}
}
