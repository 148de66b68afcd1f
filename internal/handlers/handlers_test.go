package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/selivanovm/creatorpay/docs"
	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/handlers/balance"
	"github.com/selivanovm/creatorpay/internal/handlers/orders"
	settlementhandlers "github.com/selivanovm/creatorpay/internal/handlers/settlement"
	"github.com/selivanovm/creatorpay/internal/handlers/webhook"
	"github.com/selivanovm/creatorpay/internal/handlers/withdrawals"
	"github.com/selivanovm/creatorpay/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{
		WebhookSecret:   "whsec_test",
		OperatorKeyHash: "$2a$10$fake",
	}
	services := &service.Services{
		BalanceService:   balance.NewMockService(ctrl),
		OrderService:     orders.NewMockService(ctrl),
		PayoutService:    withdrawals.NewMockService(ctrl),
		ReconcileService: webhook.NewMockService(ctrl),
	}

	h := New(cfg, services, settlementhandlers.NewMockService(ctrl))
	assert.NotNil(t, h, "Handlers should not be nil")
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBalanceHandler := NewMockBalanceHandler(ctrl)
	mockOrderHandler := NewMockOrderHandler(ctrl)
	mockWithdrawalHandler := NewMockWithdrawalHandler(ctrl)
	mockWebhookHandler := NewMockWebhookHandler(ctrl)
	mockSettlementHandler := NewMockSettlementHandler(ctrl)

	mockBalanceHandler.EXPECT().GetBalance(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().GetOrders(gomock.Any(), gomock.Any()).AnyTimes()
	mockWithdrawalHandler.EXPECT().Create(gomock.Any(), gomock.Any()).AnyTimes()
	mockWithdrawalHandler.EXPECT().List(gomock.Any(), gomock.Any()).AnyTimes()
	mockWithdrawalHandler.EXPECT().Cancel(gomock.Any(), gomock.Any()).AnyTimes()
	mockWebhookHandler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).AnyTimes()
	mockSettlementHandler.EXPECT().Run(gomock.Any(), gomock.Any()).AnyTimes()

	h := &Handlers{
		BalanceHandler:    mockBalanceHandler,
		OrderHandler:      mockOrderHandler,
		WithdrawalHandler: mockWithdrawalHandler,
		WebhookHandler:    mockWebhookHandler,
		SettlementHandler: mockSettlementHandler,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	tests := []struct {
		method string
		url    string
		status int
	}{
		{"POST", "/api/webhooks/payment", http.StatusOK},
		{"GET", "/api/user/balance", http.StatusUnauthorized},
		{"POST", "/api/user/orders", http.StatusUnauthorized},
		{"GET", "/api/user/orders", http.StatusUnauthorized},
		{"POST", "/api/user/withdrawals", http.StatusUnauthorized},
		{"GET", "/api/user/withdrawals", http.StatusUnauthorized},
		{"POST", "/api/user/withdrawals/wr-1/cancel", http.StatusUnauthorized},
		{"POST", "/api/operator/settlements/run", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
