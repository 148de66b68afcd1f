package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/selivanovm/creatorpay/docs"
	"github.com/selivanovm/creatorpay/internal/config"
	balancehandlers "github.com/selivanovm/creatorpay/internal/handlers/balance"
	ordershandlers "github.com/selivanovm/creatorpay/internal/handlers/orders"
	settlementhandlers "github.com/selivanovm/creatorpay/internal/handlers/settlement"
	webhookhandlers "github.com/selivanovm/creatorpay/internal/handlers/webhook"
	withdrawalhandlers "github.com/selivanovm/creatorpay/internal/handlers/withdrawals"
	"github.com/selivanovm/creatorpay/internal/service"
	"github.com/selivanovm/creatorpay/pkg/auth"
)

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	HandleEvent(w http.ResponseWriter, r *http.Request)
}

type SettlementHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	BalanceHandler    BalanceHandler
	OrderHandler      OrderHandler
	WithdrawalHandler WithdrawalHandler
	WebhookHandler    WebhookHandler
	SettlementHandler SettlementHandler

	operatorKeyHash string
}

func New(cfg *config.Config, s *service.Services, settlementService settlementhandlers.Service) *Handlers {
	return &Handlers{
		BalanceHandler:    balancehandlers.New(s.BalanceService),
		OrderHandler:      ordershandlers.New(s.OrderService),
		WithdrawalHandler: withdrawalhandlers.New(s.PayoutService),
		WebhookHandler:    webhookhandlers.New(s.ReconcileService, cfg.WebhookSecret),
		SettlementHandler: settlementhandlers.New(settlementService),

		operatorKeyHash: cfg.OperatorKeyHash,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Post("/api/webhooks/payment", h.WebhookHandler.HandleEvent)

	r.Route("/api/user", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Get("/balance", h.BalanceHandler.GetBalance)
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.OrderHandler.CreateOrder)
			r.Get("/", h.OrderHandler.GetOrders)
		})
		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", h.WithdrawalHandler.Create)
			r.Get("/", h.WithdrawalHandler.List)
			r.Post("/{id}/cancel", h.WithdrawalHandler.Cancel)
		})
	})

	r.Route("/api/operator", func(r chi.Router) {
		r.Use(auth.OperatorMiddleware(h.operatorKeyHash))
		r.Post("/settlements/run", h.SettlementHandler.Run)
	})

	return r
}
