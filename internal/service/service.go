package service

import (
	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/handlers/balance"
	"github.com/selivanovm/creatorpay/internal/handlers/orders"
	"github.com/selivanovm/creatorpay/internal/handlers/webhook"
	"github.com/selivanovm/creatorpay/internal/handlers/withdrawals"
	"github.com/selivanovm/creatorpay/internal/provider"
	"github.com/selivanovm/creatorpay/internal/repo"
	balanceservice "github.com/selivanovm/creatorpay/internal/service/balanceservice"
	orderservice "github.com/selivanovm/creatorpay/internal/service/orderservice"
	payoutservice "github.com/selivanovm/creatorpay/internal/service/payoutservice"
	reconcileservice "github.com/selivanovm/creatorpay/internal/service/reconcileservice"
)

type Services struct {
	BalanceService   balance.Service
	OrderService     orders.Service
	PayoutService    withdrawals.Service
	ReconcileService webhook.Service
}

func New(cfg *config.Config, repo *repo.Repositories, providerClient provider.ClientI) *Services {
	balanceService := balanceservice.New(repo.OrderRepo, repo.WithdrawalRepo)
	orderService := orderservice.New(repo.OrderRepo)
	payoutService := payoutservice.New(cfg, repo.WithdrawalRepo, repo.UserRepo, balanceService, providerClient)
	reconcileService := reconcileservice.New(cfg, repo.OrderRepo, repo.UserRepo, repo.WebhookRepo)

	return &Services{
		BalanceService:   balanceService,
		OrderService:     orderService,
		PayoutService:    payoutService,
		ReconcileService: reconcileService,
	}
}
