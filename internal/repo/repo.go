package repo

import (
	"github.com/selivanovm/creatorpay/internal/pg"
	orderrepo "github.com/selivanovm/creatorpay/internal/repo/order-repo"
	userrepo "github.com/selivanovm/creatorpay/internal/repo/user-repo"
	webhookrepo "github.com/selivanovm/creatorpay/internal/repo/webhook-repo"
	withdrawalrepo "github.com/selivanovm/creatorpay/internal/repo/withdrawal-repo"
)

type Repositories struct {
	UserRepo       *userrepo.Repository
	OrderRepo      *orderrepo.Repository
	WithdrawalRepo *withdrawalrepo.Repository
	WebhookRepo    *webhookrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn)
	orderRepo := orderrepo.New(conn, txManager)
	withdrawalRepo := withdrawalrepo.New(conn)
	webhookRepo := webhookrepo.New(conn)

	return &Repositories{
		UserRepo:       userRepo,
		OrderRepo:      orderRepo,
		WithdrawalRepo: withdrawalRepo,
		WebhookRepo:    webhookRepo,
	}
}
