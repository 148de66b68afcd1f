package userrepo

import (
	"context"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/pg"
	"github.com/jackc/pgx/v5"
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

const userColumns = `id, email, display_name, provider_account_id, customer_id, payouts_enabled, bank_account_registered, identity_submitted, member, created_at`

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.ProviderAccountID, &user.CustomerID,
		&user.PayoutsEnabled, &user.BankAccountRegistered, &user.IdentitySubmitted,
		&user.Member, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// UpdatePayoutFlags refreshes the cached provider account state.
func (repo *Repository) UpdatePayoutFlags(ctx context.Context, userID int, status *domain.PayoutAccountStatus) error {
	query := `
		UPDATE users
		SET payouts_enabled = $1, bank_account_registered = $2, identity_submitted = $3
		WHERE id = $4
	`
	_, err := repo.db.Exec(ctx, query,
		status.PayoutsEnabled, status.BankAccountRegistered, status.IdentitySubmitted, userID,
	)
	if err != nil {
		zap.L().Error("can't update payout flags", zap.Error(err))
		return err
	}
	return nil
}

// UpdateMemberByCustomerID flips the membership flag for the user owning
// the given provider customer id. Returns false when no user matches.
func (repo *Repository) UpdateMemberByCustomerID(ctx context.Context, customerID string, member bool) (bool, error) {
	query := `
		UPDATE users
		SET member = $1
		WHERE customer_id = $2
	`
	tag, err := repo.db.Exec(ctx, query, member, customerID)
	if err != nil {
		zap.L().Error("can't update membership", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
