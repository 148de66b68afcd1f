package balance

import (
	"context"
	"net/http"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/dto"
	"github.com/selivanovm/creatorpay/pkg/auth"
	"github.com/selivanovm/creatorpay/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Description	Retrieve the author and affiliate earnings, the amount reserved by pending withdrawals and the resulting withdrawable amount.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current earnings balance"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		AuthorAmount:      balance.AuthorAmount,
		AffiliateAmount:   balance.AffiliateAmount,
		PendingWithdrawal: balance.PendingWithdrawalAmount,
		Withdrawable:      balance.WithdrawableAmount,
	})
}
