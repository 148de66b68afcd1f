package withdrawals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/dto"
	payoutservice "github.com/selivanovm/creatorpay/internal/service/payoutservice"
	"github.com/selivanovm/creatorpay/pkg/auth"
	"github.com/selivanovm/creatorpay/pkg/utils"
)

type Service interface {
	RequestWithdrawal(ctx context.Context, userID int, amount int64) (*domain.WithdrawalRequest, error)
	CancelWithdrawal(ctx context.Context, userID int, id string) error
	GetWithdrawals(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error)
}

type WithdrawalHandler struct {
	payoutService Service
}

func New(payoutService Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		payoutService: payoutService,
	}
}

// Create godoc
//
//	@Summary		Request a withdrawal
//	@Description	Create a withdrawal request for part of the withdrawable balance. Eligibility is re-checked against the payment provider at creation time.
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateWithdrawalRequestDTO	true	"Withdrawal request payload"
//	@Success		201		{object}	dto.WithdrawalResponseDTO		"Withdrawal request queued"
//	@Failure		400		{object}	utils.Response					"Invalid request body"
//	@Failure		401		{object}	utils.Response					"User not authorized"
//	@Failure		422		{object}	dto.EligibilityErrorDTO			"Not eligible, with reason code"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/user/withdrawals [post]
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreateWithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	wr, err := h.payoutService.RequestWithdrawal(r.Context(), userID, req.Amount)
	if err != nil {
		respondEligibilityError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponseDTO(wr))
}

// Cancel godoc
//
//	@Summary		Cancel a queued withdrawal
//	@Description	Cancel a withdrawal request that has not yet been claimed by a settlement run. The reserved amount returns to the withdrawable balance.
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string			true	"Withdrawal request id"
//	@Success		200	{object}	utils.Response	"Withdrawal canceled"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Withdrawal not found"
//	@Failure		409	{object}	utils.Response	"Withdrawal no longer cancelable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/withdrawals/{id}/cancel [post]
func (h *WithdrawalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	id := chi.URLParam(r, "id")

	err := h.payoutService.CancelWithdrawal(r.Context(), userID, id)
	if err != nil {
		var notCancelable *payoutservice.NotCancelableError
		switch {
		case errors.Is(err, payoutservice.ErrWithdrawalNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &notCancelable):
			utils.RespondWithError(w, http.StatusConflict, notCancelable.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "withdrawal canceled"})
}

// List godoc
//
//	@Summary		Get withdrawals history
//	@Description	Get the withdrawal request history for the authenticated user, newest first.
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawalResponseDTO	"Withdrawals history"
//	@Success		204	{object}	utils.Response				"No withdrawals found"
//	@Failure		401	{object}	utils.Response				"User not authorized"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/user/withdrawals [get]
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	requests, err := h.payoutService.GetWithdrawals(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch withdrawals")
		return
	}

	if len(requests) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "Withdrawals not found")
		return
	}

	response := make([]dto.WithdrawalResponseDTO, len(requests))
	for i, wr := range requests {
		wr := wr
		response[i] = toResponseDTO(&wr)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toResponseDTO(wr *domain.WithdrawalRequest) dto.WithdrawalResponseDTO {
	resp := dto.WithdrawalResponseDTO{
		ID:          wr.ID,
		Amount:      wr.Amount,
		Status:      wr.Status,
		RequestedAt: wr.RequestedAt,
		ProcessedAt: wr.ProcessedAt,
	}
	if wr.FailureReason != nil {
		resp.FailureReason = *wr.FailureReason
	}
	return resp
}

func respondEligibilityError(w http.ResponseWriter, err error) {
	var notEnabled *payoutservice.PayoutsNotEnabledError
	switch {
	case errors.Is(err, payoutservice.ErrNoExternalAccount):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, dto.EligibilityErrorDTO{
			Code:    "no_external_account",
			Message: "Connect a payout account before requesting a withdrawal",
		})
	case errors.As(err, &notEnabled):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, dto.EligibilityErrorDTO{
			Code:         "payouts_not_enabled",
			Message:      "Your payout account has outstanding verification requirements",
			Requirements: notEnabled.Requirements,
			PastDue:      notEnabled.PastDue,
		})
	case errors.Is(err, payoutservice.ErrBelowMinimum):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, dto.EligibilityErrorDTO{
			Code:    "below_minimum",
			Message: "Requested amount is below the platform minimum",
		})
	case errors.Is(err, payoutservice.ErrInsufficientBalance):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, dto.EligibilityErrorDTO{
			Code:    "insufficient_balance",
			Message: "Requested amount exceeds the withdrawable balance",
		})
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
