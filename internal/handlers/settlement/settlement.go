package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/selivanovm/creatorpay/internal/dto"
	settlementservice "github.com/selivanovm/creatorpay/internal/settlement"
	"github.com/selivanovm/creatorpay/pkg/utils"
)

type Service interface {
	Run(ctx context.Context, year, month int) (*settlementservice.Summary, error)
}

type SettlementHandler struct {
	settlementService Service
}

func New(settlementService Service) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// Run godoc
//
//	@Summary		Trigger a settlement batch run
//	@Description	Drain queued withdrawal requests through the payment provider. Returns the batch summary even on partial failure: per-item failures are data, not transport errors.
//	@Tags			Settlements
//	@Security		ApiKeyAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RunSettlementRequestDTO	false	"Optional batch grouping filter"
//	@Success		200		{object}	dto.SettlementSummaryDTO	"Batch summary"
//	@Failure		400		{object}	utils.Response				"Invalid request body"
//	@Failure		401		{object}	utils.Response				"Missing or invalid operator credential"
//	@Failure		500		{object}	utils.Response				"Infrastructure error before processing began"
//	@Router			/api/operator/settlements/run [post]
func (h *SettlementHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunSettlementRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Month < 0 || req.Month > 12 {
		utils.RespondWithError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	summary, err := h.settlementService.Run(r.Context(), req.Year, req.Month)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := dto.SettlementSummaryDTO{
		Processed:        summary.Processed,
		Failed:           summary.Failed,
		Skipped:          summary.Skipped,
		TotalTransferred: summary.TotalTransferred,
		Items:            make([]dto.SettlementItemDTO, 0, len(summary.Items)),
	}
	for _, item := range summary.Items {
		resp.Items = append(resp.Items, dto.SettlementItemDTO{
			RequestID: item.RequestID,
			UserID:    item.UserID,
			Amount:    item.Amount,
			Status:    item.Status,
			Reason:    item.Reason,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
