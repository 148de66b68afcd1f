package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/selivanovm/creatorpay/internal/provider"
	"github.com/selivanovm/creatorpay/pkg/utils"
	"go.uber.org/zap"
)

type Service interface {
	Apply(ctx context.Context, event *provider.Event) error
}

type WebhookHandler struct {
	reconcileService Service
	signingSecret    string
}

func New(reconcileService Service, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		reconcileService: reconcileService,
		signingSecret:    signingSecret,
	}
}

// HandleEvent godoc
//
//	@Summary		Receive payment provider events
//	@Description	Apply a signed provider webhook event (payment completed, charge refunded, subscription changed) to local state. Duplicate deliveries are acknowledged without effect.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Webhook-Signature	header		string			true	"Provider signature header"
//	@Success		200					{object}	utils.Response	"Event applied or acknowledged as duplicate"
//	@Failure		400					{object}	utils.Response	"Unverifiable signature or malformed event"
//	@Failure		500					{object}	utils.Response	"Internal server error"
//	@Router			/api/webhooks/payment [post]
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// Verification precedes any state mutation. An unverifiable event is
	// rejected with no side effects.
	event, err := provider.VerifySignature(body, r.Header.Get("Webhook-Signature"), h.signingSecret)
	if err != nil {
		if errors.Is(err, provider.ErrBadSignature) {
			zap.L().Warn("webhook with bad signature rejected")
			utils.RespondWithError(w, http.StatusBadRequest, "signature verification failed")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "malformed event")
		return
	}

	if err := h.reconcileService.Apply(r.Context(), event); err != nil {
		zap.L().Error("failed to apply webhook event",
			zap.String("event_id", event.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "ok"})
}
