package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/dto"
	orderservice "github.com/selivanovm/creatorpay/internal/service/orderservice"
	"github.com/selivanovm/creatorpay/pkg/auth"
	"github.com/selivanovm/creatorpay/pkg/utils"
)

type Service interface {
	CreateOrder(ctx context.Context, p orderservice.CreateOrderParams) (*domain.Order, error)
	GetOrders(ctx context.Context, authorID int) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder godoc
//
//	@Summary		Record a pending sale
//	@Description	Record a pending order at checkout-session creation time. Called by the checkout surface with the provider payment intent id.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateOrderRequestDTO	true	"Order payload"
//	@Success		202		{object}	dto.GetOrdersResponseDTO	"Order accepted"
//	@Failure		400		{object}	utils.Response				"Invalid order parameters"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		409		{object}	utils.Response				"Order already exists for payment intent"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/user/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), orderservice.CreateOrderParams{
		BuyerID:         req.BuyerID,
		ArticleID:       req.ArticleID,
		AuthorID:        req.AuthorID,
		ReferrerID:      req.ReferrerID,
		AffiliateOn:     req.AffiliateOn,
		AffiliateRate:   req.AffiliateRate,
		Amount:          req.Amount,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, orderservice.ErrInvalidOrder):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, orderservice.ErrOrderAlreadyExists):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, toResponseDTO(order))
}

// GetOrders godoc
//
//	@Summary		Get sales list for author
//	@Description	Retrieve the authenticated user's sales, newest first.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.GetOrdersResponseDTO
//	@Failure		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	orders, err := h.orderService.GetOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(orders) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	var response []dto.GetOrdersResponseDTO
	for _, order := range orders {
		response = append(response, toResponseDTO(&order))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toResponseDTO(order *domain.Order) dto.GetOrdersResponseDTO {
	return dto.GetOrdersResponseDTO{
		ID:              order.ID,
		ArticleID:       order.ArticleID,
		Amount:          order.Amount,
		Status:          order.Status,
		AuthorAmount:    order.AuthorAmount,
		AffiliateAmount: order.AffiliateAmount,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
}
