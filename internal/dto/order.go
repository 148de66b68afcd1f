package dto

type CreateOrderRequestDTO struct {
	ArticleID       string `json:"article_id" validate:"required"`
	AuthorID        int    `json:"author_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	BuyerID         *int   `json:"buyer_id,omitempty"`
	ReferrerID      *int   `json:"referrer_id,omitempty"`
	AffiliateOn     bool   `json:"affiliate_enabled"`
	AffiliateRate   int    `json:"affiliate_rate"`
}

type GetOrdersResponseDTO struct {
	ID              string `json:"id"`
	ArticleID       string `json:"article_id"`
	Amount          int64  `json:"amount" example:"1000"`
	Status          string `json:"status" example:"paid"`
	AuthorAmount    int64  `json:"author_amount" example:"680"`
	AffiliateAmount int64  `json:"affiliate_amount" example:"170"`
	CreatedAt       string `json:"created_at" example:"2026-08-09T16:09:57+03:00"`
}
