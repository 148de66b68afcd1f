package dto

import "time"

type BalanceResponseDTO struct {
	AuthorAmount      int64 `json:"author_amount" example:"68000"`
	AffiliateAmount   int64 `json:"affiliate_amount" example:"1700"`
	PendingWithdrawal int64 `json:"pending_withdrawal_amount" example:"3000"`
	Withdrawable      int64 `json:"withdrawable_amount" example:"66700"`
}

type CreateWithdrawalRequestDTO struct {
	Amount int64 `json:"amount" validate:"required,gt=0" example:"5000"`
}

type WithdrawalResponseDTO struct {
	ID            string     `json:"id" example:"8f7f4b1a-0a01-4a8e-9a52-0c1b3a1f2e3d"`
	Amount        int64      `json:"amount" example:"5000"`
	Status        string     `json:"status" example:"queued"`
	FailureReason string     `json:"failure_reason,omitempty"`
	RequestedAt   time.Time  `json:"requested_at" example:"2026-08-09T16:09:57+03:00"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// EligibilityErrorDTO carries the reason code a withdrawal was rejected
// with and, for provider-side rejections, the outstanding requirements.
type EligibilityErrorDTO struct {
	Code         string   `json:"code" example:"payouts_not_enabled"`
	Message      string   `json:"message"`
	Requirements []string `json:"requirements,omitempty"`
	PastDue      bool     `json:"past_due,omitempty"`
}
