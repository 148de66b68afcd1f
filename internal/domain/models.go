package domain

import "time"

const (
	// PendingOrderStatus заказ создан при открытии checkout-сессии, оплата не подтверждена;
	PendingOrderStatus string = "pending"
	// PaidOrderStatus оплата подтверждена провайдером, сплит рассчитан;
	PaidOrderStatus string = "paid"
	// RefundedOrderStatus возврат всей суммы;
	RefundedOrderStatus string = "refunded"
	// PartiallyRefundedOrderStatus возврат части суммы;
	PartiallyRefundedOrderStatus string = "partially_refunded"
)

const (
	// RequestedWithdrawalStatus transient state while checks run.
	RequestedWithdrawalStatus string = "requested"
	// QueuedWithdrawalStatus eligible, waiting for the next batch run.
	QueuedWithdrawalStatus string = "queued"
	// ProcessingWithdrawalStatus claimed by a batch run, transfer in flight.
	ProcessingWithdrawalStatus string = "processing"
	// PaidWithdrawalStatus transfer succeeded. Terminal.
	PaidWithdrawalStatus string = "paid"
	// FailedWithdrawalStatus transfer errored or eligibility re-check failed. Terminal.
	FailedWithdrawalStatus string = "failed"
	// CanceledWithdrawalStatus canceled by the user while still queued. Terminal.
	CanceledWithdrawalStatus string = "canceled"
)

// NonTerminalWithdrawalStatuses reserve their amount in balance computations.
var NonTerminalWithdrawalStatuses = []string{
	RequestedWithdrawalStatus,
	QueuedWithdrawalStatus,
	ProcessingWithdrawalStatus,
}

type User struct {
	ID                    int       `db:"id"`
	Email                 string    `db:"email"`
	DisplayName           string    `db:"display_name"`
	ProviderAccountID     string    `db:"provider_account_id"`
	CustomerID            string    `db:"customer_id"`
	PayoutsEnabled        bool      `db:"payouts_enabled"`
	BankAccountRegistered bool      `db:"bank_account_registered"`
	IdentitySubmitted     bool      `db:"identity_submitted"`
	Member                bool      `db:"member"`
	CreatedAt             time.Time `db:"created_at"`
}

type Order struct {
	ID              string     `db:"id"`
	BuyerID         *int       `db:"buyer_id"`
	ArticleID       string     `db:"article_id"`
	AuthorID        int        `db:"author_id"`
	ReferrerID      *int       `db:"referrer_id"`
	AffiliateOn     bool       `db:"affiliate_enabled"`
	AffiliateRate   int        `db:"affiliate_rate"`
	Amount          int64      `db:"amount"`
	Status          string     `db:"status"`
	PlatformFee     int64      `db:"platform_fee"`
	AuthorAmount    int64      `db:"author_amount"`
	AffiliateAmount int64      `db:"affiliate_amount"`
	PaymentIntentID string     `db:"payment_intent_id"`
	WithdrawalID    *string    `db:"withdrawal_id"`
	CreatedAt       time.Time  `db:"created_at"`
	PaidAt          *time.Time `db:"paid_at"`
	RefundedAt      *time.Time `db:"refunded_at"`
}

type WithdrawalRequest struct {
	ID                  string     `db:"id"`
	UserID              int        `db:"user_id"`
	Amount              int64      `db:"amount"`
	Status              string     `db:"status"`
	FailureReason       *string    `db:"failure_reason"`
	TransferID          *string    `db:"transfer_id"`
	TargetYear          int        `db:"target_year"`
	TargetMonth         int        `db:"target_month"`
	RequestedAt         time.Time  `db:"requested_at"`
	QueuedAt            *time.Time `db:"queued_at"`
	ProcessingStartedAt *time.Time `db:"processing_started_at"`
	ProcessedAt         *time.Time `db:"processed_at"`
	CanceledAt          *time.Time `db:"canceled_at"`
}

// Balance is derived from the order and withdrawal history, never stored.
type Balance struct {
	AuthorAmount            int64
	AffiliateAmount         int64
	PendingWithdrawalAmount int64
	WithdrawableAmount      int64
}

// PayoutAccountStatus is the payment provider's view of a user's payout
// account. Local user flags are a cache of this; eligibility decisions
// re-read it from the provider.
type PayoutAccountStatus struct {
	AccountID             string
	PayoutsEnabled        bool
	ChargesEnabled        bool
	CurrentlyDue          []string
	PastDue               []string
	HasExternalAccount    bool
	BankAccountRegistered bool
	IdentitySubmitted     bool
}

type WebhookEvent struct {
	ID              int       `db:"id"`
	ProviderEventID string    `db:"provider_event_id"`
	EventType       string    `db:"event_type"`
	ReceivedAt      time.Time `db:"received_at"`
}
