package dto

type RunSettlementRequestDTO struct {
	Year  int `json:"year,omitempty" example:"2026"`
	Month int `json:"month,omitempty" example:"8"`
}

type SettlementItemDTO struct {
	RequestID string `json:"request_id"`
	UserID    int    `json:"user_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status" example:"paid"`
	Reason    string `json:"reason,omitempty"`
}

type SettlementSummaryDTO struct {
	Processed        int                 `json:"processed"`
	Failed           int                 `json:"failed"`
	Skipped          int                 `json:"skipped"`
	TotalTransferred int64               `json:"total_transferred"`
	Items            []SettlementItemDTO `json:"items"`
}
