package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/internal/dto"
	settlementservice "github.com/selivanovm/creatorpay/internal/settlement"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*SettlementHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestRunHandler(t *testing.T) {
	handler, service := NewMock(t)

	summary := &settlementservice.Summary{
		Processed:        1,
		Failed:           1,
		Skipped:          1,
		TotalTransferred: 5000,
		Items: []settlementservice.ItemResult{
			{RequestID: "wr-1", UserID: 1, Amount: 5000, Status: domain.PaidWithdrawalStatus},
			{RequestID: "wr-2", UserID: 2, Amount: 3000, Status: domain.FailedWithdrawalStatus, Reason: "payouts disabled"},
			{RequestID: "wr-3", UserID: 3, Amount: 2000, Status: domain.ProcessingWithdrawalStatus, Reason: "transfer outcome unknown"},
		},
	}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Batch executed",
			body: `{"year":2026,"month":8}`,
			prepareMock: func() {
				service.EXPECT().
					Run(context.Background(), 2026, 8).
					Return(summary, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Empty body runs without filter",
			body: "",
			prepareMock: func() {
				service.EXPECT().
					Run(context.Background(), 0, 0).
					Return(&settlementservice.Summary{Items: []settlementservice.ItemResult{}}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid request body",
			body:          `{"month":invalid}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Month out of range",
			body:          `{"year":2026,"month":13}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "month must be between 1 and 12",
		},
		{
			name: "Infrastructure error",
			body: `{}`,
			prepareMock: func() {
				service.EXPECT().
					Run(context.Background(), 0, 0).
					Return(nil, errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/settlements/run", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Run(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedCode == http.StatusOK && tt.name == "Batch executed" {
				var body dto.SettlementSummaryDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 1, body.Processed)
				assert.Equal(t, 1, body.Failed)
				assert.Equal(t, 1, body.Skipped)
				assert.Equal(t, int64(5000), body.TotalTransferred)
				assert.Len(t, body.Items, 3)
				assert.Equal(t, "wr-1", body.Items[0].RequestID)
				assert.Equal(t, "payouts disabled", body.Items[1].Reason)
			}
		})
	}
}
