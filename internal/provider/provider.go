// Package provider wraps the hosted payment platform's HTTP API: money
// transfers to creator accounts, payout-account status reads and webhook
// signature verification.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/selivanovm/creatorpay/internal/config"
	"github.com/selivanovm/creatorpay/internal/domain"
	"github.com/selivanovm/creatorpay/pkg/clients"
	"go.uber.org/zap"
)

var (
	ErrBadSignature = errors.New("webhook signature verification failed")
	// ErrTimeout marks a call whose outcome on the provider side is unknown.
	// Callers must not treat it as a definite failure.
	ErrTimeout = errors.New("provider call timed out, outcome unknown")
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventChargeRefunded      = "charge.refunded"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	PaymentIntentID    string `json:"payment_intent_id"`
	Amount             int64  `json:"amount"`
	AmountRefunded     int64  `json:"amount_refunded"`
	CustomerAccountID  string `json:"customer_account_id"`
	SubscriptionStatus string `json:"subscription_status"`
}

type ClientI interface {
	CreateTransfer(ctx context.Context, destination string, amount int64, currency string, idempotencyKey string, metadata map[string]string) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (*domain.PayoutAccountStatus, error)
}

type Client struct {
	url    string
	secret string
	client clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:    cfg.ProviderAddress,
		secret: cfg.ProviderSecret,
		client: client,
	}
}

type transferResponse struct {
	ID string `json:"id"`
}

type accountResponse struct {
	ID                    string   `json:"id"`
	PayoutsEnabled        bool     `json:"payouts_enabled"`
	ChargesEnabled        bool     `json:"charges_enabled"`
	CurrentlyDue          []string `json:"currently_due"`
	PastDue               []string `json:"past_due"`
	ExternalAccounts      int      `json:"external_accounts"`
	BankAccountRegistered bool     `json:"bank_account_registered"`
	IdentitySubmitted     bool     `json:"identity_submitted"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// CreateTransfer issues a transfer to a creator's connected account. The
// idempotency key makes re-submitting the same withdrawal request collapse
// into a single transfer on the provider side.
func (c *Client) CreateTransfer(ctx context.Context, destination string, amount int64, currency string, idempotencyKey string, metadata map[string]string) (string, error) {
	form := url.Values{}
	form.Set("destination", destination)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.secret)
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Idempotency-Key", idempotencyKey)

	statusCode, respBody, err := c.client.Post(c.url+"/v1/transfers", headers, strings.NewReader(form.Encode()))
	if err != nil {
		if isTimeout(err) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("transfer call failed: %w", err)
	}

	if statusCode != http.StatusOK {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Message != "" {
			return "", fmt.Errorf("transfer rejected: %s", errResp.Message)
		}
		return "", fmt.Errorf("transfer rejected with status %d", statusCode)
	}

	var resp transferResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse transfer response: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("transfer response has no id")
	}
	return resp.ID, nil
}

func (c *Client) GetAccountStatus(ctx context.Context, accountID string) (*domain.PayoutAccountStatus, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.secret)

	statusCode, respBody, _, err := c.client.Get(c.url+"/v1/accounts/"+accountID, headers)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("account status call failed: %w", err)
	}
	if statusCode != http.StatusOK {
		zap.L().Error("unexpected status from account status call",
			zap.Int("status", statusCode), zap.String("accountID", accountID))
		return nil, fmt.Errorf("account status call returned %d", statusCode)
	}

	var resp accountResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse account status response: %w", err)
	}

	return &domain.PayoutAccountStatus{
		AccountID:             resp.ID,
		PayoutsEnabled:        resp.PayoutsEnabled,
		ChargesEnabled:        resp.ChargesEnabled,
		CurrentlyDue:          resp.CurrentlyDue,
		PastDue:               resp.PastDue,
		HasExternalAccount:    resp.ExternalAccounts > 0,
		BankAccountRegistered: resp.BankAccountRegistered,
		IdentitySubmitted:     resp.IdentitySubmitted,
	}, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
