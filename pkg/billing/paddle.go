package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/envioexpress/platform/pkg/clock"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// linkValidity is how long checkout and portal links are advertised as
// usable before the caller should request a fresh one.
const linkValidity = 24 * time.Hour

// PaddleProvider implements Provider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
	clock    clock.Clock
}

// PaddleOption configures the provider.
type PaddleOption func(*PaddleProvider)

// WithClock overrides the clock used to stamp link expiries.
func WithClock(clk clock.Clock) PaddleOption {
	return func(p *PaddleProvider) {
		if clk != nil {
			p.clock = clk
		}
	}
}

// NewPaddleProvider creates a Paddle-backed billing provider.
func NewPaddleProvider(cfg PaddleConfig, opts ...PaddleOption) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	p := &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
		clock:    clock.System(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CreateCheckoutLink opens a hosted Paddle checkout for the plan's price.
// Tenant and plan identifiers ride in custom_data so the checkout-completed
// webhook can be reconciled back onto the right subscription row.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}
	if req.TenantID == "" {
		return nil, ErrMissingTenantID
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"tenant_id": req.TenantID,
			"plan_id":   req.PlanID,
		},
	}
	if req.Email != "" {
		txReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		txReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if tx.Checkout == nil || tx.Checkout.URL == nil {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *tx.Checkout.URL,
		SessionID: tx.ID,
		ExpiresAt: p.clock.Now().Add(linkValidity),
	}, nil
}

// CustomerPortalLink returns a Paddle customer portal session scoped to the
// given subscription.
func (p *PaddleProvider) CustomerPortalLink(ctx context.Context, customerID, providerSubID string) (*PortalLink, error) {
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	if providerSubID == "" {
		return nil, ErrMissingProviderSubID
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID:      customerID,
		SubscriptionIDs: []string{providerSubID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle customer portal session: %w", err)
	}

	link := &PortalLink{
		URL:       session.URLs.General.Overview,
		ExpiresAt: p.clock.Now().Add(linkValidity),
	}
	for _, subURL := range session.URLs.Subscriptions {
		if subURL.ID == providerSubID && subURL.CancelSubscription != "" {
			link.CancelURL = subURL.CancelSubscription
			break
		}
	}

	if link.URL == "" {
		return nil, ErrNoPortalURL
	}
	return link, nil
}

// ParseWebhook verifies the Paddle signature and normalizes the payload.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	// The Paddle verifier operates on an http.Request, so rebuild one
	// around the raw payload.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var raw struct {
		EventID   string         `json:"event_id"`
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := &Event{
		Type:          mapPaddleEventType(raw.EventType),
		ProviderEvent: raw.EventType,
		Raw:           raw.Data,
	}

	if status, ok := raw.Data["status"].(string); ok {
		event.Status = status
	}
	if customData, ok := raw.Data["custom_data"].(map[string]any); ok {
		if v, ok := customData["tenant_id"].(string); ok {
			event.TenantID = v
		}
		if v, ok := customData["plan_id"].(string); ok {
			event.PlanID = v
		}
	}
	if v, ok := raw.Data["customer_id"].(string); ok {
		event.CustomerID = v
	}

	switch {
	case strings.HasPrefix(raw.EventType, "subscription."):
		if id, ok := raw.Data["id"].(string); ok {
			event.ProviderSubID = id
		}
	case strings.HasPrefix(raw.EventType, "transaction."):
		// Transactions carry the subscription they belong to, when any.
		if id, ok := raw.Data["subscription_id"].(string); ok {
			event.ProviderSubID = id
		}
	}

	return event, nil
}

// mapPaddleEventType normalizes Paddle event names onto the three lifecycle
// kinds the reconciler consumes. Unmapped events pass through under their
// provider name and are ignored downstream.
func mapPaddleEventType(providerEvent string) EventType {
	switch providerEvent {
	case "transaction.completed":
		return EventCheckoutCompleted
	case "subscription.created", "subscription.updated", "subscription.resumed", "subscription.paused", "subscription.past_due":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionDeleted
	default:
		return EventType(providerEvent)
	}
}
