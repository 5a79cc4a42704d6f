package billing

import "errors"

var (
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment        = errors.New("invalid billing provider environment")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL               = errors.New("no portal URL returned from provider")
	ErrMissingPriceID            = errors.New("provider price ID is required")
	ErrMissingTenantID           = errors.New("tenant ID is required")
	ErrMissingCustomerID         = errors.New("provider customer ID is required")
	ErrMissingProviderSubID      = errors.New("provider subscription ID is required")
)
