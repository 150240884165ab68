package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Intent is the subset of a Stripe PaymentIntent the platform cares about.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

// CreatePaymentIntent creates a PaymentIntent for the given amount in minor units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("stripe client not initialized")
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	currency = strings.TrimSpace(strings.ToLower(currency))
	if currency == "" {
		return nil, errors.New("currency is required")
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// VerifyWebhook validates a webhook payload signature and returns the parsed event.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if c == nil {
		return stripe.Event{}, errors.New("stripe client not initialized")
	}
	return webhook.ConstructEvent(payload, sigHeader, c.signingSecret)
}
