package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StripeProvider implements PaymentProvider on Stripe Checkout.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

// ProductName is the display name of a plan on the checkout page.
func ProductName(plan string) string {
	return cases.Title(language.English).String(plan) + " Plan"
}

// CreateCheckout opens a monthly subscription checkout session and returns its URL.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(ProductName(req.Plan)),
					},
					UnitAmount: stripe.Int64(req.PriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		CustomerEmail:     stripe.String(req.Email),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": req.UserID},
		},
	}
	params.Context = ctx
	params.AddMetadata("plan", req.Plan)
	params.AddMetadata("userId", req.UserID)

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	return session.URL, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (p *StripeProvider) ParseEvent(payload []byte, signature string) (*Event, error) {
	raw, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	return decodeEvent(string(raw.Type), raw.Data.Raw)
}

func decodeEvent(eventType string, data json.RawMessage) (*Event, error) {
	event := &Event{Type: eventType}
	switch eventType {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		event.UserID = session.ClientReferenceID
		event.Plan = session.Metadata["plan"]
	case EventSubscriptionDeleted, EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(data, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		event.UserID = sub.Metadata["userId"]
		event.Active = sub.Status == stripe.SubscriptionStatusActive
		if sub.CancelAt > 0 {
			at := time.Unix(sub.CancelAt, 0).UTC()
			event.CancelAt = &at
		}
	}
	return event, nil
}
