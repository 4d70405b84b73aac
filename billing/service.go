package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/store"
)

// Webhook event types the service reacts to.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventSubscriptionUpdated = "customer.subscription.updated"
)

// ErrInvalidWebhook is returned when a webhook payload or signature cannot be verified.
var ErrInvalidWebhook = errors.New("webhook error")

// CheckoutRequest describes a paid plan purchase.
type CheckoutRequest struct {
	UserID     string
	Email      string
	Plan       string
	PriceCents int64
	SuccessURL string
	CancelURL  string
}

// Event is a verified payment provider event reduced to what the
// subscription logic needs.
type Event struct {
	Type     string
	UserID   string
	Plan     string
	Active   bool
	CancelAt *time.Time
}

// PaymentProvider creates checkout sessions and verifies webhooks.
type PaymentProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// SubscriptionStore is the part of the store the billing service writes to.
type SubscriptionStore interface {
	GetSubscription(ctx context.Context, userID string) (*store.Subscription, error)
	UpsertSubscription(ctx context.Context, sub store.Subscription) error
	UpdateSubscriptionStatus(ctx context.Context, userID, status string, endDate *time.Time) error
	CreateNotification(ctx context.Context, userID, kind, title, message string) (*store.Notification, error)
}

// ChangeResult is the outcome of a plan change. PaymentURL is set when
// the user has to complete a checkout first.
type ChangeResult struct {
	Success    bool   `json:"success,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// Service applies plan changes and webhook events to subscriptions.
type Service struct {
	store    SubscriptionStore
	provider PaymentProvider
	baseURL  string
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(s SubscriptionStore, provider PaymentProvider, baseURL string, log *logrus.Logger) *Service {
	return &Service{
		store:    s,
		provider: provider,
		baseURL:  baseURL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ChangePlan switches user to plan. The free plan applies immediately;
// paid plans return a checkout URL and take effect once the provider
// confirms payment.
func (s *Service) ChangePlan(ctx context.Context, user *store.User, plan string) (*ChangeResult, error) {
	plan, err := ParsePlan(plan)
	if err != nil {
		return nil, err
	}

	if plan == store.PlanFree {
		start := s.now()
		if sub, err := s.store.GetSubscription(ctx, user.ID); err == nil {
			start = sub.StartDate
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		err := s.store.UpsertSubscription(ctx, store.Subscription{
			UserID:    user.ID,
			Plan:      store.PlanFree,
			Status:    store.StatusActive,
			StartDate: start,
		})
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "plan": plan}).Info("Plan changed")
		return &ChangeResult{Success: true}, nil
	}

	if s.provider == nil {
		return nil, errors.New("payment provider is not configured")
	}
	url, err := s.provider.CreateCheckout(ctx, CheckoutRequest{
		UserID:     user.ID,
		Email:      user.Email,
		Plan:       plan,
		PriceCents: PlanPrices[plan],
		SuccessURL: s.baseURL + "/dashboard?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/pricing",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "plan": plan}).Info("Checkout session created")
	return &ChangeResult{PaymentURL: url}, nil
}

// HandleWebhook verifies payload and applies the event it carries.
// Events of other types are acknowledged without changes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return errors.New("payment provider is not configured")
	}
	event, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		return err
	}
	entry := s.log.WithFields(logrus.Fields{"event": event.Type, "user_id": event.UserID})

	switch event.Type {
	case EventCheckoutCompleted:
		if event.UserID == "" {
			return fmt.Errorf("%w: checkout session without client reference", ErrInvalidWebhook)
		}
		plan := event.Plan
		if _, err := ParsePlan(plan); err != nil {
			plan = store.PlanBasic
		}
		err := s.store.UpsertSubscription(ctx, store.Subscription{
			UserID:    event.UserID,
			Plan:      plan,
			Status:    store.StatusActive,
			StartDate: s.now(),
		})
		if err != nil {
			return err
		}
		_, err = s.store.CreateNotification(ctx, event.UserID, store.NotificationSuccess,
			"Subscription activated", fmt.Sprintf("Your %s plan is now active.", plan))
		if err != nil {
			entry.WithError(err).Warn("Failed to notify user")
		}

	case EventSubscriptionDeleted:
		if event.UserID == "" {
			break
		}
		sub, err := s.store.GetSubscription(ctx, event.UserID)
		if err != nil {
			return err
		}
		err = s.store.UpsertSubscription(ctx, store.Subscription{
			UserID:    event.UserID,
			Plan:      store.PlanFree,
			Status:    store.StatusActive,
			StartDate: sub.StartDate,
		})
		if err != nil {
			return err
		}

	case EventSubscriptionUpdated:
		if event.UserID == "" {
			break
		}
		status := store.StatusCancelled
		if event.Active {
			status = store.StatusActive
		}
		if err := s.store.UpdateSubscriptionStatus(ctx, event.UserID, status, event.CancelAt); err != nil {
			return err
		}

	default:
		entry.Debug("Ignoring webhook event")
		return nil
	}

	entry.Info("Webhook event applied")
	return nil
}
