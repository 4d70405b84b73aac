package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/store"
)

type fakeStore struct {
	subs          map[string]*store.Subscription
	counts        map[store.Tool]int
	since         time.Time
	notifications []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: map[string]*store.Subscription{}, counts: map[store.Tool]int{}}
}

func (f *fakeStore) GetSubscription(_ context.Context, userID string) (*store.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeStore) CountResultsSince(_ context.Context, tool store.Tool, _ string, since time.Time) (int, error) {
	f.since = since
	return f.counts[tool], nil
}

func (f *fakeStore) UpsertSubscription(_ context.Context, sub store.Subscription) error {
	f.subs[sub.UserID] = &sub
	return nil
}

func (f *fakeStore) UpdateSubscriptionStatus(_ context.Context, userID, status string, endDate *time.Time) error {
	sub, ok := f.subs[userID]
	if !ok {
		return store.ErrNotFound
	}
	sub.Status = status
	sub.EndDate = endDate
	return nil
}

func (f *fakeStore) CreateNotification(_ context.Context, userID, kind, title, _ string) (*store.Notification, error) {
	f.notifications = append(f.notifications, userID+":"+kind+":"+title)
	return &store.Notification{UserID: userID, Type: kind, Title: title}, nil
}

type fakeProvider struct {
	event   *Event
	err     error
	request CheckoutRequest
}

func (f *fakeProvider) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	f.request = req
	return "https://checkout.example/session", f.err
}

func (f *fakeProvider) ParseEvent([]byte, string) (*Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestQuotaCheck(t *testing.T) {
	tests := []struct {
		name    string
		plan    string
		used    int
		wantErr bool
	}{
		{"free under limit", store.PlanFree, 4, false},
		{"free at limit", store.PlanFree, 5, true},
		{"basic under limit", store.PlanBasic, 49, false},
		{"basic at limit", store.PlanBasic, 50, true},
		{"pro never limited", store.PlanPro, 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.subs["u1"] = &store.Subscription{UserID: "u1", Plan: tt.plan, Status: store.StatusActive}
			fs.counts[store.ToolSEO] = tt.used
			q := NewQuotaChecker(fs)

			err := q.Check(context.Background(), "u1", store.ToolSEO)
			if tt.wantErr {
				if !errors.Is(err, ErrQuotaExceeded) {
					t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
				}
				want := "Monthly limit reached for seoScans. Please upgrade your plan."
				if err.Error() != want {
					t.Errorf("Expected message %q, got %q", want, err.Error())
				}
				var qe *QuotaError
				if !errors.As(err, &qe) || qe.Used != tt.used {
					t.Errorf("Expected QuotaError with used %d, got %v", tt.used, err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestQuotaCountsFromMonthStart(t *testing.T) {
	fs := newFakeStore()
	fs.subs["u1"] = &store.Subscription{UserID: "u1", Plan: store.PlanFree}
	q := NewQuotaChecker(fs)
	q.now = func() time.Time { return time.Date(2026, 7, 19, 15, 30, 0, 0, time.UTC) }

	if err := q.Check(context.Background(), "u1", store.ToolCitation); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !fs.since.Equal(want) {
		t.Errorf("Expected counting since %v, got %v", want, fs.since)
	}
}

func TestQuotaWithoutSubscription(t *testing.T) {
	q := NewQuotaChecker(newFakeStore())
	if err := q.Check(context.Background(), "ghost", store.ToolSEO); !errors.Is(err, ErrNoSubscription) {
		t.Errorf("Expected ErrNoSubscription, got %v", err)
	}
}

func TestUsage(t *testing.T) {
	fs := newFakeStore()
	fs.subs["u1"] = &store.Subscription{UserID: "u1", Plan: store.PlanBasic}
	fs.counts[store.ToolHeatMap] = 7
	q := NewQuotaChecker(fs)

	sub, usage, err := q.Usage(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if sub.Plan != store.PlanBasic {
		t.Errorf("Expected plan basic, got %s", sub.Plan)
	}
	if got := usage[store.ToolHeatMap]; got.Used != 7 || got.Limit != 50 {
		t.Errorf("Expected 7/50 heat maps, got %d/%d", got.Used, got.Limit)
	}
	if len(usage) != 3 {
		t.Errorf("Expected usage for 3 tools, got %d", len(usage))
	}
}

func TestMonthStart(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*3600)
	got := MonthStart(time.Date(2026, 8, 1, 1, 0, 0, 0, local))
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParsePlan(t *testing.T) {
	for _, plan := range []string{"free", "basic", "pro"} {
		if _, err := ParsePlan(plan); err != nil {
			t.Errorf("Expected %s to be valid, got %v", plan, err)
		}
	}
	if _, err := ParsePlan("enterprise"); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Expected ErrInvalidPlan, got %v", err)
	}
}

func TestChangePlanToFree(t *testing.T) {
	fs := newFakeStore()
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	fs.subs["u1"] = &store.Subscription{UserID: "u1", Plan: store.PlanPro, Status: store.StatusCancelled, StartDate: start, EndDate: &end}
	provider := &fakeProvider{}
	svc := NewService(fs, provider, "https://app.example", quietLogger())

	res, err := svc.ChangePlan(context.Background(), &store.User{ID: "u1"}, "free")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.PaymentURL != "" {
		t.Errorf("Expected immediate success, got %+v", res)
	}
	sub := fs.subs["u1"]
	if sub.Plan != store.PlanFree || sub.Status != store.StatusActive || sub.EndDate != nil {
		t.Errorf("Expected active free plan without end date, got %+v", sub)
	}
	if !sub.StartDate.Equal(start) {
		t.Errorf("Expected start date to be kept, got %v", sub.StartDate)
	}
	if provider.request.UserID != "" {
		t.Error("Expected no checkout for the free plan")
	}
}

func TestChangePlanToPaid(t *testing.T) {
	fs := newFakeStore()
	provider := &fakeProvider{}
	svc := NewService(fs, provider, "https://app.example", quietLogger())

	res, err := svc.ChangePlan(context.Background(), &store.User{ID: "u1", Email: "a@example.com"}, "pro")
	if err != nil {
		t.Fatal(err)
	}
	if res.PaymentURL != "https://checkout.example/session" {
		t.Errorf("Expected payment url, got %q", res.PaymentURL)
	}
	if provider.request.PriceCents != 9900 {
		t.Errorf("Expected price 9900, got %d", provider.request.PriceCents)
	}
	if provider.request.CancelURL != "https://app.example/pricing" {
		t.Errorf("Expected cancel url, got %q", provider.request.CancelURL)
	}
	if _, ok := fs.subs["u1"]; ok {
		t.Error("Expected subscription to stay untouched until payment")
	}

	if _, err := svc.ChangePlan(context.Background(), &store.User{ID: "u1"}, "gold"); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Expected ErrInvalidPlan, got %v", err)
	}
}

func TestWebhookCheckoutCompleted(t *testing.T) {
	fs := newFakeStore()
	provider := &fakeProvider{event: &Event{Type: EventCheckoutCompleted, UserID: "u1", Plan: "pro"}}
	svc := NewService(fs, provider, "", quietLogger())

	if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
		t.Fatal(err)
	}
	sub := fs.subs["u1"]
	if sub == nil || sub.Plan != store.PlanPro || sub.Status != store.StatusActive {
		t.Fatalf("Expected active pro subscription, got %+v", sub)
	}
	if len(fs.notifications) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(fs.notifications))
	}
}

func TestWebhookCheckoutDefaultsToBasic(t *testing.T) {
	fs := newFakeStore()
	provider := &fakeProvider{event: &Event{Type: EventCheckoutCompleted, UserID: "u1"}}
	svc := NewService(fs, provider, "", quietLogger())

	if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
		t.Fatal(err)
	}
	if fs.subs["u1"].Plan != store.PlanBasic {
		t.Errorf("Expected basic plan, got %s", fs.subs["u1"].Plan)
	}
}

func TestWebhookSubscriptionLifecycle(t *testing.T) {
	fs := newFakeStore()
	fs.subs["u1"] = &store.Subscription{UserID: "u1", Plan: store.PlanBasic, Status: store.StatusActive}
	provider := &fakeProvider{}
	svc := NewService(fs, provider, "", quietLogger())

	cancelAt := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	provider.event = &Event{Type: EventSubscriptionUpdated, UserID: "u1", Active: false, CancelAt: &cancelAt}
	if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
		t.Fatal(err)
	}
	if sub := fs.subs["u1"]; sub.Status != store.StatusCancelled || sub.EndDate == nil || !sub.EndDate.Equal(cancelAt) {
		t.Errorf("Expected cancelled subscription ending %v, got %+v", cancelAt, sub)
	}

	provider.event = &Event{Type: EventSubscriptionDeleted, UserID: "u1"}
	if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
		t.Fatal(err)
	}
	if sub := fs.subs["u1"]; sub.Plan != store.PlanFree || sub.Status != store.StatusActive || sub.EndDate != nil {
		t.Errorf("Expected active free subscription, got %+v", sub)
	}
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	fs := newFakeStore()
	provider := &fakeProvider{event: &Event{Type: "invoice.paid", UserID: "u1"}}
	svc := NewService(fs, provider, "", quietLogger())

	if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
		t.Errorf("Expected unknown event to be acknowledged, got %v", err)
	}
	if len(fs.subs) != 0 {
		t.Error("Expected no subscription changes")
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: bad signature", ErrInvalidWebhook)}
	svc := NewService(newFakeStore(), provider, "", quietLogger())

	if err := svc.HandleWebhook(context.Background(), nil, "sig"); !errors.Is(err, ErrInvalidWebhook) {
		t.Errorf("Expected ErrInvalidWebhook, got %v", err)
	}
}

func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeParseEvent(t *testing.T) {
	p := NewStripeProvider("sk_test_123", "whsec_test")
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"status": "active",
			"cancel_at": 1788220800,
			"metadata": {"userId": "u1"}
		}}
	}`)

	event, err := p.ParseEvent(payload, signPayload(payload, "whsec_test", time.Now()))
	if err != nil {
		t.Fatalf("Expected valid event, got %v", err)
	}
	if event.Type != EventSubscriptionUpdated || event.UserID != "u1" || !event.Active {
		t.Errorf("Unexpected event %+v", event)
	}
	if event.CancelAt == nil || event.CancelAt.Unix() != 1788220800 {
		t.Errorf("Expected cancel at 1788220800, got %v", event.CancelAt)
	}

	if _, err := p.ParseEvent(payload, signPayload(payload, "whsec_other", time.Now())); !errors.Is(err, ErrInvalidWebhook) {
		t.Errorf("Expected ErrInvalidWebhook for wrong secret, got %v", err)
	}
}

func TestDecodeCheckoutEvent(t *testing.T) {
	event, err := decodeEvent(EventCheckoutCompleted, []byte(`{
		"id": "cs_1",
		"object": "checkout.session",
		"client_reference_id": "u9",
		"metadata": {"plan": "pro"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if event.UserID != "u9" || event.Plan != "pro" {
		t.Errorf("Unexpected event %+v", event)
	}
}

func TestProductName(t *testing.T) {
	if got := ProductName("basic"); got != "Basic Plan" {
		t.Errorf("Expected %q, got %q", "Basic Plan", got)
	}
}
