// Package billing enforces plan quotas and talks to the payment provider.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seo-suite/backend/store"
)

// Unlimited marks a tool without a monthly cap.
const Unlimited = -1

var (
	// ErrQuotaExceeded matches every *QuotaError.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNoSubscription is returned when a user has no subscription row.
	ErrNoSubscription = errors.New("no active subscription found")
	// ErrInvalidPlan is returned for plan names outside the plan table.
	ErrInvalidPlan = errors.New("invalid plan selected")
)

// Limits maps each tool to its monthly allowance.
type Limits map[store.Tool]int

// PlanLimits is the monthly allowance of every plan.
var PlanLimits = map[string]Limits{
	store.PlanFree:  {store.ToolSEO: 5, store.ToolHeatMap: 5, store.ToolCitation: 5},
	store.PlanBasic: {store.ToolSEO: 50, store.ToolHeatMap: 50, store.ToolCitation: 50},
	store.PlanPro:   {store.ToolSEO: Unlimited, store.ToolHeatMap: Unlimited, store.ToolCitation: Unlimited},
}

// PlanPrices holds monthly prices in cents.
var PlanPrices = map[string]int64{
	store.PlanFree:  0,
	store.PlanBasic: 2900,
	store.PlanPro:   9900,
}

// ParsePlan validates a plan name.
func ParsePlan(name string) (string, error) {
	if _, ok := PlanLimits[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, name)
	}
	return name, nil
}

// QuotaError reports that a tool's monthly allowance is used up.
type QuotaError struct {
	Tool  store.Tool
	Limit int
	Used  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("Monthly limit reached for %s. Please upgrade your plan.", e.Tool)
}

// Is makes errors.Is(err, ErrQuotaExceeded) true.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// UsageStore is the part of the store quota checks read from.
type UsageStore interface {
	GetSubscription(ctx context.Context, userID string) (*store.Subscription, error)
	CountResultsSince(ctx context.Context, tool store.Tool, userID string, since time.Time) (int, error)
}

// Usage is the consumption of one tool in the current month.
type Usage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// QuotaChecker decides whether a user may run another analysis.
type QuotaChecker struct {
	store UsageStore
	now   func() time.Time
}

func NewQuotaChecker(s UsageStore) *QuotaChecker {
	return &QuotaChecker{store: s, now: time.Now}
}

// Check returns nil when userID may run tool once more this month.
func (q *QuotaChecker) Check(ctx context.Context, userID string, tool store.Tool) error {
	limit, err := q.limitFor(ctx, userID, tool)
	if err != nil {
		return err
	}
	if limit == Unlimited {
		return nil
	}
	used, err := q.store.CountResultsSince(ctx, tool, userID, MonthStart(q.now()))
	if err != nil {
		return fmt.Errorf("failed to check subscription limit: %w", err)
	}
	if used >= limit {
		return &QuotaError{Tool: tool, Limit: limit, Used: used}
	}
	return nil
}

// Usage reports the subscription and this month's consumption of every tool.
func (q *QuotaChecker) Usage(ctx context.Context, userID string) (*store.Subscription, map[store.Tool]Usage, error) {
	sub, err := q.subscription(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	limits := PlanLimits[sub.Plan]
	since := MonthStart(q.now())
	usage := make(map[store.Tool]Usage, len(store.Tools))
	for _, tool := range store.Tools {
		used, err := q.store.CountResultsSince(ctx, tool, userID, since)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count usage: %w", err)
		}
		usage[tool] = Usage{Used: used, Limit: limits[tool]}
	}
	return sub, usage, nil
}

func (q *QuotaChecker) limitFor(ctx context.Context, userID string, tool store.Tool) (int, error) {
	sub, err := q.subscription(ctx, userID)
	if err != nil {
		return 0, err
	}
	limit, ok := PlanLimits[sub.Plan][tool]
	if !ok {
		return 0, fmt.Errorf("no limit for plan %q tool %q", sub.Plan, tool)
	}
	return limit, nil
}

func (q *QuotaChecker) subscription(ctx context.Context, userID string) (*store.Subscription, error) {
	sub, err := q.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	return sub, nil
}
