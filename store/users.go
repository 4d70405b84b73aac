package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subscription plans and statuses.
const (
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanPro   = "pro"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// User is a registered account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Subscription governs a user's monthly quota. Rows are never deleted;
// cancellation only changes Status.
type Subscription struct {
	UserID    string     `db:"user_id" json:"userId"`
	Plan      string     `db:"plan" json:"plan"`
	Status    string     `db:"status" json:"status"`
	StartDate time.Time  `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate"`
}

// CreateUser inserts a user together with an active free subscription.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	now := timestamp(s.now())
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(insertUser), u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", email, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(insertSubscription), u.ID, PlanFree, StatusActive, now, nil, now); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks a user up by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, selectUserByEmail, email)
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, selectUserByID, id)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*User, error) {
	var u User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// GetSubscription returns the subscription of userID.
func (s *Store) GetSubscription(ctx context.Context, userID string) (*Subscription, error) {
	var sub Subscription
	if err := s.db.GetContext(ctx, &sub, s.db.Rebind(selectSubscription), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subscription: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// UpsertSubscription creates or replaces the subscription of sub.UserID.
func (s *Store) UpsertSubscription(ctx context.Context, sub Subscription) error {
	var end interface{}
	if sub.EndDate != nil {
		end = timestamp(*sub.EndDate)
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(upsertSubscription),
		sub.UserID, sub.Plan, sub.Status, timestamp(sub.StartDate), end, timestamp(s.now()))
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// UpdateSubscriptionStatus changes status and end date without touching the plan.
func (s *Store) UpdateSubscriptionStatus(ctx context.Context, userID, status string, endDate *time.Time) error {
	var end interface{}
	if endDate != nil {
		end = timestamp(*endDate)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(updateSubscriptionStatus), status, end, timestamp(s.now()), userID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return expectRow(res, "subscription")
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
