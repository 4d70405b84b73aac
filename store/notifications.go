package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
	NotificationWarning = "warning"
	NotificationInfo    = "info"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"is_read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateNotification stores an unread notification for userID.
func (s *Store) CreateNotification(ctx context.Context, userID, kind, title, message string) (*Notification, error) {
	switch kind {
	case NotificationSuccess, NotificationError, NotificationWarning, NotificationInfo:
	default:
		return nil, fmt.Errorf("unknown notification type %q", kind)
	}
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: timestamp(s.now()),
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertNotification),
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns the notifications of userID, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows := []Notification{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectNotifications), userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// MarkNotificationRead flags a notification owned by userID as read.
// Notifications of other users are reported as ErrNotFound.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) (*Notification, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(markNotificationRead), true, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	if err := expectRow(res, "notification"); err != nil {
		return nil, err
	}
	var n Notification
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(selectNotification), id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return &n, nil
}
