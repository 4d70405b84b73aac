package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project groups a user's work under a name.
type Project struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// GoogleAuthState ties an OAuth state parameter to the user who started the flow.
type GoogleAuthState struct {
	State     string    `db:"state" json:"state"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateProject stores a new project for userID.
func (s *Store) CreateProject(ctx context.Context, userID, name, description string) (*Project, error) {
	now := timestamp(s.now())
	p := &Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertProject),
		p.ID, p.UserID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return p, nil
}

// ListProjects returns the projects of userID, newest first.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows := []Project{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectProjects), userID); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return rows, nil
}

// SaveGoogleAuthState records state for userID.
func (s *Store) SaveGoogleAuthState(ctx context.Context, userID, state string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(insertGoogleAuthState), state, userID, timestamp(s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("auth state: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to save auth state: %w", err)
	}
	return nil
}

// GetGoogleAuthState looks up a previously saved state.
func (s *Store) GetGoogleAuthState(ctx context.Context, state string) (*GoogleAuthState, error) {
	var st GoogleAuthState
	if err := s.db.GetContext(ctx, &st, s.db.Rebind(selectGoogleAuthState), state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auth state: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load auth state: %w", err)
	}
	return &st, nil
}
