// Package store persists users, subscriptions and analysis results.
//
// Queries are written with '?' placeholders and rebound for the active
// driver, so the same code runs against Postgres (lib/pq) in production
// and SQLite (go-sqlite3) in tests and local development.
package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Store wraps the database handle. It is safe for concurrent use.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driverName, dsn string) (*Store, error) {
	if driverName != DriverPostgres && driverName != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connection error: %w", err)
	}
	if driverName == DriverSQLite {
		// SQLite only supports one writer; a single connection also keeps
		// in-memory databases alive across queries.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	var version int
	if err := s.db.GetContext(ctx, &version, s.db.Rebind(selectSchemaVersion)); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version < schemaVersion {
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertSchemaVersion), schemaVersion, s.now()); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// timestamp normalizes t the way every stored time is kept: UTC with
// microsecond precision, which both drivers round-trip exactly.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// JSON stores a structured value as JSON text. Values that implement
// Validate are checked every time they are read back.
type JSON[T any] struct {
	V T
}

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return errors.New("unexpected NULL in structured column")
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if err := j.decode(data); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}

// decode unmarshals data and validates it before replacing j.V.
func (j *JSON[T]) decode(data []byte) error {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if v, ok := any(out).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
	}
	j.V = out
	return nil
}

// MarshalJSON renders the wrapped value directly.
func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.V)
}

// UnmarshalJSON reads the wrapped value directly, with the same checks as Scan.
func (j *JSON[T]) UnmarshalJSON(data []byte) error {
	return j.decode(data)
}
