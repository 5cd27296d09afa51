package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-ad-auth/sessions"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store implements sessions.Repo on a SQLite database. Group memberships are
// kept in a JSONB column so a session round-trips as a single row.
type Store struct {
	db *sql.DB
}

var _ sessions.Repo = (*Store)(nil)

// New opens (or creates) the SQLite database at dsn and applies any pending
// migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY
	// when concurrent refreshes upsert at the same time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores the session, replacing any existing row for the identity.
func (s *Store) Upsert(ctx context.Context, session *sessions.Session) error {
	if session == nil || session.Identity == "" {
		return fmt.Errorf("session identity is required")
	}

	groupsJSON, err := encodeJSONB(session.Groups)
	if err != nil {
		return fmt.Errorf("encoding groups: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			identity, access_token, refresh_token, expires_on,
			token_type, resource, scope, groups
		) VALUES (?, ?, ?, ?, ?, ?, ?, jsonb(?))
		ON CONFLICT(identity) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_on = excluded.expires_on,
			token_type = excluded.token_type,
			resource = excluded.resource,
			scope = excluded.scope,
			groups = excluded.groups`,
		session.Identity,
		session.AccessToken,
		session.RefreshToken,
		session.ExpiresOn,
		session.TokenType,
		session.Resource,
		session.Scope,
		groupsJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	return nil
}

// Get retrieves the session stored for an identity, returning
// sessions.SessionNotFoundErr when no row exists.
func (s *Store) Get(ctx context.Context, identity string) (*sessions.Session, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT identity, access_token, refresh_token, expires_on,
			token_type, resource, scope, json(groups)
		FROM sessions WHERE identity = ?`,
		identity,
	)

	var (
		session    sessions.Session
		groupsBlob []byte
	)
	err := row.Scan(
		&session.Identity,
		&session.AccessToken,
		&session.RefreshToken,
		&session.ExpiresOn,
		&session.TokenType,
		&session.Resource,
		&session.Scope,
		&groupsBlob,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sessions.SessionNotFoundErr
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session row: %w", err)
	}

	session.Groups, err = decodeJSONB(groupsBlob)
	if err != nil {
		return nil, fmt.Errorf("decoding groups: %w", err)
	}

	return &session, nil
}

// Delete removes the session for an identity. Unknown identities are ignored.
func (s *Store) Delete(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity is required")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// encodeJSONB marshals a string slice for the SQLite jsonb() function.
func encodeJSONB(values []string) (string, error) {
	if values == nil {
		return "null", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return string(data), nil
}

// decodeJSONB unmarshals a JSON blob from SQLite into a string slice.
func decodeJSONB(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON: %w", err)
	}
	return result, nil
}
