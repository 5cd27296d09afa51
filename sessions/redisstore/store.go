package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-ad-auth/sessions"
	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// DefaultKeyPrefix namespaces session keys so the store can share a Redis
// database with other applications.
const DefaultKeyPrefix = "adauth:"

// Store implements sessions.Repo on Redis, for deployments where several
// instances share one session store.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ sessions.Repo = (*Store)(nil)

// New connects to the Redis instance described by redisURL (redis://...) and
// verifies the connection.
func New(ctx context.Context, redisURL, keyPrefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = DefaultDialTimeout
	opts.ReadTimeout = DefaultReadTimeout
	opts.WriteTimeout = DefaultWriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// Close the client to prevent resource leak
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, keyPrefix), nil
}

// NewWithClient creates a Store with a pre-configured client. This is useful
// for testing with miniredis.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks Redis connectivity (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) sessionKey(identity string) string {
	return s.keyPrefix + "session:" + identity
}

// Upsert stores the session, replacing any existing entry for the identity.
func (s *Store) Upsert(ctx context.Context, session *sessions.Session) error {
	if session == nil || session.Identity == "" {
		return fmt.Errorf("session identity is required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Sessions carry the refresh token and must outlive the access token,
	// so they are stored without a TTL.
	return s.client.Set(ctx, s.sessionKey(session.Identity), data, 0).Err()
}

// Get retrieves the session stored for an identity, returning
// sessions.SessionNotFoundErr when the key is missing.
func (s *Store) Get(ctx context.Context, identity string) (*sessions.Session, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	data, err := s.client.Get(ctx, s.sessionKey(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sessions.SessionNotFoundErr
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session sessions.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete removes the session for an identity. Unknown identities are ignored.
func (s *Store) Delete(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity is required")
	}

	if err := s.client.Del(ctx, s.sessionKey(identity)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
