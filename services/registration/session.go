package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pitchinvest/models"

	"github.com/go-redis/redis/v8"
)

// SessionTTL is how long an in-progress registration survives without activity.
const SessionTTL = 30 * time.Minute

const sessionKeyPrefix = "regSession:"

// ErrSessionNotFound is returned when no session exists for the given id.
var ErrSessionNotFound = errors.New("registration session not found")

// SessionStore persists in-progress registration sessions.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, session models.RegistrationSession) error
	Get(ctx context.Context, sessionID string) (*models.RegistrationSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions as JSON blobs in Redis with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a session store over the given Redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, session models.RegistrationSession) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal registration session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save registration session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.RegistrationSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration session: %w", err)
	}
	var session models.RegistrationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registration session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete registration session: %w", err)
	}
	return nil
}
