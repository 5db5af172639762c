package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"venuedash/internal/app/policies"
	"venuedash/internal/domain/availability"
)

const sessionPrefix = "venuedash:session:"

// SessionStore keeps sessions as JSON. Every save pushes the expiry ttl
// further.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (availability.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return availability.Session{}, availability.ErrSessionExpired
	}
	if err != nil {
		return availability.Session{}, err
	}
	return decodeSession(data)
}

func (s *SessionStore) Save(ctx context.Context, session availability.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+session.ID, b, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}

func decodeSession(data []byte) (availability.Session, error) {
	var session availability.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return availability.Session{}, err
	}
	return session, nil
}

var _ policies.SessionStore = (*SessionStore)(nil)
