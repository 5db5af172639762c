package redisstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"venuedash/internal/app/policies"
)

const lockPrefix = "venuedash:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a SET NX PX lock shared by every instance using the same Redis.
// A holder that dies loses the lock after ttl.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

func (l *Locker) Acquire(ctx context.Context, key string) (policies.Release, error) {
	token := uuid.NewString()
	redisKey := lockPrefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, policies.ErrLocked
	}
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
		if err == redis.Nil {
			return nil
		}
		return err
	}, nil
}

var _ policies.Locker = (*Locker)(nil)
