package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker lets one instance at a time run a job
type Locker interface {
	TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name, owner string) error
}

// unlockScript deletes the lock only while owner still holds it
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func lockKey(name string) string {
	return "lock:" + name
}

// TryLock takes the named lock for ttl unless another owner holds it
func (c *Redis) TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, lockKey(name), owner, ttl).Result()
}

// Unlock releases the named lock if owner holds it
func (c *Redis) Unlock(ctx context.Context, name, owner string) error {
	return unlockScript.Run(ctx, c.client, []string{lockKey(name)}, owner).Err()
}

// TryLock always succeeds, a single instance needs no coordination
func (Noop) TryLock(context.Context, string, string, time.Duration) (bool, error) { return true, nil }

// Unlock does nothing
func (Noop) Unlock(context.Context, string, string) error { return nil }
