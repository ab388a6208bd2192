package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseLost 租约已被其他进程持有或已过期
var ErrLeaseLost = errors.New("lease lost")

var renewLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease 基于 SET NX PX 的跨进程租约；client 为空时视为单进程部署，总是持有
type Lease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewLease 创建租约，name 会带上全局前缀
func NewLease(client *redis.Client, name string, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Lease{
		client: client,
		key:    Key("lease", name),
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

// Key 租约键
func (l *Lease) Key() string {
	return l.key
}

// Acquire 获取或续期租约；被他人持有时返回 false
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	if l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if err := l.Renew(ctx); err != nil {
		if errors.Is(err, ErrLeaseLost) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Renew 续期自己持有的租约
func (l *Lease) Renew(ctx context.Context) error {
	if l.client == nil {
		return nil
	}
	res, err := renewLeaseScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if res == 0 {
		return ErrLeaseLost
	}
	return nil
}

// Release 释放自己持有的租约，不会删除他人的租约
func (l *Lease) Release(ctx context.Context) error {
	if l.client == nil {
		return nil
	}
	return releaseLeaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
