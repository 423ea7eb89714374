package redisx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// StatusCache caches the paid flag of an order keyed by order_payment_id.
type StatusCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func (c *StatusCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return TTLStatusCache
}

func (c *StatusCache) SetPaid(ctx context.Context, orderPaymentID string, paid bool) error {
	return c.RDB.Set(ctx, fmt.Sprintf(KeyPaymentStatus, orderPaymentID), strconv.FormatBool(paid), c.ttl()).Err()
}

// Paid returns ok=false on a miss or any redis error; callers fall back to the DB.
func (c *StatusCache) Paid(ctx context.Context, orderPaymentID string) (paid bool, ok bool) {
	s, err := c.RDB.Get(ctx, fmt.Sprintf(KeyPaymentStatus, orderPaymentID)).Result()
	if err != nil {
		return false, false
	}
	paid, err = strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return paid, true
}

// Dedup marks event ids as seen for one consuming service.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

// FirstSeen atomically claims id. false berarti event sudah pernah diproses.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, id), "1", TTLDedup).Result()
}

// Forget releases a claim so a failed event can be redelivered and retried.
func (d *Dedup) Forget(ctx context.Context, id string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, id)).Err()
}
