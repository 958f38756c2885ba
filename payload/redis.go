package payload

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redis/v8"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

// RedisCache shares payloads between an intake server and relayers running as separate processes.
// GETDEL keeps Take single-consumption across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(hash string) string {
	return c.prefix + hash
}

func (c *RedisCache) Put(ctx context.Context, payload []byte) (Record, error) {
	hash := utils.HashPayload(payload)
	if err := c.client.Set(ctx, c.key(hash), payload, c.ttl).Err(); err != nil {
		return Record{}, errors.Wrapf(err, "failed to store payload %s", hash)
	}
	return newRecord(hash, payload), nil
}

func (c *RedisCache) Take(ctx context.Context, hashHex string) ([]byte, error) {
	hash := utils.NormalizeHash(hashHex)
	payload, err := c.client.GetDel(ctx, c.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(core.ErrPayloadNotFound, "hash %s", hash)
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to take payload %s", hash)
	}
	return payload, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
