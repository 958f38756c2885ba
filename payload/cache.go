package payload

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redis/v8"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Record is a registered payload.
type Record struct {
	HashHex    string
	PayloadHex string
}

func newRecord(hashHex string, payload []byte) Record {
	return Record{HashHex: hashHex, PayloadHex: hex.EncodeToString(payload)}
}

// Cache correlates payloads delivered out of band with the hash carried by a source transaction.
// Each registered payload can be taken once.
type Cache interface {
	// Put registers payload under its hash, replacing any previous payload with the same hash.
	Put(ctx context.Context, payload []byte) (Record, error)
	// Take removes and returns the payload registered under hashHex.
	// It fails with core.ErrPayloadNotFound when nothing is registered.
	Take(ctx context.Context, hashHex string) ([]byte, error)
}

type Config struct {
	Backend string      `json:"backend" yaml:"backend"`
	Redis   RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
	TTL       string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "xrly:payload:",
		},
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		var errs []error
		if c.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("config attribute \"cache.redis.addr\" is empty"))
		}
		if c.Redis.TTL != "" {
			if _, err := time.ParseDuration(c.Redis.TTL); err != nil {
				errs = append(errs, fmt.Errorf("config attribute \"cache.redis.ttl\" is invalid: %v", err))
			}
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// Build returns the configured cache.
func (c Config) Build() (Cache, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Backend == BackendRedis {
		var ttl time.Duration
		if c.Redis.TTL != "" {
			ttl, _ = time.ParseDuration(c.Redis.TTL)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		return NewRedisCache(client, c.Redis.KeyPrefix, ttl), nil
	}
	return NewMemoryCache(), nil
}
