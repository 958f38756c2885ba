package payload

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

// MemoryCache keeps payloads in process memory. Entries that are never taken live until the process exits.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Put(_ context.Context, payload []byte) (Record, error) {
	hash := utils.HashPayload(payload)
	stored := append([]byte{}, payload...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = stored
	telemetry.PayloadCacheEntriesGauge.Set(int64(len(c.entries)))
	return newRecord(hash, stored), nil
}

func (c *MemoryCache) Take(_ context.Context, hashHex string) ([]byte, error) {
	hash := utils.NormalizeHash(hashHex)

	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[hash]
	if !ok {
		return nil, errors.Wrapf(core.ErrPayloadNotFound, "hash %s", hash)
	}
	delete(c.entries, hash)
	telemetry.PayloadCacheEntriesGauge.Set(int64(len(c.entries)))
	return payload, nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
