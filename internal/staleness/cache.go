package staleness

import (
	"fmt"
	"time"

	"arbor/internal/store"
	"arbor/pkg/logging"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gopkg.in/yaml.v3"
)

// Cache stores staleness payloads keyed by persisted-state identity.
type Cache interface {
	// Get returns the cached payload for key, or a miss when absent or
	// expired.
	Get(key string) (map[string]time.Time, bool)

	// Set stores the payload for key with the given time to live.
	Set(key string, times map[string]time.Time, ttl time.Duration) error
}

// StoreCache is a Cache layered over the record store with an in-process
// expiring LRU in front of it.
type StoreCache struct {
	lru     *expirable.LRU[string, map[string]time.Time]
	backing store.Store
}

// payload is the persisted form of one cache entry.
type payload struct {
	Expires time.Time            `yaml:"expires"`
	Times   map[string]time.Time `yaml:"times"`
}

// NewCache builds a cache over the given store. The ttl bounds the
// in-process tier; persisted entries carry their own expiry. A nil backing
// store leaves only the in-process tier.
func NewCache(backing store.Store, ttl time.Duration) *StoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StoreCache{
		// Size 0 disables the LRU size bound; entries only age out.
		lru:     expirable.NewLRU[string, map[string]time.Time](0, nil, ttl),
		backing: backing,
	}
}

func (c *StoreCache) Get(key string) (map[string]time.Time, bool) {
	if times, ok := c.lru.Get(key); ok {
		return times, true
	}
	if c.backing == nil {
		return nil, false
	}

	raw, ok, err := c.backing.Get(storeKey(key))
	if err != nil {
		logging.Warn("Staleness", "Failed to read cached payload for %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var p payload
	if err := yaml.Unmarshal(raw, &p); err != nil {
		logging.Warn("Staleness", "Discarding unreadable payload for %s: %v", key, err)
		return nil, false
	}
	if !p.Expires.IsZero() && time.Now().After(p.Expires) {
		// Expired payloads never become valid again; drop the record.
		if err := c.backing.Delete(storeKey(key)); err != nil {
			logging.Warn("Staleness", "Failed to drop expired payload for %s: %v", key, err)
		}
		return nil, false
	}

	c.lru.Add(key, p.Times)
	return p.Times, true
}

func (c *StoreCache) Set(key string, times map[string]time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.lru.Add(key, times)

	if c.backing == nil {
		return nil
	}

	raw, err := yaml.Marshal(payload{
		Expires: time.Now().Add(ttl),
		Times:   times,
	})
	if err != nil {
		return fmt.Errorf("encoding staleness payload: %w", err)
	}
	if err := c.backing.Set(storeKey(key), raw); err != nil {
		return fmt.Errorf("persisting staleness payload: %w", err)
	}
	return nil
}

func storeKey(key string) string {
	return store.KeyStaleness + "/" + key
}
