package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/pkg/engine"
)

// ErrCacheMiss is returned by a RedisClient when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// RedisClient is the subset of Redis the snapshot cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetIfNewer stores value unless the cached document carries a higher
	// version. The compare and the write are one atomic step.
	SetIfNewer(ctx context.Context, key string, value []byte, version uint64, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// setIfNewer compares against the "version" field of the cached JSON
// document. ARGV: document, version, ttl in milliseconds (0 keeps no expiry).
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, doc = pcall(cjson.decode, cur)
	if ok and type(doc) == 'table' and tonumber(doc.version) and tonumber(doc.version) > tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

type redisClient struct {
	client *redis.Client
}

// NewRedisClient adapts a go-redis client.
func NewRedisClient(client *redis.Client) RedisClient {
	return &redisClient{client: client}
}

func (r *redisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (r *redisClient) SetIfNewer(ctx context.Context, key string, value []byte, version uint64, ttl time.Duration) error {
	err := setIfNewer.Run(ctx, r.client, []string{key}, value, version, ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *redisClient) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// CachedStore keeps recently used snapshots in Redis in front of a durable
// store. Writes go to the backend first; cache failures are logged and never
// fail the call.
type CachedStore struct {
	backend SnapshotStore
	cache   RedisClient
	prefix  string
	ttl     time.Duration
	log     logrus.FieldLogger
}

// NewCachedStore wraps backend with a Redis cache.
func NewCachedStore(backend SnapshotStore, cache RedisClient, prefix string, ttl time.Duration, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{
		backend: backend,
		cache:   cache,
		prefix:  prefix,
		ttl:     ttl,
		log:     log.WithField("component", "snapshot_cache"),
	}
}

func (c *CachedStore) key(bossID string) string {
	return c.prefix + bossID
}

func (c *CachedStore) Save(ctx context.Context, bossID string, state engine.State) error {
	if err := c.backend.Save(ctx, bossID, state); err != nil {
		if errors.Is(err, ErrStaleSnapshot) {
			// the cached copy may be the stale one
			c.evict(ctx, bossID)
		}
		return err
	}
	doc, err := encode(state)
	if err != nil {
		return err
	}
	c.fill(ctx, bossID, doc, state.Version)
	return nil
}

// fill writes a snapshot to the cache. Concurrent saves can arrive out of
// order, so an older version never replaces a newer cached one.
func (c *CachedStore) fill(ctx context.Context, bossID string, doc []byte, version uint64) {
	if err := c.cache.SetIfNewer(ctx, c.key(bossID), doc, version, c.ttl); err != nil {
		c.log.WithError(err).WithField("boss", bossID).Warn("failed to cache snapshot")
	}
}

func (c *CachedStore) Load(ctx context.Context, bossID string) (engine.State, error) {
	doc, err := c.cache.Get(ctx, c.key(bossID))
	if err == nil {
		state, decodeErr := decode(doc)
		if decodeErr == nil {
			return state, nil
		}
		c.log.WithError(decodeErr).WithField("boss", bossID).Warn("dropping unreadable cached snapshot")
		c.evict(ctx, bossID)
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.WithError(err).WithField("boss", bossID).Warn("snapshot cache unavailable")
	}

	state, err := c.backend.Load(ctx, bossID)
	if err != nil {
		return engine.State{}, err
	}
	if doc, err := encode(state); err == nil {
		c.fill(ctx, bossID, doc, state.Version)
	}
	return state, nil
}

func (c *CachedStore) Delete(ctx context.Context, bossID string) error {
	if err := c.backend.Delete(ctx, bossID); err != nil {
		return err
	}
	c.evict(ctx, bossID)
	return nil
}

func (c *CachedStore) evict(ctx context.Context, bossID string) {
	if err := c.cache.Del(ctx, c.key(bossID)); err != nil {
		c.log.WithError(err).WithField("boss", bossID).Warn("failed to evict cached snapshot")
	}
}
