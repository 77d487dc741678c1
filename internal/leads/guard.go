package leads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/onetriage/leadintake/pkg/logging"
)

// Guard keeps at most one submission in flight per key (one form instance).
// Acquire returns ErrSubmissionInFlight when the key is already held.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, ErrSubmissionInFlight
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares the in-flight lock across replicas. The TTL bounds how long a
// crashed replica can hold a key.
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisGuard {
	if client == nil {
		panic("leads: redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisGuard{client: client, prefix: "leads:inflight:", ttl: ttl, logger: logger}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.prefix+key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("leads: acquire submission lock: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	return func() {
		// The request context may already be cancelled by the time we release.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{g.prefix + key}, token).Err(); err != nil {
			g.logger.Warn("failed to release submission lock", "key", key, "ttl", g.ttl.String(), "error", err)
		}
	}, nil
}

var (
	_ Guard = (*MemoryGuard)(nil)
	_ Guard = (*RedisGuard)(nil)
)
