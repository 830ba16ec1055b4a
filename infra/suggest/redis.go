// Package suggest serves destination suggestions from Redis.
package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/tripcost/core/factory"
	coresuggest "github.com/kilianp07/tripcost/core/suggest"
	"github.com/kilianp07/tripcost/infra/logger"
)

// DefaultKey is the sorted set holding destinations, lowest score first.
const DefaultKey = "tripcost:suggestions"

func init() {
	_ = coresuggest.RegisterSource("redis", func(conf map[string]any) (coresuggest.Source, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRedisSource(c), nil
	})
}

// Config locates the sorted set.
type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
	// Limit caps how many members are read; 0 reads the whole set.
	Limit int64 `json:"limit"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
}

// RedisSource reads suggestions from a Redis sorted set.
type RedisSource struct {
	client *redis.Client
	key    string
	limit  int64
	log    logger.Logger
}

// NewRedisSource creates a source backed by a new client. The connection is
// established lazily.
func NewRedisSource(cfg Config) *RedisSource {
	cfg.SetDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	return NewRedisSourceWithClient(client, cfg.Key, cfg.Limit)
}

// NewRedisSourceWithClient wraps an existing client.
func NewRedisSourceWithClient(client *redis.Client, key string, limit int64) *RedisSource {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSource{client: client, key: key, limit: limit, log: logger.New("redis-suggestions")}
}

// Suggestions returns the members of the set in score order.
func (s *RedisSource) Suggestions(ctx context.Context) ([]string, error) {
	stop := int64(-1)
	if s.limit > 0 {
		stop = s.limit - 1
	}
	res, err := s.client.ZRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		s.log.Errorf("read suggestions from %s: %v", s.key, err)
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	return res, nil
}

// Seed replaces the set with items, ranked in the given order.
func (s *RedisSource) Seed(ctx context.Context, items []string) error {
	zs := make([]redis.Z, len(items))
	for i, it := range items {
		zs[i] = redis.Z{Score: float64(i), Member: it}
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key)
		if len(zs) > 0 {
			p.ZAdd(ctx, s.key, zs...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed suggestions: %w", err)
	}
	s.log.Infof("seeded %d suggestions into %s", len(items), s.key)
	return nil
}

// Close releases the client.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
