package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

func New(cfg Config, logger *zap.Logger) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Client{rdb: rdb, logger: logger}
}

func (c *Client) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Error("PING failed", zap.Error(err))
	} else {
		c.logger.Debug("PING ok")
	}
	return err
}

func (c *Client) Close() error {
	if c.rdb == nil {
		c.logger.Info("nothing to close")
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("error while closing", zap.Error(err))
		return err
	}
	c.logger.Info("closed")
	return nil
}

// Get возвращает (nil, false, nil), если ключа нет.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("GET miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("GET failed", zap.String("key", key), zap.Error(err))
		return nil, false, err
	}
	c.logger.Debug("GET hit", zap.String("key", key), zap.Int("bytes", len(b)))
	return b, true, nil
}

func (c *Client) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	err := c.rdb.Set(ctx, key, val, ttl).Err()
	if err != nil {
		c.logger.Error("SET failed", zap.String("key", key), zap.Error(err))
	} else {
		c.logger.Debug("SET ok", zap.String("key", key), zap.Duration("ttl", ttl))
	}
	return err
}

func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("DEL failed", zap.Strings("keys", keys), zap.Error(err))
	} else {
		c.logger.Debug("DEL ok", zap.Strings("keys", keys), zap.Int64("deleted", n))
	}
	return n, err
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Error("EXISTS failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n == 1, nil
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		c.logger.Error("EXPIRE failed", zap.String("key", key), zap.Error(err))
	}
	return ok, err
}

// Keys собирает ключи по glob-шаблону через SCAN (KEYS блокирует инстанс).
func (c *Client) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	iter := c.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("SCAN failed", zap.String("pattern", pattern), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("SCAN ok", zap.String("pattern", pattern), zap.Int("found", len(out)))
	return out, nil
}

func (c *Client) Flush(ctx context.Context) error {
	err := c.rdb.FlushDB(ctx).Err()
	if err != nil {
		c.logger.Error("FLUSHDB failed", zap.Error(err))
	} else {
		c.logger.Warn("FLUSHDB ok")
	}
	return err
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Error("INCR failed", zap.String("key", key), zap.Error(err))
	}
	return n, err
}

// IncrExpire: INCR + EXPIRE одним пайплайном (счётчики лимитов).
func (c *Client) IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("INCR+EXPIRE failed", zap.String("key", key), zap.Error(err))
		return 0, err
	}
	return incr.Val(), nil
}

// SetNX устанавливает значение только если ключ ещё не существует.
func (c *Client) SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		c.logger.Error("SETNX failed", zap.String("key", key), zap.Error(err))
	} else if !ok {
		c.logger.Debug("SETNX skipped (already exists)", zap.String("key", key))
	}
	return ok, err
}
