package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize — количество ключей за одну итерацию SCAN при сбросе региона.
const scanBatchSize = 500

// RedisCache — региональный кэш поверх Redis.
// Ключи хранятся в формате "<region>:<key>", инвалидация региона —
// через SCAN по префиксу с батчевым DEL.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache создаёт кэш поверх Redis и проверяет соединение ping'ом.
func NewRedisCache(ctx context.Context, addr string, db int, password string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	logger.Info("Подключение к Redis установлено",
		slog.String("addr", addr),
		slog.Int("db", db),
	)

	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// regionKey собирает полный ключ Redis из региона и ключа.
func regionKey(region, key string) string {
	return region + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, region, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, regionKey(region, key)).Bytes()
	if err == redis.Nil {
		recordMiss(region)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	recordHit(region)
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, region, key string, value []byte) error {
	if err := c.rdb.Set(ctx, regionKey(region, key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) DeleteKey(ctx context.Context, region, key string) error {
	if err := c.rdb.Del(ctx, regionKey(region, key)).Err(); err != nil {
		return fmt.Errorf("ошибка удаления ключа из Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) DeleteRegion(ctx context.Context, region string) error {
	var cursor uint64
	match := region + ":*"

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("ошибка сканирования региона %s: %w", region, err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("ошибка сброса региона %s: %w", region, err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	recordEviction(region)
	c.logger.Debug("Регион кэша сброшен", slog.String("region", region))
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.rdb.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("ошибка полной очистки кэша: %w", err)
	}
	for _, region := range Regions {
		recordEviction(region)
	}
	return nil
}

func (c *RedisCache) KeyCount(ctx context.Context) (int64, error) {
	n, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта ключей: %w", err)
	}
	return n, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CheckReady проверяет доступность Redis для health endpoint.
// Реализует интерфейс handlers.ReadinessChecker.
func (c *RedisCache) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
