package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache — региональный кэш в памяти процесса.
// Обёртка над hashicorp/golang-lru/v2/expirable: отдельный LRU на регион,
// общий TTL. Используется когда Redis не сконфигурирован (per-instance кэш).
type MemoryCache struct {
	regions map[string]*expirable.LRU[string, []byte]
}

// NewMemoryCache создаёт in-memory кэш.
// maxSize — максимальное количество записей на регион.
// ttl — время жизни записи после добавления.
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	regions := make(map[string]*expirable.LRU[string, []byte], len(Regions))
	for _, region := range Regions {
		regions[region] = expirable.NewLRU[string, []byte](maxSize, nil, ttl)
	}
	return &MemoryCache{regions: regions}
}

// lru возвращает LRU региона. Неизвестный регион — программная ошибка,
// но деградируем мягко: считаем регион пустым.
func (c *MemoryCache) lru(region string) (*expirable.LRU[string, []byte], bool) {
	l, ok := c.regions[region]
	return l, ok
}

func (c *MemoryCache) Get(_ context.Context, region, key string) ([]byte, bool, error) {
	l, ok := c.lru(region)
	if !ok {
		recordMiss(region)
		return nil, false, nil
	}
	val, ok := l.Get(key)
	if !ok {
		recordMiss(region)
		return nil, false, nil
	}
	recordHit(region)
	return val, true, nil
}

func (c *MemoryCache) Set(_ context.Context, region, key string, value []byte) error {
	if l, ok := c.lru(region); ok {
		l.Add(key, value)
	}
	return nil
}

func (c *MemoryCache) DeleteKey(_ context.Context, region, key string) error {
	if l, ok := c.lru(region); ok {
		l.Remove(key)
	}
	return nil
}

func (c *MemoryCache) DeleteRegion(_ context.Context, region string) error {
	if l, ok := c.lru(region); ok {
		l.Purge()
		recordEviction(region)
	}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	for region, l := range c.regions {
		l.Purge()
		recordEviction(region)
	}
	return nil
}

func (c *MemoryCache) KeyCount(_ context.Context) (int64, error) {
	var total int64
	for _, l := range c.regions {
		total += int64(l.Len())
	}
	return total, nil
}

func (c *MemoryCache) Close() error {
	return nil
}

// CheckReady — in-memory кэш живёт вместе с процессом, всегда готов.
func (c *MemoryCache) CheckReady() (status, message string) {
	return "ok", "in-memory кэш"
}
