// Пакет cache — региональный кэш read-through фасада.
// Два бэкенда: Redis (общий для инстансов) и in-memory LRU (per-instance).
// Регион — грубая единица инвалидации: мутации сбрасывают регионы целиком.
package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Регионы кэша. Ключи внутри региона независимы,
// инвалидация работает на уровне региона целиком.
const (
	// RegionFileMeta — метаданные отдельных файлов (ключ metadata:<id>).
	RegionFileMeta = "file_meta"
	// RegionPaged — страничные списки файлов.
	RegionPaged = "paged"
	// RegionSearch — результаты поиска и ответы QA.
	RegionSearch = "search"
)

// Regions — все регионы, в порядке обхода при полной очистке.
var Regions = []string{RegionFileMeta, RegionPaged, RegionSearch}

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dq_cache_hits_total",
		Help: "Общее количество попаданий в региональный кэш.",
	}, []string{"region"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dq_cache_misses_total",
		Help: "Общее количество промахов регионального кэша.",
	}, []string{"region"})
	cacheEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dq_cache_evictions_total",
		Help: "Общее количество инвалидаций регионов (DeleteRegion).",
	}, []string{"region"})
)

// RegionCache — порт регионального кэша.
// Значения — сериализованные байты: сервисный слой сам решает,
// что и как кодировать (JSON).
type RegionCache interface {
	// Get возвращает значение по ключу региона.
	// (nil, false, nil) — промах; ошибка только при сбое бэкенда.
	Get(ctx context.Context, region, key string) ([]byte, bool, error)
	// Set записывает значение в регион с TTL бэкенда.
	Set(ctx context.Context, region, key string, value []byte) error
	// DeleteKey удаляет один ключ региона. Отсутствие ключа — не ошибка.
	DeleteKey(ctx context.Context, region, key string) error
	// DeleteRegion удаляет все ключи региона. Идемпотентна:
	// повторный вызов на пустом регионе — успех.
	DeleteRegion(ctx context.Context, region string) error
	// Clear удаляет все ключи всех регионов.
	Clear(ctx context.Context) error
	// KeyCount возвращает общее количество ключей во всех регионах.
	KeyCount(ctx context.Context) (int64, error)
	// Close освобождает ресурсы бэкенда.
	Close() error
}

func recordHit(region string)  { cacheHitsTotal.WithLabelValues(region).Inc() }
func recordMiss(region string) { cacheMissesTotal.WithLabelValues(region).Inc() }
func recordEviction(region string) {
	cacheEvictionsTotal.WithLabelValues(region).Inc()
}
