package cache

import (
	"context"
	"testing"
	"time"
)

func newTestMemoryCache() *MemoryCache {
	return NewMemoryCache(100, 5*time.Minute)
}

// TestMemoryCache_SetGet проверяет запись и чтение в пределах региона.
func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, RegionFileMeta, "metadata:1", []byte("value")); err != nil {
		t.Fatalf("Set ошибка: %v", err)
	}

	val, ok, err := c.Get(ctx, RegionFileMeta, "metadata:1")
	if err != nil {
		t.Fatalf("Get ошибка: %v", err)
	}
	if !ok {
		t.Fatal("ожидался hit")
	}
	if string(val) != "value" {
		t.Errorf("значение = %q, ожидалось %q", val, "value")
	}
}

// TestMemoryCache_RegionIsolation — одинаковый ключ в разных регионах
// хранит разные значения.
func TestMemoryCache_RegionIsolation(t *testing.T) {
	c := newTestMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, RegionFileMeta, "key", []byte("meta"))
	_ = c.Set(ctx, RegionPaged, "key", []byte("page"))

	if err := c.DeleteRegion(ctx, RegionFileMeta); err != nil {
		t.Fatalf("DeleteRegion ошибка: %v", err)
	}

	if _, ok, _ := c.Get(ctx, RegionFileMeta, "key"); ok {
		t.Error("регион file_meta должен быть пуст")
	}
	if val, ok, _ := c.Get(ctx, RegionPaged, "key"); !ok || string(val) != "page" {
		t.Error("регион paged не должен был пострадать")
	}
}

// TestMemoryCache_DeleteRegionIdempotent — сброс пустого региона успешен.
func TestMemoryCache_DeleteRegionIdempotent(t *testing.T) {
	c := newTestMemoryCache()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.DeleteRegion(ctx, RegionSearch); err != nil {
			t.Fatalf("DeleteRegion #%d ошибка: %v", i+1, err)
		}
	}
}

// TestMemoryCache_DeleteKey — точечная инвалидация оставляет соседей.
func TestMemoryCache_DeleteKey(t *testing.T) {
	c := newTestMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, RegionFileMeta, "metadata:1", []byte("a"))
	_ = c.Set(ctx, RegionFileMeta, "metadata:2", []byte("b"))

	if err := c.DeleteKey(ctx, RegionFileMeta, "metadata:1"); err != nil {
		t.Fatalf("DeleteKey ошибка: %v", err)
	}

	if _, ok, _ := c.Get(ctx, RegionFileMeta, "metadata:1"); ok {
		t.Error("metadata:1 должен быть удалён")
	}
	if _, ok, _ := c.Get(ctx, RegionFileMeta, "metadata:2"); !ok {
		t.Error("metadata:2 должен остаться")
	}
}

// TestMemoryCache_ClearAndKeyCount — полная очистка и подсчёт ключей.
func TestMemoryCache_ClearAndKeyCount(t *testing.T) {
	c := newTestMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, RegionFileMeta, "k1", []byte("a"))
	_ = c.Set(ctx, RegionPaged, "k2", []byte("b"))
	_ = c.Set(ctx, RegionSearch, "k3", []byte("c"))

	n, err := c.KeyCount(ctx)
	if err != nil {
		t.Fatalf("KeyCount ошибка: %v", err)
	}
	if n != 3 {
		t.Errorf("KeyCount = %d, ожидалось 3", n)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear ошибка: %v", err)
	}

	n, _ = c.KeyCount(ctx)
	if n != 0 {
		t.Errorf("KeyCount после Clear = %d, ожидалось 0", n)
	}
}

// TestMemoryCache_TTLExpiry — записи истекают по TTL.
func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(100, 20*time.Millisecond)
	ctx := context.Background()

	_ = c.Set(ctx, RegionFileMeta, "key", []byte("value"))
	time.Sleep(60 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, RegionFileMeta, "key"); ok {
		t.Error("запись должна была истечь по TTL")
	}
}
