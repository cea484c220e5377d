package verifycache_test

import (
	"os"
	"path/filepath"
	"testing"

	"meikan/internal/registry"
	"meikan/internal/verifycache"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "verify_cache.json")
}

func TestKeyDeterministic(t *testing.T) {
	a := verifycache.Key("山田太郎", "早稲田大学")
	b := verifycache.Key("山田太郎", "早稲田大学")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32 hex chars", len(a))
	}
}

func TestKeyVariesByInstitution(t *testing.T) {
	a := verifycache.Key("山田太郎", "早稲田大学")
	b := verifycache.Key("山田太郎", "慶應義塾大学")
	if a == b {
		t.Error("different institutions produced the same key")
	}
}

func TestStoreAndLookup(t *testing.T) {
	cache := verifycache.NewCache(cachePath(t), true, nil)

	key := verifycache.Key("山田太郎", "早稲田大学")
	cache.Store(verifycache.Entry{
		Key:        key,
		Status:     "match",
		Similarity: 1.0,
		Member:     &registry.Member{Name: "山田太郎", Grade: "3"},
	})

	entry, found := cache.Lookup(key)
	if !found {
		t.Fatal("stored entry not found")
	}
	if entry.Status != "match" || entry.Member == nil || entry.Member.Grade != "3" {
		t.Errorf("entry round trip mismatch: %+v", entry)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set on store")
	}
}

func TestStoreNotFoundPolicy(t *testing.T) {
	cache := verifycache.NewCache(cachePath(t), false, nil)

	key := verifycache.Key("不明選手", "早稲田大学")
	cache.Store(verifycache.Entry{Key: key, Status: verifycache.StatusNotFound})

	if _, found := cache.Lookup(key); found {
		t.Error("not_found cached despite store_not_found=false")
	}

	keeping := verifycache.NewCache(cachePath(t), true, nil)
	keeping.Store(verifycache.Entry{Key: key, Status: verifycache.StatusNotFound})
	if _, found := keeping.Lookup(key); !found {
		t.Error("not_found not cached despite store_not_found=true")
	}
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	path := cachePath(t)
	cache := verifycache.NewCache(path, true, nil)

	if err := cache.Flush(); err != nil {
		t.Fatalf("clean flush: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean flush wrote a file")
	}

	cache.Store(verifycache.Entry{Key: verifycache.Key("山田太郎", "早稲田大学"), Status: "match"})
	if err := cache.Flush(); err != nil {
		t.Fatalf("dirty flush: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("dirty flush did not write the file: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("second flush rewrote an unchanged cache")
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := cachePath(t)
	key := verifycache.Key("山田太郎", "早稲田大学")

	first := verifycache.NewCache(path, true, nil)
	first.Store(verifycache.Entry{Key: key, Status: "match", Similarity: 1.0})
	if err := first.Flush(); err != nil {
		t.Fatal(err)
	}

	second := verifycache.NewCache(path, true, nil)
	entry, found := second.Lookup(key)
	if !found {
		t.Fatal("entry lost across instances")
	}
	if entry.Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0", entry.Similarity)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := verifycache.NewCache(path, true, nil)
	if cache.Count() != 0 {
		t.Errorf("Count() = %d after corrupt load, want 0", cache.Count())
	}

	// The corrupt file must not poison later persistence.
	cache.Store(verifycache.Entry{Key: verifycache.Key("山田太郎", "早稲田大学"), Status: "match"})
	if err := cache.Flush(); err != nil {
		t.Fatalf("flush after corrupt load: %v", err)
	}
	if verifycache.NewCache(path, true, nil).Count() != 1 {
		t.Error("recovered cache did not persist")
	}
}

func TestClear(t *testing.T) {
	path := cachePath(t)
	cache := verifycache.NewCache(path, true, nil)
	cache.Store(verifycache.Entry{Key: verifycache.Key("山田太郎", "早稲田大学"), Status: "match"})
	if err := cache.Flush(); err != nil {
		t.Fatal(err)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cache.Count() != 0 {
		t.Errorf("Count() = %d after clear, want 0", cache.Count())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cache file still exists after clear")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	cache := verifycache.NewCache("", true, nil)
	key := verifycache.Key("山田太郎", "早稲田大学")
	cache.Store(verifycache.Entry{Key: key, Status: "match"})
	if _, found := cache.Lookup(key); found {
		t.Error("pathless cache stored an entry")
	}
	if err := cache.Flush(); err != nil {
		t.Errorf("pathless flush: %v", err)
	}
}
