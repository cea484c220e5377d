package regcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"meikan/internal/regcache"
	"meikan/internal/registry"
)

func TestGetOrFetchSingleFlight(t *testing.T) {
	cache := regcache.New[int]()
	var fetches atomic.Int32

	const callers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			value, err := cache.GetOrFetch(context.Background(), "key", func(context.Context) (int, error) {
				fetches.Add(1)
				return 42, nil
			})
			if err != nil {
				t.Errorf("GetOrFetch: %v", err)
			}
			results[i] = value
		}(i)
	}
	close(start)
	wg.Wait()

	if got := fetches.Load(); got != 1 {
		t.Errorf("fetch ran %d times, want 1", got)
	}
	for i, value := range results {
		if value != 42 {
			t.Errorf("caller %d got %d, want 42", i, value)
		}
	}
}

func TestGetOrFetchCachesErrors(t *testing.T) {
	cache := regcache.New[string]()
	var fetches atomic.Int32
	fetchErr := errors.New("upstream unavailable")

	for i := 0; i < 3; i++ {
		_, err := cache.GetOrFetch(context.Background(), "key", func(context.Context) (string, error) {
			fetches.Add(1)
			return "", fetchErr
		})
		if !errors.Is(err, fetchErr) {
			t.Fatalf("attempt %d: err = %v, want %v", i, err, fetchErr)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("failing fetch ran %d times, want 1", got)
	}
}

func TestGetOrFetchDistinctKeys(t *testing.T) {
	cache := regcache.NewTeamSearch()
	var fetches atomic.Int32
	fetch := func(name string) regcache.FetchFunc[[]registry.Team] {
		return func(context.Context) ([]registry.Team, error) {
			fetches.Add(1)
			return []registry.Team{{Name: name}}, nil
		}
	}

	teamsA, err := cache.GetOrFetch(context.Background(), "早稲田大学", fetch("早稲田大学ラグビー部"))
	if err != nil {
		t.Fatal(err)
	}
	teamsB, err := cache.GetOrFetch(context.Background(), "早稲田", fetch("早稲田クラブ"))
	if err != nil {
		t.Fatal(err)
	}

	if fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2 for distinct keys", fetches.Load())
	}
	if teamsA[0].Name == teamsB[0].Name {
		t.Error("distinct keys returned the same cached value")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestPeek(t *testing.T) {
	cache := regcache.New[int]()
	if _, ok := cache.Peek("absent"); ok {
		t.Error("Peek reported a value for an absent key")
	}

	if _, err := cache.GetOrFetch(context.Background(), "key", func(context.Context) (int, error) {
		return 7, nil
	}); err != nil {
		t.Fatal(err)
	}

	value, ok := cache.Peek("key")
	if !ok || value != 7 {
		t.Errorf("Peek = %d, %v; want 7, true", value, ok)
	}
}
