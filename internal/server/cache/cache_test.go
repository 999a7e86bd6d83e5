package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrLoadCaches(t *testing.T) {
	c := New(time.Minute, time.Minute)
	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"pho-bo"}, nil
	}

	for range 3 {
		v, err := c.GetOrLoad("products:", load)
		if err != nil || v.([]string)[0] != "pho-bo" {
			t.Fatalf("GetOrLoad = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times", calls)
	}
	if s := c.Stats(); s.Hits != 2 || s.Misses != 1 || s.Items != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute, time.Minute)
	boom := errors.New("catalog unavailable")
	if _, err := c.GetOrLoad("categories", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("error result was cached")
	}
}

func TestInvalidateStartsNewGeneration(t *testing.T) {
	c := New(time.Minute, time.Minute)
	n := 0
	load := func() (any, error) { n++; return n, nil }

	v1, _ := c.GetOrLoad("k", load)
	c.Invalidate()
	v2, _ := c.GetOrLoad("k", load)
	if v1 != 1 || v2 != 2 {
		t.Errorf("got %v then %v, want 1 then 2", v1, v2)
	}
	if g := c.Stats().Generation; g != 1 {
		t.Errorf("generation = %d", g)
	}
}

func TestLoadFinishingAfterInvalidateIsNotServed(t *testing.T) {
	c := New(time.Minute, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = c.GetOrLoad("k", func() (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started
	c.Invalidate()
	close(release)
	<-done

	v, err := c.GetOrLoad("k", func() (any, error) { return "fresh", nil })
	if err != nil || v != "fresh" {
		t.Errorf("GetOrLoad = %v, %v; want fresh", v, err)
	}
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	c := New(time.Minute, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (any, error) {
		calls.Add(1)
		<-release
		return "ok", nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetOrLoad("k", load); err != nil || v != "ok" {
				t.Errorf("GetOrLoad = %v, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n >= 8 {
		t.Fatalf("loader ran %d times for 8 concurrent misses", n)
	}
	if c.Len() != 1 {
		t.Errorf("items = %d, want 1", c.Len())
	}
}
