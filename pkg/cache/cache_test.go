package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTimed(t *testing.T) {
	c := NewTimed(5 * time.Minute)

	tstart := time.Now()

	c.set("GET /api/v1/casts/abc", []byte("value"), tstart)

	_, ok := c.get("GET /api/v1/casts/abc", tstart.Add(time.Minute))
	if !ok {
		t.Errorf("failed to get key that should not be expired")
	}

	_, ok = c.get("GET /api/v1/casts/abc", tstart.Add(10*time.Minute))
	if ok {
		t.Errorf("succeeded in getting expired key")
	}

	_, ok = c.get("GET /api/v1/casts/abc", tstart.Add(time.Minute))
	if ok {
		t.Errorf("succeeded in getting key that was previously evicted")
	}
}

func TestTimedConcurrent(t *testing.T) {
	c := NewTimed(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%4)
			c.Set(key, []byte(key))
			if v, ok := c.Get(key); ok && string(v) != key {
				t.Errorf("got %q for %s", v, key)
			}
		}(i)
	}
	wg.Wait()

	if n := c.Len(); n != 4 {
		t.Errorf("got %d elements, want 4", n)
	}
}
