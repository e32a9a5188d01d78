package llm

import (
	"sync"
	"testing"
)

func TestKeyRingEmpty(t *testing.T) {
	if _, err := newKeyRing(nil); err == nil {
		t.Error("newKeyRing(nil) should fail")
	}
}

func TestKeyRingRoundRobin(t *testing.T) {
	ring, err := newKeyRing([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	// Call k uses key[(k-1) mod N].
	want := []string{"a", "b", "c", "a", "b", "c", "a"}
	for k, expected := range want {
		key, idx := ring.take()
		if key != expected {
			t.Errorf("call %d: key = %q, want %q", k+1, key, expected)
		}
		if idx != k%3 {
			t.Errorf("call %d: index = %d, want %d", k+1, idx, k%3)
		}
	}
}

func TestKeyRingConcurrent(t *testing.T) {
	ring, err := newKeyRing([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	const callers = 30
	counts := make([]int, 3)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, idx := ring.take()
			mu.Lock()
			counts[idx]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// 30 takes over 3 keys: the shared counter spreads them evenly
	// regardless of goroutine scheduling.
	for i, c := range counts {
		if c != callers/3 {
			t.Errorf("key %d used %d times, want %d", i, c, callers/3)
		}
	}
}
