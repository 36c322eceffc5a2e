package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemo(t *testing.T) {
	t.Parallel()

	t.Run("second call returns the stored value", func(t *testing.T) {
		t.Parallel()
		var m Memo[int]
		calls := 0
		fn := func() (int, error) {
			calls++
			return 42, nil
		}
		for range 3 {
			v, err := m.Do("k", fn)
			if err != nil || v != 42 {
				t.Fatalf("expected 42, got %d, %v", v, err)
			}
		}
		if calls != 1 {
			t.Errorf("expected one computation, got %d", calls)
		}
	})

	t.Run("errors are memoized too", func(t *testing.T) {
		t.Parallel()
		var m Memo[string]
		errBoom := errors.New("boom")
		calls := 0
		for range 2 {
			_, err := m.Do("k", func() (string, error) {
				calls++
				return "", errBoom
			})
			if !errors.Is(err, errBoom) {
				t.Fatalf("expected errBoom, got %v", err)
			}
		}
		if calls != 1 {
			t.Errorf("expected one computation, got %d", calls)
		}
	})

	t.Run("distinct keys are computed separately", func(t *testing.T) {
		t.Parallel()
		var m Memo[string]
		a, _ := m.Do("a", func() (string, error) { return "A", nil })
		b, _ := m.Do("b", func() (string, error) { return "B", nil })
		if a != "A" || b != "B" || m.Len() != 2 {
			t.Errorf("unexpected values %q %q (len %d)", a, b, m.Len())
		}
		if _, _, ok := m.Get("c"); ok {
			t.Error("expected Get on an unknown key to miss")
		}
	})

	t.Run("concurrent callers of one key collapse into one computation", func(t *testing.T) {
		t.Parallel()
		var m Memo[int]
		var calls atomic.Int32
		var wg sync.WaitGroup
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, _ := m.Do("same", func() (int, error) {
					calls.Add(1)
					time.Sleep(20 * time.Millisecond)
					return 7, nil
				})
				if v != 7 {
					t.Errorf("expected 7, got %d", v)
				}
			}()
		}
		wg.Wait()
		if calls.Load() != 1 {
			t.Errorf("expected one computation, got %d", calls.Load())
		}
		if m.Computations() != 1 {
			t.Errorf("expected Computations() == 1, got %d", m.Computations())
		}
	})
}
