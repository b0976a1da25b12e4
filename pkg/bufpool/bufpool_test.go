package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSizeClasses(t *testing.T) {
	tests := []struct {
		name    string
		request int
		wantCap int // 0 means exact allocation, no tier
	}{
		{"ZeroSize", 0, DefaultSmallSize},
		{"SmallRequest", 100, DefaultSmallSize},
		{"ExactSmall", DefaultSmallSize, DefaultSmallSize},
		{"JustAboveSmall", DefaultSmallSize + 1, DefaultMediumSize},
		{"MediumRequest", 10 * 1024, DefaultMediumSize},
		{"ExactMedium", DefaultMediumSize, DefaultMediumSize},
		{"JustAboveMedium", DefaultMediumSize + 1, DefaultLargeSize},
		{"LargeRequest", 100 * 1024, DefaultLargeSize},
		{"ExactLarge", DefaultLargeSize, DefaultLargeSize},
		{"Oversized", 2 * 1024 * 1024, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Get(tt.request)
			defer Put(buf)

			assert.Equal(t, tt.request, len(buf))
			if tt.wantCap == 0 {
				assert.Equal(t, tt.request, cap(buf))
			} else {
				assert.Equal(t, tt.wantCap, cap(buf))
			}
		})
	}
}

func TestPut(t *testing.T) {
	t.Run("ReturnedBufferIsReused", func(t *testing.T) {
		buf := Get(1024)
		Put(buf)

		again := Get(1024)
		defer Put(again)

		assert.Equal(t, cap(buf), cap(again))
	})

	t.Run("OversizedBufferIsNotPooled", func(t *testing.T) {
		buf := Get(2 * 1024 * 1024)
		Put(buf)

		again := Get(2 * 1024 * 1024)
		defer Put(again)

		assert.Equal(t, len(again), cap(again))
	})

	t.Run("ToleratesForeignBuffers", func(t *testing.T) {
		// nil, empty, and off-tier slices must all be safe to Put: the
		// pool silently drops anything it did not hand out.
		require.NotPanics(t, func() {
			Put(nil)
			Put([]byte{})
			Put(make([]byte, 333))
			Put(make([]byte, DefaultSmallSize))
		})
	})
}

func TestNewPool(t *testing.T) {
	t.Run("CustomTiers", func(t *testing.T) {
		pool := NewPool(&Config{
			SmallSize:  1024,
			MediumSize: 8192,
			LargeSize:  65536,
		})

		for request, wantCap := range map[int]int{
			500:   1024,
			2000:  8192,
			10000: 65536,
		} {
			buf := pool.Get(request)
			assert.Equal(t, wantCap, cap(buf))
			pool.Put(buf)
		}
	})

	t.Run("ChunkSizedLargeTier", func(t *testing.T) {
		// The chunk handler sizes its large tier to chunk size plus one
		// byte so oversized-chunk detection stays inside the pool.
		chunkSize := 256 * 1024
		pool := NewPool(&Config{LargeSize: chunkSize + 1})

		buf := pool.Get(chunkSize + 1)
		assert.Equal(t, chunkSize+1, cap(buf))
		pool.Put(buf)

		again := pool.Get(chunkSize + 1)
		assert.Equal(t, chunkSize+1, cap(again))
		pool.Put(again)
	})

	t.Run("NilAndZeroConfigsUseDefaults", func(t *testing.T) {
		for _, cfg := range []*Config{nil, {}} {
			pool := NewPool(cfg)
			buf := pool.Get(100)
			assert.Equal(t, DefaultSmallSize, cap(buf))
			pool.Put(buf)
		}
	})
}

func TestConcurrentUse(t *testing.T) {
	const workers = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < iterations; j++ {
				buf := Get((id*100 + j) % (500 * 1024))
				for k := range buf {
					buf[k] = byte(id)
				}
				Put(buf)
			}
		}(i)
	}

	wg.Wait()
}

func BenchmarkGet(b *testing.B) {
	b.Run("Medium", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := Get(32 * 1024)
			Put(buf)
		}
	})

	b.Run("Large", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := Get(512 * 1024)
			Put(buf)
		}
	})
}
