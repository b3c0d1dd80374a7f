package sharelink

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC)

// counter hands out 0, 1, 2, ... as id suffixes
func counter() func() int {
	var mu sync.Mutex
	n := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		n++
		return n - 1
	}
}

func TestNewID(t *testing.T) {
	assert.Equal(t, "202403090705030042", NewID(fixedNow, 42))
	assert.Equal(t, "202403090705030000", NewID(fixedNow, 10000))
	assert.Equal(t, "202403090705039999", NewID(fixedNow, -1))
	assert.Equal(t, "202403090705030001", NewID(fixedNow, -19999))

	local := fixedNow.In(time.FixedZone("UTC+8", 8*3600))
	assert.Equal(t, "202403090705039999", NewID(local, 9999))
}

func TestStoreResolveRoundTrip(t *testing.T) {
	c := New(DefaultCapacity, zaptest.NewLogger(t))

	id, err := c.Store("笔记")
	require.NoError(t, err)
	assert.Len(t, id, 18)
	assert.Equal(t, "笔记", c.Resolve(id))
	assert.Equal(t, 1, c.Len())
}

func TestResolveUnknown(t *testing.T) {
	c := New(DefaultCapacity, nil)
	assert.Equal(t, "", c.Resolve("20240309070503000"))
	assert.Equal(t, "", c.Resolve(""))
}

func TestFIFOEvictionAfterCapacity(t *testing.T) {
	c := New(DefaultCapacity, nil, WithClock(func() time.Time { return fixedNow }), WithSuffixSource(counter()))

	ids := make([]string, 0, 101)
	for i := 0; i < 101; i++ {
		id, err := c.Store(fmt.Sprintf("sentence %d", i))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, "", c.Resolve(ids[0]), "first id is evicted")
	assert.Equal(t, "sentence 1", c.Resolve(ids[1]))
	assert.Equal(t, "sentence 100", c.Resolve(ids[100]))
	assert.Equal(t, DefaultCapacity, c.Len())
}

func TestEvictionIgnoresAccess(t *testing.T) {
	c := New(2, nil, WithSuffixSource(counter()))

	first, err := c.Store("a")
	require.NoError(t, err)
	_, err = c.Store("b")
	require.NoError(t, err)

	// reading does not promote the entry
	assert.Equal(t, "a", c.Resolve(first))

	_, err = c.Store("c")
	require.NoError(t, err)
	assert.Equal(t, "", c.Resolve(first))
}

func TestCollisionDrawsAnotherSuffix(t *testing.T) {
	seq := []int{7, 7, 8}
	i := 0
	c := New(10, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithSuffixSource(func() int { v := seq[i%len(seq)]; i++; return v }))

	a, err := c.Store("first")
	require.NoError(t, err)
	b, err := c.Store("second")
	require.NoError(t, err)

	assert.Equal(t, "202403090705030007", a)
	assert.Equal(t, "202403090705030008", b)
	assert.Equal(t, "first", c.Resolve(a))
	assert.Equal(t, "second", c.Resolve(b))
}

func TestCollisionExhaustion(t *testing.T) {
	c := New(10, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithSuffixSource(func() int { return 1 }))

	_, err := c.Store("first")
	require.NoError(t, err)

	_, err = c.Store("second")
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentStores(t *testing.T) {
	c := New(50, nil, WithSuffixSource(counter()))

	var wg sync.WaitGroup
	results := make(chan string, 200)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id, err := c.Store(fmt.Sprintf("%d-%d", g, i))
				if err == nil {
					results <- id
				}
			}
		}(g)
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{})
	for id := range results {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 200)
	assert.Equal(t, 50, c.Len())
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t,
		"http://example.com:5010?auto_sentence_id=202403090705030042",
		BuildURL("example.com:5010", "202403090705030042"))
}

func TestNewDefaultsCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0, nil).Capacity())
}
