package admins

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	ids   []int64
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (s *stubSource) ListPrivilegedIDs(ctx context.Context) ([]int64, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.ids...), s.err
}

func (s *stubSource) set(ids []int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = ids
	s.err = err
}

func TestRefreshLoadsIDs(t *testing.T) {
	src := &stubSource{ids: []int64{9, 3, 5}}
	cache := NewCache(src, nil)

	assert.True(t, cache.Stale(time.Hour))
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Equal(t, []int64{3, 5, 9}, cache.IDs())
	assert.True(t, cache.Contains(5))
	assert.False(t, cache.Contains(4))
	assert.False(t, cache.Stale(time.Hour))
}

func TestRefreshFailureKeepsPreviousSet(t *testing.T) {
	src := &stubSource{ids: []int64{1}}
	cache := NewCache(src, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	src.set(nil, errors.New("db down"))
	assert.Error(t, cache.Refresh(context.Background()))
	assert.Equal(t, []int64{1}, cache.IDs())
}

func TestIDsReturnsCopy(t *testing.T) {
	cache := NewCache(&stubSource{ids: []int64{1, 2}}, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	ids := cache.IDs()
	ids[0] = 100
	assert.Equal(t, []int64{1, 2}, cache.IDs())
}

func TestStaleUsesClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(&stubSource{}, nil)
	cache.now = func() time.Time { return now }
	require.NoError(t, cache.Refresh(context.Background()))

	now = now.Add(2 * time.Minute)
	assert.False(t, cache.Stale(5*time.Minute))
	assert.True(t, cache.Stale(time.Minute))
}

func TestConcurrentRefreshDeduplicates(t *testing.T) {
	src := &stubSource{ids: []int64{1}, gate: make(chan struct{})}
	cache := NewCache(src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Refresh(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Less(t, src.calls.Load(), int32(8))
	assert.Equal(t, []int64{1}, cache.IDs())
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &stubSource{ids: []int64{7}}
	cache := NewCache(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, time.Millisecond)
	assert.True(t, cache.Contains(7))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
