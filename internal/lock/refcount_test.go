package locking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefCount_LastReleaseReportsTrue(t *testing.T) {
	r := NewRefCount()
	r.Acquire()
	r.Acquire()
	require.Equal(t, "holders=3", r.String())

	require.False(t, r.Release())
	require.False(t, r.Release())
	require.True(t, r.Release())
	require.Equal(t, int32(0), r.Held())
}

func TestRefCount_ExactlyOneLast(t *testing.T) {
	r := NewRefCount()
	const n = 64
	for i := 0; i < n; i++ {
		r.Acquire()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		last int
	)
	for i := 0; i < n+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Release() {
				mu.Lock()
				last++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, last)
}

func TestRefCount_MisusePanics(t *testing.T) {
	r := NewRefCount()
	require.True(t, r.Release())
	require.Panics(t, func() { r.Release() })

	released := NewRefCount()
	released.Release()
	require.Panics(t, func() { released.Acquire() })
}
