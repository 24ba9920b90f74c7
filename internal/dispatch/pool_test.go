package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novatable/internal/metrics"
)

type funcTask func()

func (f funcTask) Execute() { f() }

func TestPool_RunsEveryTask(t *testing.T) {
	p := NewPool(4, nil)
	p.Start()

	var (
		ran atomic.Int32
		wg  sync.WaitGroup
	)
	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, p.Submit(funcTask(func() {
			ran.Add(1)
			wg.Done()
		})))
	}
	wg.Wait()
	require.Equal(t, int32(n), ran.Load())
	require.NoError(t, p.Shutdown())
}

func TestPool_DefaultWorkers(t *testing.T) {
	require.Equal(t, DefaultWorkers, NewPool(0, nil).Workers())
	require.Equal(t, 3, NewPool(3, nil).Workers())
}

func TestPool_WorkersRunInParallel(t *testing.T) {
	p := NewPool(4, nil)
	p.Start()
	defer func() { _ = p.Shutdown() }()

	var (
		active, peak atomic.Int32
		wg           sync.WaitGroup
		gate         = make(chan struct{})
	)
	wg.Add(4)
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(funcTask(func() {
			defer wg.Done()
			cur := active.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			<-gate
			active.Add(-1)
		})))
	}

	require.Eventually(t, func() bool { return peak.Load() == 4 }, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p := NewPool(1, nil)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(funcTask(func() { ran.Add(1) })))
	}
	p.Start()
	require.NoError(t, p.Shutdown())
	require.Equal(t, int32(10), ran.Load())

	err := p.Submit(funcTask(func() {}))
	require.True(t, errors.Is(err, ErrQueueClosed))

	// second shutdown is a no-op
	require.NoError(t, p.Shutdown())
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	m := metrics.New()
	p := NewPool(1, m)
	p.Start()

	done := make(chan struct{})
	require.NoError(t, p.Submit(funcTask(func() { panic("boom") })))
	require.NoError(t, p.Submit(funcTask(func() { close(done) })))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after a panicking task")
	}
	require.NoError(t, p.Shutdown())

	samples, err := m.Samples()
	require.NoError(t, err)
	for _, s := range samples {
		if s.Name == "novatable_task_panics_total" {
			require.Equal(t, 1.0, s.Value)
			return
		}
	}
	t.Fatal("panic counter missing")
}
