package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutualExclusion(t *testing.T) {
	l := New()
	var wg sync.WaitGroup

	// 100 goroutines bumping an unguarded counter only stays exact when the
	// lock really is one-holder.
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Lock())
			counter++
			l.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 100, counter)
}

func TestTryLock(t *testing.T) {
	l := New()
	require.True(t, l.TryLock())
	require.False(t, l.TryLock())
	l.Unlock()
	require.True(t, l.TryLock())
	l.Unlock()
}

func TestContendedWaiterBlocksUntilRelease(t *testing.T) {
	l := New()
	require.NoError(t, l.Lock())

	acquired := make(chan struct{})
	go func() {
		_ = l.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("waiter acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	l.Unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never woke after release")
	}
	l.Unlock()
}

func TestAllWaitersEventuallyAcquire(t *testing.T) {
	l := New()
	require.NoError(t, l.Lock())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Lock())
			l.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	l.Unlock()
	wg.Wait()
}
