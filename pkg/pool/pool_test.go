package pool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecvReturnsResults(t *testing.T) {
	p := New(5)
	defer p.Close()

	results := make([]int, 100)
	for i := 0; i < 100; i++ {
		v, err := Recv(p, func() int { return i * i })
		require.NoError(t, err)
		results[i] = v
	}
	for i, v := range results {
		require.Equal(t, i*i, v)
	}
}

func TestScopedJoinsAllTasks(t *testing.T) {
	p := New(5)
	defer p.Close()

	var counter atomic.Int64
	err := p.Scoped(func(s *Scope) {
		for i := 0; i < 100; i++ {
			s.Spawn(func() error {
				counter.Add(1)
				return nil
			})
		}
	})
	require.NoError(t, err)
	// Scoped must not return before every spawned task ran.
	require.Equal(t, int64(100), counter.Load())
}

func TestRecvSurfacesPanics(t *testing.T) {
	p := New(2)
	defer p.Close()

	_, err := Recv(p, func() int { panic("boom") })
	require.Error(t, err)

	// The worker survived the panic and keeps serving tasks.
	v, err := Recv(p, func() int { return 7 })
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestScopedPropagatesTaskErrors(t *testing.T) {
	p := New(2)
	defer p.Close()

	err := p.Scoped(func(s *Scope) {
		s.Spawn(func() error { return nil })
		s.Spawn(func() error { panic("scoped boom") })
	})
	require.Error(t, err)
}

func TestSubmitRunsTask(t *testing.T) {
	p := New(1)

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	<-done
	p.Close()
}
