package files

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baekhyunee7/fxkv/pkg/logger"
)

func TestGetOrOpenIsIdempotent(t *testing.T) {
	m := New(&Config{Dir: t.TempDir(), Logger: logger.NewNop()})
	defer func() { _ = m.CloseAll() }()

	first, err := m.GetOrOpen(TreeFileName("t1"))
	require.NoError(t, err)
	second, err := m.GetOrOpen(TreeFileName("t1"))
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestConcurrentOpenersShareTheHandle(t *testing.T) {
	m := New(&Config{Dir: t.TempDir(), Logger: logger.NewNop()})
	defer func() { _ = m.CloseAll() }()

	var wg sync.WaitGroup
	handles := make([]*Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := m.GetOrOpen(LogFileName)
			require.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range handles[1:] {
		require.Same(t, handles[0], h)
	}
}

func TestOpenCreatesTheFile(t *testing.T) {
	dir := t.TempDir()
	m := New(&Config{Dir: dir, Logger: logger.NewNop()})
	defer func() { _ = m.CloseAll() }()

	h, err := m.GetOrOpen(TreeFileName("fresh"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "fresh.tree"), h.Path())

	_, err = os.Stat(h.Path())
	require.NoError(t, err)
}

func TestWriteAndReadThroughHandle(t *testing.T) {
	m := New(&Config{Dir: t.TempDir(), Logger: logger.NewNop()})
	defer func() { _ = m.CloseAll() }()

	h, err := m.GetOrOpen(TreeFileName("t"))
	require.NoError(t, err)

	require.NoError(t, h.Write(func(f *os.File) error {
		_, err := f.WriteAt([]byte("hello"), 0)
		return err
	}))

	buf := make([]byte, 5)
	require.NoError(t, h.Read(func(f *os.File) error {
		_, err := f.ReadAt(buf, 0)
		return err
	}))
	require.Equal(t, []byte("hello"), buf)
}
