package keyrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	r := Range{Start: Included([]byte("b")), End: Excluded([]byte("d"))}

	require.False(t, r.Contains([]byte("a")))
	require.True(t, r.Contains([]byte("b")))
	require.True(t, r.Contains([]byte("c")))
	require.False(t, r.Contains([]byte("d")))
}

func TestExcludedStart(t *testing.T) {
	r := Range{Start: Excluded([]byte("b")), End: Unbounded()}

	require.False(t, r.Contains([]byte("b")))
	require.True(t, r.Contains([]byte("ba")))
}

func TestAllContainsEverything(t *testing.T) {
	r := All()
	require.True(t, r.Contains(nil))
	require.True(t, r.Contains([]byte("anything")))
}

func TestBeyondEnd(t *testing.T) {
	inclusive := Range{Start: Unbounded(), End: Included([]byte("c"))}
	require.False(t, inclusive.BeyondEnd([]byte("c")))
	require.True(t, inclusive.BeyondEnd([]byte("ca")))

	exclusive := Range{Start: Unbounded(), End: Excluded([]byte("c"))}
	require.True(t, exclusive.BeyondEnd([]byte("c")))
	require.False(t, exclusive.BeyondEnd([]byte("b")))

	open := All()
	require.False(t, open.BeyondEnd([]byte("zzz")))
}
