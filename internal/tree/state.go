package tree

import (
	"bytes"

	"github.com/google/btree"
)

// btreeDegree sizes the B-tree nodes of the in-memory index.
const btreeDegree = 32

// Item is one index entry: a key and the location of its current value in
// the tree's payload file.
type Item struct {
	Key    []byte
	Offset uint64
	Length uint64
}

func lessItem(a, b Item) bool {
	return bytes.Compare(a.Key, b.Key) < 0
}

// VersionedState is one in-memory version of a tree's index together with
// the dirty flag tracking whether it diverged from what is on disk.
//
// Each tree holds two: the reader (the last published committed snapshot,
// served to concurrent readers) and the writer (the working copy mutated by
// the transaction currently holding the tree lock). Cloning is cheap: the
// underlying B-tree is copy-on-write, so a clone shares every node until one
// side mutates it. That makes publish-on-commit and reset-on-abort both O(1).
type VersionedState struct {
	index *btree.BTreeG[Item]
	dirty bool
}

func newState() *VersionedState {
	return &VersionedState{index: btree.NewG(btreeDegree, lessItem)}
}

func (s *VersionedState) clone() *VersionedState {
	return &VersionedState{index: s.index.Clone(), dirty: s.dirty}
}

// Len returns the number of keys in this version of the index.
func (s *VersionedState) Len() int {
	return s.index.Len()
}

// Lookup returns the index entry for key, if present.
func (s *VersionedState) Lookup(key []byte) (Item, bool) {
	return s.index.Get(Item{Key: key})
}
