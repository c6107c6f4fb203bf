package tree

import (
	"github.com/baekhyunee7/fxkv/internal/paging"
	"github.com/baekhyunee7/fxkv/pkg/keyrange"
)

// The operations below mutate or read the writer version and must only be
// called while the owning transaction holds the tree lock. Keeping the writer
// authoritative inside the transaction gives read-your-writes without
// exposing uncommitted mutations to concurrent readers.

// Pair is one key/value result of a Scan, in key order.
type Pair struct {
	Key   []byte
	Value []byte
}

// Set appends value to the payload file and points the writer index at it.
func (t *Tree) Set(key, value []byte) error {
	offset, length, err := paging.AppendValue(t.handle, value)
	if err != nil {
		return err
	}
	item := Item{Key: append([]byte(nil), key...), Offset: offset, Length: length}
	t.writer.index.ReplaceOrInsert(item)
	t.writer.dirty = true
	return nil
}

// Get returns the value for key as the writer version sees it, or ok=false
// when the key is absent. Values are resolved through the offset-keyed cache
// first and read through from the payload file on a miss.
func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	item, ok := t.writer.Lookup(key)
	if !ok {
		return nil, false, nil
	}
	value, err := t.resolve(item)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Remove deletes key from the writer index and returns the prior value, or
// ok=false when the key was absent.
func (t *Tree) Remove(key []byte) ([]byte, bool, error) {
	item, ok := t.writer.index.Delete(Item{Key: key})
	if !ok {
		return nil, false, nil
	}
	t.writer.dirty = true
	value, err := t.resolve(item)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Scan iterates the writer version over the given key range and resolves
// every value exactly as Get does. Results preserve key order.
func (t *Tree) Scan(r keyrange.Range) ([]Pair, error) {
	var items []Item
	collect := func(item Item) bool {
		if r.BeyondEnd(item.Key) {
			return false
		}
		if r.Contains(item.Key) {
			items = append(items, item)
		}
		return true
	}
	switch r.Start.Kind {
	case keyrange.BoundUnbounded:
		t.writer.index.Ascend(collect)
	default:
		t.writer.index.AscendGreaterOrEqual(Item{Key: r.Start.Key}, collect)
	}

	pairs := make([]Pair, 0, len(items))
	for _, item := range items {
		value, err := t.resolve(item)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: item.Key, Value: value})
	}
	return pairs, nil
}

// resolve turns an index entry into value bytes: cache probe by offset, then
// a payload-file read that repopulates the cache.
func (t *Tree) resolve(item Item) ([]byte, error) {
	if value, ok := t.cache.Get(item.Offset); ok {
		return value, nil
	}
	value, err := paging.ReadValue(t.handle, item.Offset, item.Length)
	if err != nil {
		return nil, err
	}
	t.cache.Put(item.Offset, value)
	return value, nil
}
