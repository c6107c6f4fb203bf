package tree

import (
	"encoding/json"

	"github.com/google/btree"

	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// snapshotEntry is the serialized form of one index entry. Keys are raw
// bytes, which encoding/json carries as base64; offsets and lengths are plain
// numbers. A snapshot body is the JSON array of entries in key order, so a
// snapshot stays human-debuggable with nothing more than base64 in hand.
type snapshotEntry struct {
	Key    []byte `json:"k"`
	Offset uint64 `json:"o"`
	Length uint64 `json:"l"`
}

// encodeIndex serializes a state's index as a snapshot body.
func encodeIndex(s *VersionedState) ([]byte, error) {
	entries := make([]snapshotEntry, 0, s.index.Len())
	s.index.Ascend(func(item Item) bool {
		entries = append(entries, snapshotEntry{Key: item.Key, Offset: item.Offset, Length: item.Length})
		return true
	})
	body, err := json.Marshal(entries)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeSerialization, "Failed to encode index snapshot")
	}
	return body, nil
}

// decodeIndex rebuilds an index from a snapshot body. A body that fails to
// decode means the file is damaged; the error carries the serialization code
// and is fatal to recovery.
func decodeIndex(body []byte) (*btree.BTreeG[Item], error) {
	var entries []snapshotEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeSerialization, "Failed to decode index snapshot body")
	}
	index := btree.NewG(btreeDegree, lessItem)
	for _, entry := range entries {
		index.ReplaceOrInsert(Item{Key: entry.Key, Offset: entry.Offset, Length: entry.Length})
	}
	return index, nil
}
