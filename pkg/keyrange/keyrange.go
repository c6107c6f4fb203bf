// Package keyrange describes key intervals for tree scans. A Range carries a
// start and an end Bound, each of which is inclusive, exclusive or unbounded,
// so callers can express every half-open combination over the lexicographic
// key order.
package keyrange

import "bytes"

// BoundKind discriminates the three ways a scan endpoint can be specified.
type BoundKind uint8

const (
	// BoundUnbounded leaves the endpoint open.
	BoundUnbounded BoundKind = iota
	// BoundIncluded includes the endpoint key in the range.
	BoundIncluded
	// BoundExcluded excludes the endpoint key from the range.
	BoundExcluded
)

// Bound is one endpoint of a Range.
type Bound struct {
	Kind BoundKind
	Key  []byte
}

// Included returns a bound that contains key itself.
func Included(key []byte) Bound {
	return Bound{Kind: BoundIncluded, Key: key}
}

// Excluded returns a bound that stops just before (or starts just after) key.
func Excluded(key []byte) Bound {
	return Bound{Kind: BoundExcluded, Key: key}
}

// Unbounded returns an open endpoint.
func Unbounded() Bound {
	return Bound{Kind: BoundUnbounded}
}

// Range is a key interval over the lexicographic byte order.
type Range struct {
	Start Bound
	End   Bound
}

// All returns the range covering every key.
func All() Range {
	return Range{Start: Unbounded(), End: Unbounded()}
}

// Contains reports whether key falls inside the range.
func (r Range) Contains(key []byte) bool {
	switch r.Start.Kind {
	case BoundIncluded:
		if bytes.Compare(key, r.Start.Key) < 0 {
			return false
		}
	case BoundExcluded:
		if bytes.Compare(key, r.Start.Key) <= 0 {
			return false
		}
	}
	switch r.End.Kind {
	case BoundIncluded:
		if bytes.Compare(key, r.End.Key) > 0 {
			return false
		}
	case BoundExcluded:
		if bytes.Compare(key, r.End.Key) >= 0 {
			return false
		}
	}
	return true
}

// BeyondEnd reports whether key lies past the range's end bound; iteration in
// key order can stop at the first key for which this is true.
func (r Range) BeyondEnd(key []byte) bool {
	switch r.End.Kind {
	case BoundIncluded:
		return bytes.Compare(key, r.End.Key) > 0
	case BoundExcluded:
		return bytes.Compare(key, r.End.Key) >= 0
	default:
		return false
	}
}
