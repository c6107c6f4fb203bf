// Package paging implements the on-disk format shared by tree payload files
// and the transaction log: fixed 1024-byte pages, each self-described by a
// one-byte type tag.
//
// Three page kinds exist. A snapshot page (0x01) starts an index-snapshot
// record: a big-endian 4-byte body length follows the tag (and, in the
// transaction log, a big-endian 8-byte transaction id follows the length),
// then the body itself, spilling onto continuation pages tagged 0x00. A
// payload page (0x02) holds raw value bytes packed end to end; a value
// crossing a page boundary continues after a 0x02 tag on the next page.
//
// Because writers only append, the newest snapshot is the last 0x01 page in
// the file. Recovery rounds the file length up to a page boundary and walks
// backwards one page at a time until it finds that tag, then reads the body
// forward. Payload regions are skipped by tag alone; their content is never
// parsed. This keeps recovery proportional to the snapshot size plus the tail
// walk, independent of how much data the file holds.
package paging

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/baekhyunee7/fxkv/internal/files"
	"github.com/baekhyunee7/fxkv/pkg/errors"
)

const (
	// PageLen is the fixed page size of payload and log files.
	PageLen = 1024

	// TagContinuation marks a page continuing the body of a snapshot record.
	TagContinuation byte = 0x00
	// TagSnapshot marks the first page of an index snapshot or log record.
	TagSnapshot byte = 0x01
	// TagPayload marks a page of packed value bytes.
	TagPayload byte = 0x02

	// snapshotHeaderLen covers the tag plus the 4-byte body length.
	snapshotHeaderLen = 5
	// recordHeaderLen additionally covers the 8-byte transaction id.
	recordHeaderLen = 13

	// maxBodyLen is the largest body a snapshot record can frame.
	maxBodyLen = math.MaxUint32
)

// roundUp rounds n up to the next page boundary.
func roundUp(n int64) int64 {
	return ((n + PageLen - 1) / PageLen) * PageLen
}

// AppendValue appends value bytes to the handle's file and returns the file
// offset of the first value byte together with the value length.
//
// Appends are packed: when the file's last page is already a payload page,
// the bytes extend it with no header. When the last page is a snapshot or
// continuation page, the writer pads up to the page boundary and begins a
// fresh payload page. A 0x02 tag is inserted at every page boundary the value
// crosses.
func AppendValue(h *files.Handle, value []byte) (offset uint64, length uint64, err error) {
	err = h.Write(func(f *os.File) error {
		stat, err := f.Stat()
		if err != nil {
			return wrapIO(err, h, "Failed to stat file before append")
		}
		size := stat.Size()

		writeStart := size
		fresh := size%PageLen == 0
		if !fresh {
			// Inspect the tag of the page the file currently ends inside.
			var tag [1]byte
			pageStart := size - size%PageLen
			if _, err := f.ReadAt(tag[:], pageStart); err != nil {
				return wrapIO(err, h, "Failed to read page tag before append")
			}
			if tag[0] != TagPayload {
				writeStart = roundUp(size)
				fresh = true
			}
		}

		buf := make([]byte, 0, len(value)+len(value)/PageLen+2)
		cur := writeStart
		if fresh {
			buf = append(buf, TagPayload)
			cur++
		}
		offset = uint64(cur)

		remaining := value
		for len(remaining) > 0 {
			if cur%PageLen == 0 {
				buf = append(buf, TagPayload)
				cur++
			}
			room := PageLen - cur%PageLen
			n := int64(len(remaining))
			if n > room {
				n = room
			}
			buf = append(buf, remaining[:n]...)
			remaining = remaining[n:]
			cur += n
		}

		if _, err := f.WriteAt(buf, writeStart); err != nil {
			return wrapIO(err, h, "Failed to append value").WithOffset(writeStart)
		}
		length = uint64(len(value))
		return nil
	})
	return offset, length, err
}

// ReadValue reads length bytes of a value starting at the given offset,
// skipping the payload tag byte at every page boundary the value crossed.
func ReadValue(h *files.Handle, offset, length uint64) ([]byte, error) {
	out := make([]byte, length)
	err := h.Read(func(f *os.File) error {
		cur := int64(offset)
		done := int64(0)
		for done < int64(length) {
			if cur%PageLen == 0 {
				cur++
			}
			room := PageLen - cur%PageLen
			n := int64(length) - done
			if n > room {
				n = room
			}
			if _, err := f.ReadAt(out[done:done+n], cur); err != nil {
				return wrapIO(err, h, "Failed to read value bytes").WithOffset(cur)
			}
			done += n
			cur += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteSnapshot appends an index-snapshot record: 0x01, the big-endian body
// length, then the body split across pages with 0x00 continuation tags. The
// write is synced before returning; a snapshot that has not reached disk must
// not be observable after recovery.
func WriteSnapshot(h *files.Handle, body []byte) error {
	header := make([]byte, snapshotHeaderLen)
	header[0] = TagSnapshot
	binary.BigEndian.PutUint32(header[1:5], uint32(len(body)))
	return writeFramed(h, header, body)
}

// WriteRecord appends a transaction-log record: the snapshot layout with the
// big-endian transaction id between the length and the body. The body may be
// empty; the record then occupies the 13 header bytes of one page.
func WriteRecord(h *files.Handle, id uint64, body []byte) error {
	header := make([]byte, recordHeaderLen)
	header[0] = TagSnapshot
	binary.BigEndian.PutUint32(header[1:5], uint32(len(body)))
	binary.BigEndian.PutUint64(header[5:13], id)
	return writeFramed(h, header, body)
}

func writeFramed(h *files.Handle, header, body []byte) error {
	if uint64(len(body)) > maxBodyLen {
		return errors.NewValidationError(nil, errors.ErrorCodeInvalidInput, "Snapshot body exceeds the frameable maximum").
			WithField("body").
			WithRule("maxLength").
			WithProvided(len(body))
	}
	return h.Write(func(f *os.File) error {
		stat, err := f.Stat()
		if err != nil {
			return wrapIO(err, h, "Failed to stat file before snapshot write")
		}
		start := roundUp(stat.Size())

		buf := make([]byte, 0, len(header)+len(body)+len(body)/PageLen+1)
		buf = append(buf, header...)
		cur := start + int64(len(header))

		remaining := body
		for len(remaining) > 0 {
			if cur%PageLen == 0 {
				buf = append(buf, TagContinuation)
				cur++
			}
			room := PageLen - cur%PageLen
			n := int64(len(remaining))
			if n > room {
				n = room
			}
			buf = append(buf, remaining[:n]...)
			remaining = remaining[n:]
			cur += n
		}

		if _, err := f.WriteAt(buf, start); err != nil {
			return wrapIO(err, h, "Failed to write snapshot record").WithOffset(start)
		}
		if err := f.Sync(); err != nil {
			return wrapIO(err, h, "Failed to sync snapshot record")
		}
		return nil
	})
}

// RecoverSnapshot locates the newest index snapshot by reverse scan and
// returns its body. found is false when the file holds no snapshot record
// (including the empty-file case); the recovered index is then empty.
func RecoverSnapshot(h *files.Handle) (body []byte, found bool, err error) {
	err = h.Read(func(f *os.File) error {
		_, b, ok, err := recoverFramed(f, h, snapshotHeaderLen)
		if err != nil {
			return err
		}
		body, found = b, ok
		return nil
	})
	return body, found, err
}

// RecoverRecord locates the newest transaction-log record by reverse scan and
// returns its transaction id and body. found is false for an empty log.
func RecoverRecord(h *files.Handle) (id uint64, body []byte, found bool, err error) {
	err = h.Read(func(f *os.File) error {
		header, b, ok, err := recoverFramed(f, h, recordHeaderLen)
		if err != nil {
			return err
		}
		if ok {
			id = binary.BigEndian.Uint64(header[5:13])
		}
		body, found = b, ok
		return nil
	})
	return id, body, found, err
}

// recoverFramed walks backwards page by page to the last 0x01 page, then
// reads the record body forward, asserting 0x00 tags on continuation pages.
func recoverFramed(f *os.File, h *files.Handle, headerLen int64) (header []byte, body []byte, found bool, err error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, nil, false, wrapIO(err, h, "Failed to stat file during recovery")
	}
	if stat.Size() == 0 {
		return nil, nil, false, nil
	}

	pos := roundUp(stat.Size())
	var tag [1]byte
	for {
		if pos < PageLen {
			// Every page was payload or continuation: no record to recover.
			return nil, nil, false, nil
		}
		pos -= PageLen
		if _, err := f.ReadAt(tag[:], pos); err != nil {
			return nil, nil, false, wrapIO(err, h, "Failed to read page tag during recovery").WithOffset(pos)
		}
		if tag[0] == TagSnapshot {
			break
		}
	}

	header = make([]byte, headerLen)
	if _, err := f.ReadAt(header, pos); err != nil {
		return nil, nil, false, wrapRecovery(err, h, "Failed to read record header", pos)
	}
	total := int64(binary.BigEndian.Uint32(header[1:5]))

	body = make([]byte, total)
	offset := int64(0)
	cur := pos + headerLen
	first := true
	for total > 0 {
		var room int64
		if first {
			room = PageLen - headerLen
			first = false
		} else {
			if _, err := f.ReadAt(tag[:], cur); err != nil {
				return nil, nil, false, wrapRecovery(err, h, "Failed to read continuation tag", cur)
			}
			if tag[0] != TagContinuation {
				return nil, nil, false, errors.NewStorageError(
					nil, errors.ErrorCodeSerialization, "Snapshot body interrupted by a non-continuation page",
				).WithFileName(h.Name()).WithPath(h.Path()).WithOffset(cur)
			}
			cur++
			room = PageLen - 1
		}
		n := total
		if n > room {
			n = room
		}
		if _, err := f.ReadAt(body[offset:offset+n], cur); err != nil {
			return nil, nil, false, wrapRecovery(err, h, "Failed to read record body", cur)
		}
		total -= n
		offset += n
		cur += n
	}
	return header, body, true, nil
}

func wrapIO(err error, h *files.Handle, msg string) *errors.StorageError {
	return errors.NewStorageError(err, errors.ErrorCodeIO, msg).
		WithFileName(h.Name()).
		WithPath(h.Path())
}

func wrapRecovery(err error, h *files.Handle, msg string, offset int64) *errors.StorageError {
	return errors.NewStorageError(err, errors.ErrorCodeRecoveryFailed, msg).
		WithFileName(h.Name()).
		WithPath(h.Path()).
		WithOffset(offset)
}
