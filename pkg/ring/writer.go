package ring

import (
	"github.com/ssargent/ringlog/pkg/codec"
)

// Append encodes one log event and writes it into the arena, returning the
// physical offset the record was written at.
//
// Append never blocks and never fails on a full buffer: the claimed range may
// cover bytes the reader has not drained yet, and overwriting them is the
// documented lossy behavior. The only append-side failure is a record that
// could not fit even in an empty arena, which is dropped with
// ErrRecordTooLarge.
func (r *RingStore) Append(level uint8, savedErrno int32, message, detail, hint []byte) (int, error) {
	rec := codec.NewRecord(level, savedErrno, message, detail, hint)
	return r.AppendRecord(rec)
}

// AppendRecord writes an already-built record. Callers normally use Append.
func (r *RingStore) AppendRecord(rec *codec.Record) (int, error) {
	buf, err := r.codec.Encode(rec)
	if err != nil {
		return 0, err
	}

	offset, err := r.Claim(len(buf))
	if err != nil {
		return 0, err
	}

	// The split mirrors the drain loop exactly: header contiguous at the
	// claimed offset, payload continuing at the arena start when the
	// record runs past the physical end.
	capacity := r.Capacity()
	end := offset + len(buf)
	if end <= capacity {
		copy(r.arena[offset:end], buf)
	} else {
		tail := capacity - offset
		copy(r.arena[offset:], buf[:tail])
		copy(r.arena[:len(buf)-tail], buf[tail:])
	}
	return offset, nil
}
