package ring

import (
	"sync/atomic"

	"github.com/ssargent/ringlog/pkg/codec"
)

// DrainSession is one locked, snapshot-bounded pass over the unread records.
//
// The session holds the region lock from BeginDrain until Close, so no other
// reader can interleave and no reset can occur mid-drain. The write cursor is
// snapshotted once at session start; records appended afterwards stay
// invisible until the next session. Sessions are finite and non-restartable.
type DrainSession struct {
	store   *RingStore
	until   uint32
	wrapped bool
	rec     *codec.Record
	pos     int
	err     error
	closed  bool
}

// BeginDrain locks the store and snapshots the drain boundary. The caller
// must Close the session to release the lock, typically:
//
//	session, err := store.BeginDrain()
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//	for session.Next() {
//	    emit(session.Record(), session.Position())
//	}
//	return session.Err()
func (r *RingStore) BeginDrain() (*DrainSession, error) {
	if r.closed.Load() {
		return nil, ErrStoreClosed
	}
	r.region.Lock()
	until := atomic.LoadUint32(&r.state.writePos)
	return &DrainSession{
		store:   r,
		until:   until,
		wrapped: until < atomic.LoadUint32(&r.state.readPos),
	}, nil
}

// Next advances to the next unread record. It returns false when the session
// boundary is reached or a corrupt record stops the session; distinguish the
// two with Err.
func (s *DrainSession) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	st := s.store.state
	capacity := st.capacity
	readPos := atomic.LoadUint32(&st.readPos)

	for {
		if !((!s.wrapped && readPos < s.until) || (s.wrapped && readPos > s.until)) {
			return false
		}
		if readPos+codec.HeaderSize > capacity {
			// Physical wrap: the remaining tail cannot hold a header and
			// was never written. Skip it and re-check the boundary.
			readPos = 0
			atomic.StoreUint32(&st.readPos, 0)
			s.wrapped = false
			atomic.StoreUint32(&st.wrapped, 0)
			continue
		}
		break
	}

	rec, err := s.store.codec.DecodeHeader(s.store.arena[readPos : readPos+codec.HeaderSize])
	if err != nil {
		s.err = ErrCorruptRecord
		return false
	}
	// Length sanity is checked unconditionally: continuing to walk the
	// arena from an inconsistent totalLen is unsafe. The magic marker is
	// only consulted when integrity checking is enabled.
	if rec.CheckLengths() != nil || rec.TotalLen > capacity {
		s.err = ErrCorruptRecord
		return false
	}
	if s.store.config.VerifyIntegrity && rec.Magic != codec.RecordMagic {
		s.err = ErrCorruptRecord
		return false
	}

	payload := make([]byte, rec.TotalLen-codec.HeaderSize)
	if readPos+rec.TotalLen >= capacity {
		// The record straddles the physical end: tail bytes first, the
		// remainder from the arena start.
		tail := capacity - readPos - codec.HeaderSize
		copy(payload[:tail], s.store.arena[readPos+codec.HeaderSize:])
		newRead := readPos + rec.TotalLen - capacity
		copy(payload[tail:], s.store.arena[:newRead])
		s.wrapped = false
		atomic.StoreUint32(&st.wrapped, 0)
		atomic.StoreUint32(&st.readPos, newRead)
	} else {
		copy(payload, s.store.arena[readPos+codec.HeaderSize:readPos+rec.TotalLen])
		atomic.StoreUint32(&st.readPos, readPos+rec.TotalLen)
	}

	if err := s.store.codec.DecodePayload(rec, payload); err != nil {
		s.err = ErrCorruptRecord
		return false
	}

	s.rec = rec
	s.pos = int(readPos)
	return true
}

// Record returns the record produced by the last successful Next.
func (s *DrainSession) Record() *codec.Record {
	return s.rec
}

// Position returns the arena offset of the last record, valid only within
// the current write cycle.
func (s *DrainSession) Position() int {
	return s.pos
}

// Err returns the error that terminated the session, if any.
func (s *DrainSession) Err() error {
	return s.err
}

// Close releases the region lock. Closing twice is safe.
func (s *DrainSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.store.region.Unlock()
	return nil
}

// Drain runs a complete session and collects every record in consumption
// order (oldest unread first).
func (r *RingStore) Drain() ([]DrainedRecord, error) {
	session, err := r.BeginDrain()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var out []DrainedRecord
	for session.Next() {
		out = append(out, DrainedRecord{Record: session.Record(), Position: session.Position()})
	}
	return out, session.Err()
}
