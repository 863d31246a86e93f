// Package ring implements the shared circular log buffer: a fixed-size byte
// arena that many producers append encoded records into concurrently and a
// single reader drains in order. See RingStore for the synchronization
// contract.
package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/ssargent/ringlog/pkg/codec"
	"github.com/ssargent/ringlog/pkg/shm"
)

const (
	// ringMagic identifies an initialized ring region.
	ringMagic uint32 = 0xAABBCCDD

	// ringVersion is bumped on any state or record layout change.
	ringVersion uint32 = 1

	// stateSize is the reserved region prefix holding ringState. Padded to
	// a cache line so the arena starts 64-byte aligned.
	stateSize = 64

	// MinCapacity is the smallest accepted arena size. Anything smaller
	// cannot hold even a handful of records and only invites pathological
	// wrap behavior.
	MinCapacity = 1024

	// DefaultCapacity is used when the configuration leaves Capacity zero.
	DefaultCapacity = 1 << 20
)

// ringState is the shared cursor block at the start of the region. For
// file-backed arenas it lives inside the mapping, so every field mutation
// goes through sync/atomic and is visible to all attached processes.
type ringState struct {
	magic    uint32
	version  uint32
	capacity uint32
	writePos uint32 // next free offset, always in [0, capacity)
	readPos  uint32 // next offset the consumer reads, mutated under the lock
	wrapped  uint32 // 1 when the write cursor lapped the read cursor's cycle
}

// RingStore is a fixed-size circular buffer of variable-length log records.
//
// Producers append concurrently and lock-free: space is claimed by a
// compare-and-swap retry loop on the write cursor, so no producer ever blocks
// on another producer or on the reader. The single reader drains under the
// region lock. The buffer is deliberately lossy: a fast producer may overwrite
// bytes the reader has not consumed yet, which is accepted data loss rather
// than an error.
type RingStore struct {
	config RingConfig
	region *shm.Region
	state  *ringState
	arena  []byte
	codec  *codec.RecordCodec
	closed atomic.Bool
}

// NewRingStore creates or attaches a ring store. With an ArenaFile the region
// is a shared file mapping and the store attaches to live cursors left by
// other processes; without one the buffer is private to this process.
func NewRingStore(config RingConfig) (*RingStore, error) {
	if config.Capacity == 0 {
		config.Capacity = DefaultCapacity
	}
	if config.Capacity < MinCapacity || config.Capacity%4 != 0 {
		return nil, ErrBadCapacity
	}

	var region *shm.Region
	if config.ArenaFile != "" {
		var err error
		region, err = shm.OpenFileRegion(config.ArenaFile, stateSize+config.Capacity)
		if err != nil {
			return nil, err
		}
	} else {
		region = shm.NewHeapRegion(stateSize + config.Capacity)
	}

	r := &RingStore{
		config: config,
		region: region,
		state:  (*ringState)(unsafe.Pointer(&region.Data[0])),
		arena:  region.Data[stateSize : stateSize+config.Capacity],
		codec:  codec.NewRecordCodec(),
	}

	region.Lock()
	defer region.Unlock()

	if region.Created || atomic.LoadUint32(&r.state.magic) != ringMagic {
		atomic.StoreUint32(&r.state.writePos, 0)
		atomic.StoreUint32(&r.state.readPos, 0)
		atomic.StoreUint32(&r.state.wrapped, 0)
		atomic.StoreUint32(&r.state.capacity, uint32(config.Capacity))
		atomic.StoreUint32(&r.state.version, ringVersion)
		atomic.StoreUint32(&r.state.magic, ringMagic)
		return r, nil
	}

	if r.state.version != ringVersion || r.state.capacity != uint32(config.Capacity) {
		region.Close()
		return nil, ErrArenaMismatch
	}
	return r, nil
}

// Capacity returns the arena size in bytes.
func (r *RingStore) Capacity() int {
	return int(r.state.capacity)
}

// Claim reserves length bytes in the arena and returns the physical offset of
// the reservation. It is lock-free: the write cursor is advanced with a CAS
// retry loop, so concurrent producers never receive overlapping ranges.
//
// The cursor stores a physical offset, not a monotonic counter, which is why
// a blind fetch-add will not do: the new value must be reduced modulo the
// capacity and a decrease marks the wrap flag. Two cases wrap:
//
//   - the claimed range runs past the arena end (payload split on write), or
//   - the old cursor sits so close to the end that not even a record header
//     fits before it; that tail is left unwritten and skipped by the drain
//     loop, and the record starts at offset 0 instead.
//
// Livelock under pathological contention is theoretically possible and not
// mitigated.
func (r *RingStore) Claim(length int) (int, error) {
	if r.closed.Load() {
		return 0, ErrStoreClosed
	}
	capacity := r.state.capacity
	if length <= 0 || uint32(length) > capacity {
		return 0, ErrRecordTooLarge
	}

	for {
		old := atomic.LoadUint32(&r.state.writePos)
		start := old
		wrapped := false
		if start+codec.HeaderSize > capacity {
			// The drain loop treats a tail shorter than one header as
			// padding, so a record must never start there.
			start = 0
			wrapped = true
		}
		next := start + uint32(length)
		if next >= capacity {
			next -= capacity
			wrapped = true
		}
		if atomic.CompareAndSwapUint32(&r.state.writePos, old, next) {
			if wrapped {
				atomic.StoreUint32(&r.state.wrapped, 1)
			}
			return int(start), nil
		}
	}
}

// Reset atomically empties the buffer. The write cursor is CAS-looped down to
// zero because producers may be advancing it concurrently; the read cursor
// and wrap flag are rewound under the lock. Records in flight during the
// reset are discarded, which is within the lossy-buffer contract. Resetting
// an empty store is a no-op apart from the cursor writes.
func (r *RingStore) Reset() error {
	if r.closed.Load() {
		return ErrStoreClosed
	}
	r.region.Lock()
	defer r.region.Unlock()

	for {
		cur := atomic.LoadUint32(&r.state.writePos)
		if atomic.CompareAndSwapUint32(&r.state.writePos, cur, 0) {
			break
		}
	}
	atomic.StoreUint32(&r.state.readPos, 0)
	atomic.StoreUint32(&r.state.wrapped, 0)
	return nil
}

// Stats returns a snapshot of the cursor state for diagnostics. The values
// are read without the lock and may be mutually inconsistent under load.
func (r *RingStore) Stats() RingStats {
	return RingStats{
		Capacity: int(r.state.capacity),
		WritePos: int(atomic.LoadUint32(&r.state.writePos)),
		ReadPos:  int(atomic.LoadUint32(&r.state.readPos)),
		Wrapped:  atomic.LoadUint32(&r.state.wrapped) == 1,
	}
}

// Close detaches from the region. For file-backed arenas the backing file and
// its contents survive; other processes stay attached.
func (r *RingStore) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return r.region.Close()
}
