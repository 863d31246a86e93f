// Package shm provides the byte region backing a ring buffer, either private
// process memory or a memory-mapped file shared between processes.
//
// A file-backed region lets independent ringlog processes attach to the same
// arena: the mapping is MAP_SHARED, and Lock/Unlock combine an in-process
// mutex with an advisory flock on the backing file so that exactly one
// reader-side critical section runs across the whole process group.
package shm

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Region is a fixed-size byte region with a mutual-exclusion lock.
type Region struct {
	// Data is the raw region. Its size never changes after creation.
	Data []byte

	// Created reports whether this process created (and must initialize)
	// the region.
	Created bool

	file *os.File
	mu   sync.Mutex
}

// NewHeapRegion returns a region in private process memory. Lock/Unlock is a
// plain mutex; only goroutines of this process can share the region.
func NewHeapRegion(size int) *Region {
	return &Region{
		Data:    make([]byte, size),
		Created: true,
	}
}

// OpenFileRegion creates or attaches to a file-backed shared region of the
// given size. The first process to open the file sizes it and reports
// Created; later processes attach to the existing bytes. Opening an existing
// file with a different size fails.
func OpenFileRegion(path string, size int) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open region file: %w", err)
	}

	// Hold the file lock while sizing so two processes cannot both
	// initialize the region.
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to lock region file: %w", err)
	}

	created := false
	st, err := f.Stat()
	if err == nil && st.Size() == 0 {
		err = f.Truncate(int64(size))
		created = true
	} else if err == nil && st.Size() != int64(size) {
		err = fmt.Errorf("region file %s holds %d bytes, want %d", path, st.Size(), size)
	}
	if err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("failed to map region file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("failed to unlock region file: %w", err)
	}

	return &Region{
		Data:    data,
		Created: created,
		file:    f,
	}, nil
}

// Lock acquires the region's mutual-exclusion lock. For file-backed regions
// this is the in-process mutex plus an exclusive flock, so it also excludes
// other processes attached to the same file.
func (r *Region) Lock() {
	r.mu.Lock()
	if r.file != nil {
		// Retried because flock can be interrupted by signals.
		for {
			if err := unix.Flock(int(r.file.Fd()), unix.LOCK_EX); err != unix.EINTR {
				return
			}
		}
	}
}

// Unlock releases the region's lock.
func (r *Region) Unlock() {
	if r.file != nil {
		unix.Flock(int(r.file.Fd()), unix.LOCK_UN)
	}
	r.mu.Unlock()
}

// Close unmaps and closes a file-backed region. The backing file is left in
// place so other processes stay attached. Closing a heap region is a no-op.
func (r *Region) Close() error {
	if r.file == nil {
		return nil
	}
	if err := unix.Munmap(r.Data); err != nil {
		r.file.Close()
		return fmt.Errorf("failed to unmap region: %w", err)
	}
	r.Data = nil
	return r.file.Close()
}
