package ring

import (
	"github.com/ssargent/ringlog/pkg/codec"
)

// RingConfig holds configuration for a ring store
type RingConfig struct {
	Capacity        int    // Arena size in bytes, a positive multiple of 4
	ArenaFile       string // Backing file for a shared arena ("" = private memory)
	VerifyIntegrity bool   // Validate record magic markers while draining
}

// RingStats is a point-in-time snapshot of the store's cursor state
type RingStats struct {
	Capacity int  `json:"capacity"`
	WritePos int  `json:"write_pos"`
	ReadPos  int  `json:"read_pos"`
	Wrapped  bool `json:"wrapped"`
}

// DrainedRecord is one record produced by a drain session together with its
// position, the raw arena offset the record occupied at read time. Positions
// are only meaningful within the current write cycle and are not comparable
// across a flush.
type DrainedRecord struct {
	Record   *codec.Record
	Position int
}

// Errors
var (
	ErrRecordTooLarge = &RingError{"record larger than buffer capacity"}
	ErrCorruptRecord  = &RingError{"corrupt record in buffer"}
	ErrStoreClosed    = &RingError{"ring store is closed"}
	ErrBadCapacity    = &RingError{"capacity must be a positive multiple of 4"}
	ErrArenaMismatch  = &RingError{"arena file does not match the requested configuration"}
)

// RingError represents a ring store error
type RingError struct {
	Message string
}

func (e *RingError) Error() string {
	return e.Message
}
