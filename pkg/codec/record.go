package codec

import (
	"encoding/binary"
	"fmt"
)

// RecordMagic is the integrity marker written at the start of every record.
const RecordMagic uint32 = 0x06054AB5

// HeaderSize is the fixed record header length in bytes:
// Magic(4) + TotalLen(4) + SavedErrno(4) + Level(1) + pad(3) +
// MessageLen(4) + DetailLen(4) + HintLen(4).
const HeaderSize = 28

// Record represents one collected log event with metadata for buffer storage
type Record struct {
	Magic      uint32 // Integrity marker, checked when integrity checking is on
	TotalLen   uint32 // Total encoded length including header and padding
	SavedErrno int32  // errno at the time the event was logged
	Level      uint8  // Severity level code
	MessageLen uint32 // Message length including NUL terminator (>= 1)
	DetailLen  uint32 // Detail length including NUL terminator (0 = absent)
	HintLen    uint32 // Hint length including NUL terminator (0 = absent)
	Message    []byte // Message text
	Detail     []byte // Detail text, nil when absent
	Hint       []byte // Hint text, nil when absent
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Align4 rounds n up to the next multiple of 4. Every record length is
// aligned so record start offsets in the arena stay 4-byte aligned.
func Align4(n int) int {
	return (n + 3) &^ 3
}

// NewRecord creates a record for the given event. A zero-length detail or
// hint marks the field as absent and contributes no payload bytes.
func NewRecord(level uint8, savedErrno int32, message, detail, hint []byte) *Record {
	r := &Record{
		Magic:      RecordMagic,
		SavedErrno: savedErrno,
		Level:      level,
		MessageLen: uint32(len(message) + 1),
		Message:    message,
	}
	if len(detail) > 0 {
		r.DetailLen = uint32(len(detail) + 1)
		r.Detail = detail
	}
	if len(hint) > 0 {
		r.HintLen = uint32(len(hint) + 1)
		r.Hint = hint
	}
	r.TotalLen = uint32(Align4(HeaderSize + int(r.MessageLen+r.DetailLen+r.HintLen)))
	return r
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return int(r.TotalLen)
}

// Encode serializes a record into its binary format. The returned buffer is
// exactly TotalLen bytes; trailing alignment padding is zero.
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	if err := r.CheckLengths(); err != nil {
		return nil, err
	}

	buf := make([]byte, r.TotalLen)
	binary.LittleEndian.PutUint32(buf[0:], r.Magic)
	binary.LittleEndian.PutUint32(buf[4:], r.TotalLen)
	binary.LittleEndian.PutUint32(buf[8:], uint32(r.SavedErrno))
	buf[12] = r.Level
	binary.LittleEndian.PutUint32(buf[16:], r.MessageLen)
	binary.LittleEndian.PutUint32(buf[20:], r.DetailLen)
	binary.LittleEndian.PutUint32(buf[24:], r.HintLen)

	pos := HeaderSize
	pos += copy(buf[pos:], r.Message)
	buf[pos] = 0
	pos++
	if r.DetailLen > 0 {
		pos += copy(buf[pos:], r.Detail)
		buf[pos] = 0
		pos++
	}
	if r.HintLen > 0 {
		pos += copy(buf[pos:], r.Hint)
		buf[pos] = 0
	}

	return buf, nil
}

// DecodeHeader deserializes the fixed header only. The text fields are left
// nil until DecodePayload is called with the (possibly reassembled) payload
// bytes.
func (c *RecordCodec) DecodeHeader(data []byte) (*Record, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("data too short for record header: %d < %d", len(data), HeaderSize)
	}

	r := &Record{}
	r.Magic = binary.LittleEndian.Uint32(data[0:4])
	r.TotalLen = binary.LittleEndian.Uint32(data[4:8])
	r.SavedErrno = int32(binary.LittleEndian.Uint32(data[8:12]))
	r.Level = data[12]
	r.MessageLen = binary.LittleEndian.Uint32(data[16:20])
	r.DetailLen = binary.LittleEndian.Uint32(data[20:24])
	r.HintLen = binary.LittleEndian.Uint32(data[24:28])
	return r, nil
}

// DecodePayload splits payload bytes into the record's text fields according
// to the header lengths. The payload must hold at least TotalLen-HeaderSize
// bytes (alignment padding included).
func (c *RecordCodec) DecodePayload(r *Record, payload []byte) error {
	if err := r.CheckLengths(); err != nil {
		return err
	}
	if len(payload) < int(r.TotalLen)-HeaderSize {
		return fmt.Errorf("payload too short: %d < %d", len(payload), int(r.TotalLen)-HeaderSize)
	}

	pos := uint32(0)
	r.Message = payload[pos : pos+r.MessageLen-1]
	pos += r.MessageLen
	if r.DetailLen > 0 {
		r.Detail = payload[pos : pos+r.DetailLen-1]
		pos += r.DetailLen
	}
	if r.HintLen > 0 {
		r.Hint = payload[pos : pos+r.HintLen-1]
	}
	return nil
}

// Decode deserializes a complete encoded record (header and payload in one
// contiguous buffer).
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	r, err := c.DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if err := r.CheckLengths(); err != nil {
		return nil, err
	}
	if len(data) < int(r.TotalLen) {
		return nil, fmt.Errorf("data too short for record: %d < %d", len(data), r.TotalLen)
	}
	if err := c.DecodePayload(r, data[HeaderSize:r.TotalLen]); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckLengths verifies that the header length fields are internally
// consistent: a record always carries a message, and TotalLen must equal the
// aligned sum of header and payload lengths.
func (r *Record) CheckLengths() error {
	if r.MessageLen < 1 {
		return fmt.Errorf("record has no message (messageLen=%d)", r.MessageLen)
	}
	sum := uint64(r.MessageLen) + uint64(r.DetailLen) + uint64(r.HintLen)
	if sum > 1<<31 {
		return fmt.Errorf("field lengths out of range: %d", sum)
	}
	want := uint32(Align4(HeaderSize + int(sum)))
	if r.TotalLen != want {
		return fmt.Errorf("totalLen mismatch: %d != %d", r.TotalLen, want)
	}
	return nil
}

// Validate checks the integrity of a record: the magic marker plus the
// length invariant.
func (r *Record) Validate() error {
	if r.Magic != RecordMagic {
		return fmt.Errorf("magic mismatch: %#x != %#x", r.Magic, RecordMagic)
	}
	return r.CheckLengths()
}
