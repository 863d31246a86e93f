// Package codec provides log record serialization and deserialization for
// ringlog.
//
// The codec implements the binary record format that producers write into the
// circular buffer and the drain path decodes back out. The writer and the
// reader must agree on this layout byte for byte, because a record may be
// split across the physical end of the arena and reassembled on read.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[Magic(4)][TotalLen(4)][SavedErrno(4)][Level(1)][pad(3)]
//	[MessageLen(4)][DetailLen(4)][HintLen(4)][Payload]
//
// Fields (all integers little-endian):
//   - Magic: integrity marker (0x06054AB5), validated only when integrity
//     checking is enabled
//   - TotalLen: total record length including the header, rounded up to a
//     multiple of 4 so that every record starts 4-byte aligned
//   - SavedErrno: errno captured when the event was logged
//   - Level: severity level code (see pkg/levels)
//   - MessageLen/DetailLen/HintLen: byte lengths of the three consecutive
//     NUL-terminated texts in the payload, terminator included. MessageLen is
//     always >= 1; a zero DetailLen or HintLen means the field is absent, not
//     empty.
//   - Payload: message, then detail (if present), then hint (if present),
//     each NUL-terminated, followed by zero padding up to TotalLen
//
// # Usage
//
// Basic encoding and decoding:
//
//	c := codec.NewRecordCodec()
//
//	rec := codec.NewRecord(19, 0, []byte("disk full"), nil, []byte("free some space"))
//	encoded, err := c.Encode(rec)
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := c.Decode(encoded)
//	if err != nil {
//	    return err
//	}
//	if err := decoded.Validate(); err != nil {
//	    return err // record is corrupted
//	}
//
// The drain path decodes in two steps, DecodeHeader followed by
// DecodePayload, because the payload bytes may have to be reassembled from
// two arena segments before they can be parsed.
//
// # Thread Safety
//
// RecordCodec instances are stateless and safe for concurrent use. Record
// structs are immutable after creation and safe to share between goroutines.
package codec
