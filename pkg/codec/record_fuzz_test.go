//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzRecordCodec_RoundTrip tests encode/decode round-trip with random inputs
func FuzzRecordCodec_RoundTrip(f *testing.F) {
	codec := NewRecordCodec()

	// Add seed corpus
	f.Add(uint8(19), int32(0), []byte("message"), []byte(""), []byte(""))
	f.Add(uint8(20), int32(2), []byte("could not open file"), []byte("detail"), []byte("hint"))
	f.Add(uint8(10), int32(-1), []byte{0x00, 0x01}, []byte{0xFF}, []byte{})

	f.Fuzz(func(t *testing.T, level uint8, errno int32, message, detail, hint []byte) {
		// Skip extremely large inputs to avoid timeout
		if len(message) > 100000 || len(detail) > 100000 || len(hint) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		rec := NewRecord(level, errno, message, detail, hint)

		encoded, err := codec.Encode(rec)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		if len(encoded)%4 != 0 {
			t.Errorf("Encoded record not 4-byte aligned: %d", len(encoded))
		}

		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}

		if err := decoded.Validate(); err != nil {
			t.Fatalf("Record validation failed: %v", err)
		}

		if !bytes.Equal(decoded.Message, message) {
			t.Errorf("Message mismatch: got %q, want %q", decoded.Message, message)
		}

		// Zero-length detail/hint must decode as absent.
		if len(detail) == 0 && decoded.Detail != nil {
			t.Errorf("Expected absent detail, got %q", decoded.Detail)
		}
		if len(detail) > 0 && !bytes.Equal(decoded.Detail, detail) {
			t.Errorf("Detail mismatch: got %q, want %q", decoded.Detail, detail)
		}
		if len(hint) == 0 && decoded.Hint != nil {
			t.Errorf("Expected absent hint, got %q", decoded.Hint)
		}
		if len(hint) > 0 && !bytes.Equal(decoded.Hint, hint) {
			t.Errorf("Hint mismatch: got %q, want %q", decoded.Hint, hint)
		}
	})
}

// FuzzRecordCodec_MalformedData tests handling of malformed input
func FuzzRecordCodec_MalformedData(f *testing.F) {
	codec := NewRecordCodec()

	// Add seed corpus of malformed data
	f.Add([]byte{})
	f.Add([]byte{0x01})
	f.Add(make([]byte, HeaderSize-1)) // One byte short of header
	f.Add(make([]byte, HeaderSize))   // Header only, zero lengths

	f.Fuzz(func(t *testing.T, data []byte) {
		// Skip extremely large inputs
		if len(data) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		// Must never panic on arbitrary bytes.
		rec, err := codec.Decode(data)
		if err == nil {
			if err := rec.CheckLengths(); err != nil {
				t.Errorf("Decode accepted a record that fails CheckLengths: %v", err)
			}
		}
	})
}
