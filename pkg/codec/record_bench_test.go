//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"
)

var benchCases = []struct {
	name    string
	message []byte
	detail  []byte
	hint    []byte
}{
	{
		name:    "small",
		message: []byte("could not open file"),
	},
	{
		name:    "medium",
		message: bytes.Repeat([]byte("m"), 256),
		detail:  bytes.Repeat([]byte("d"), 512),
	},
	{
		name:    "large",
		message: bytes.Repeat([]byte("m"), 4096),
		detail:  bytes.Repeat([]byte("d"), 4096),
		hint:    bytes.Repeat([]byte("h"), 1024),
	},
}

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec()

	for _, bm := range benchCases {
		b.Run(bm.name, func(b *testing.B) {
			rec := NewRecord(19, 0, bm.message, bm.detail, bm.hint)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := codec.Encode(rec)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec()

	for _, bm := range benchCases {
		b.Run(bm.name, func(b *testing.B) {
			rec := NewRecord(19, 0, bm.message, bm.detail, bm.hint)
			encoded, err := codec.Encode(rec)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := codec.Decode(encoded)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRecordCodec_RoundTrip(b *testing.B) {
	codec := NewRecordCodec()

	for _, bm := range benchCases {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				rec := NewRecord(19, 0, bm.message, bm.detail, bm.hint)
				encoded, err := codec.Encode(rec)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := codec.Decode(encoded); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
