package bitio

import "testing"

type benchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
}

func BenchmarkMarshalBinary(b *testing.B) {
	v := benchmarkPayload{ID: 1, Val1: 100}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalBinaryGeneric(v, BE)
	}
}

func BenchmarkMarshalTo(b *testing.B) {
	v := benchmarkPayload{ID: 1, Val1: 100}
	buf := make([]byte, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalToGeneric(v, buf, BE)
	}
}

func BenchmarkUnmarshalBinary(b *testing.B) {
	v := benchmarkPayload{ID: 1, Val1: 100}
	data, _ := MarshalBinaryGeneric(v, BE)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = UnmarshalBinaryGeneric[benchmarkPayload](data, BE)
	}
}

// BenchmarkReadBufferUnalignedInt measures 57-bit reads at bit offsets 0
// through 7. Offset plus width never exceeds 64 bits, so every read is
// served by the single-word fast path, not the accumulate fallback.
func BenchmarkReadBufferUnalignedInt(b *testing.B) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i * 7)
	}
	buf := NewReadBuffer(data, BE)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = buf.ReadUint(i%8, 57)
	}
}

// BenchmarkReadBufferAlignedBytes measures the zero-copy ReadBytes path.
func BenchmarkReadBufferAlignedBytes(b *testing.B) {
	data := make([]byte, 64)
	buf := NewReadBuffer(data, LE)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = buf.ReadBytes(0, 32)
	}
}
