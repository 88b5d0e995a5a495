package bitio

// WriteStream is the write-side counterpart to ReadStream. Because a
// WriteBuffer is append-only, a stream over it needs no separate cursor —
// BitLen() already is "the current write position" — so WriteStream is a
// thin, symmetry-preserving wrapper that exists mainly so the typed
// Write[T]/WriteSized[T] entry points have a single receiver type to match
// Read[T]/ReadSized[T]'s ReadStream.
type WriteStream struct {
	buf *WriteBuffer
}

// NewWriteStream wraps a WriteBuffer as a stream.
func NewWriteStream(buf *WriteBuffer) *WriteStream { return &WriteStream{buf: buf} }

// Buffer returns the underlying WriteBuffer.
func (w *WriteStream) Buffer() *WriteBuffer { return w.buf }

// Pos returns the number of bits written so far.
func (w *WriteStream) Pos() int { return w.buf.bitLen }

func (w *WriteStream) WriteBool(b bool) error               { return w.buf.WriteBool(b) }
func (w *WriteStream) WriteUint(v uint64, n int) error       { return w.buf.WriteUint(v, n) }
func (w *WriteStream) WriteInt(v int64, n int) error         { return w.buf.WriteInt(v, n) }
func (w *WriteStream) WriteUint128(v Uint128, n int) error   { return w.buf.WriteUint128(v, n) }
func (w *WriteStream) WriteInt128(v Int128, n int) error     { return w.buf.WriteInt128(v, n) }
func (w *WriteStream) WriteFloat32(v float32) error          { return w.buf.WriteFloat32(v) }
func (w *WriteStream) WriteFloat64(v float64) error          { return w.buf.WriteFloat64(v) }
func (w *WriteStream) WriteBytes(data []byte) error          { return w.buf.WriteBytes(data) }
func (w *WriteStream) WriteString(s string) error            { return w.buf.WriteString(s) }
func (w *WriteStream) WriteStringSized(s string, n int) error { return w.buf.WriteStringSized(s, n) }
func (w *WriteStream) Align() error                          { return w.buf.Align() }
func (w *WriteStream) SetAt(p, n int, v uint64) error        { return w.buf.SetAt(p, n, v) }

// WriteBits copies the remaining bits of a ReadStream into this writer,
// consuming the source stream fully.
func (w *WriteStream) WriteBits(src *ReadStream) error {
	const chunkBits = (wordBytes - 1) * 8
	for src.BitsLeft() > 0 {
		take := src.BitsLeft()
		if take > chunkBits {
			take = chunkBits
		}
		v, err := src.ReadUint(take)
		if err != nil {
			return err
		}
		if err := w.buf.WriteUint(v, take); err != nil {
			return err
		}
	}
	return nil
}

// Finish returns the accumulated bytes (ceil(BitLen()/8) of them).
func (w *WriteStream) Finish() []byte { return w.buf.Bytes() }
