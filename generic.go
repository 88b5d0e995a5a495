package bitio

// MarshalBinaryGeneric provides a generic encoding.BinaryMarshaler
// implementation for any type covered by Write[T]: it sizes a growable
// WriteBuffer, writes v into it, and returns the finished bytes.
func MarshalBinaryGeneric[T any](v T, order ByteOrder) ([]byte, error) {
	wb := NewWriteBuffer(order)
	ws := NewWriteStream(wb)
	if err := Write(ws, v); err != nil {
		return nil, err
	}
	return wb.Bytes(), nil
}

// UnmarshalBinaryGeneric adapts Read[T] to the slice-based UnmarshalBinary
// shape, checking that any bytes left over after the read are all zero —
// the same "no unexpected trailing data" contract the teacher's
// UnmarshalBinaryGeneric enforces, adapted from a byte count to a bit
// count.
func UnmarshalBinaryGeneric[T any](data []byte, order ByteOrder) (T, error) {
	rb := NewReadBuffer(data, order)
	rs := NewReadStream(rb)
	v, err := Read[T](rs)
	if err != nil {
		return v, err
	}
	consumedBytes := (rs.Pos() + 7) / 8
	if consumedBytes < len(data) {
		if err := CheckBufferNotZeros(data[consumedBytes:]); err != nil {
			return v, err
		}
	}
	return v, nil
}

// MarshalToGeneric is MarshalBinaryGeneric's zero-allocation form: it
// writes into a caller-supplied, fixed-capacity buffer.
func MarshalToGeneric[T any](v T, buf []byte, order ByteOrder) (int, error) {
	wb := NewWriteBufferFixed(buf, order)
	ws := NewWriteStream(wb)
	if err := Write(ws, v); err != nil {
		return 0, err
	}
	return len(wb.Bytes()), nil
}

// WriteToStreamGeneric and ReadFromStreamGeneric are the WriteStream/
// ReadStream analogues of the teacher's io.Writer/io.Reader-based
// WriteToGeneric/ReadFromGeneric: since this library's data model makes
// the entire region addressable up front (no incremental/partial input,
// per the framing Non-goal), there is no streaming adapter left to write —
// these exist purely so callers composing generic pipelines have a name
// symmetric with Write[T]/Read[T] to call against an existing stream.
func WriteToStreamGeneric[T any](v T, s *WriteStream) error { return Write(s, v) }

func ReadFromStreamGeneric[T any](s *ReadStream) (T, error) { return Read[T](s) }
