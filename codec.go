package bitio

import "encoding"

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes, rounded up from its
	// BitSize() (ceil(bits/8)) — the byte count a WriteBuffer finalizes to.
	Size() int
}

// Marshaler defines the core methods for encoding an object into bytes.
// Unlike the teacher's byte-stream-oriented Marshaler, this drops
// io.WriterTo: partial/incremental writing of a bit-addressed record makes
// no sense when the record's own size may depend on fields written after
// the point a stream write would have to commit bytes.
type Marshaler interface {
	encoding.BinaryMarshaler // MarshalBinary() ([]byte, error)

	// MarshalTo is the zero-allocation form: it encodes into a
	// pre-allocated buffer, returning ErrShortWrite if it is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler defines the core methods for decoding bytes into an object.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler // UnmarshalBinary(data []byte) error
}

// Codec aggregates all binary serialization and deserialization interfaces.
// A type implementing Codec is a complete, self-sizing binary encoder/decoder.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}
