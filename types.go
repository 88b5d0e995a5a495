package bitio

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

// isSigned reports whether T's zero value minus one compares negative (an
// unsigned T wraps around to its maximum instead), the standard trick for
// deriving signedness from a constraints.Integer type parameter without
// reflection.
func isSigned[T constraints.Integer]() bool {
	var zero T
	return zero-1 < 0
}

// bitWidth reports the bit width of a fixed-size numeric type via its
// reflect.Kind — the one place this package leans on reflect for a
// built-in (rather than record/sum) type, since Go generics expose no
// compile-time SizeOf for a type parameter.
func bitWidth[T any]() int {
	var zero T
	return reflect.TypeOf(zero).Bits()
}

// ReadInt reads n bits and converts them to T, sign-extending first when T
// is a signed integer type.
func ReadInt[T constraints.Integer](s *ReadStream, n int) (T, error) {
	if isSigned[T]() {
		v, err := s.ReadInt(n)
		return T(v), err
	}
	v, err := s.ReadUint(n)
	return T(v), err
}

// WriteInt writes the low n bits of v.
func WriteInt[T constraints.Integer](s *WriteStream, v T, n int) error {
	if isSigned[T]() {
		return s.WriteInt(int64(v), n)
	}
	return s.WriteUint(uint64(v), n)
}

// ReadFloat reads a 32- or 64-bit IEEE-754 value into T, selecting the
// width from T itself.
func ReadFloat[T constraints.Float](s *ReadStream) (T, error) {
	var zero T
	if _, ok := any(zero).(float32); ok {
		v, err := s.ReadFloat32()
		return T(v), err
	}
	v, err := s.ReadFloat64()
	return T(v), err
}

// WriteFloat writes v's IEEE-754 bits, at the width determined by T.
func WriteFloat[T constraints.Float](s *WriteStream, v T) error {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return s.WriteFloat32(float32(v))
	}
	return s.WriteFloat64(float64(v))
}

// Read dispatches to the built-in codec for T's concrete type, falling
// back to the reflection-driven record/sum descriptor for any other type.
// Fields inside a record are not read through Read: readStruct dispatches
// them itself via readFieldGeneric/readFieldSized.
func Read[T any](s *ReadStream) (T, error) {
	var zero T
	switch any(zero).(type) {
	case bool:
		v, err := s.ReadBool()
		return any(v).(T), err
	case int8:
		v, err := ReadInt[int8](s, 8)
		return any(v).(T), err
	case int16:
		v, err := ReadInt[int16](s, 16)
		return any(v).(T), err
	case int32:
		v, err := ReadInt[int32](s, 32)
		return any(v).(T), err
	case int64:
		v, err := ReadInt[int64](s, 64)
		return any(v).(T), err
	case int:
		v, err := ReadInt[int](s, bitWidth[int]())
		return any(v).(T), err
	case uint8:
		v, err := ReadInt[uint8](s, 8)
		return any(v).(T), err
	case uint16:
		v, err := ReadInt[uint16](s, 16)
		return any(v).(T), err
	case uint32:
		v, err := ReadInt[uint32](s, 32)
		return any(v).(T), err
	case uint64:
		v, err := ReadInt[uint64](s, 64)
		return any(v).(T), err
	case uint:
		v, err := ReadInt[uint](s, bitWidth[uint]())
		return any(v).(T), err
	case Uint128:
		v, err := s.ReadUint128(128)
		return any(v).(T), err
	case Int128:
		v, err := s.ReadInt128(128)
		return any(v).(T), err
	case float32:
		v, err := ReadFloat[float32](s)
		return any(v).(T), err
	case float64:
		v, err := ReadFloat[float64](s)
		return any(v).(T), err
	case string:
		v, err := s.ReadStringUntilNull()
		return any(v).(T), err
	default:
		v, err := readRecordOrSum[T](s)
		return v, err
	}
}

// ReadSized dispatches to the built-in codec for T's concrete type using
// an externally supplied size (bits for integers, bytes for strings/byte
// slices), falling back to the descriptor layer's sized-record path. Slices
// other than []byte and mappings have no case here; ReadVector/
// ReadVectorSized and ReadMapping read those.
func ReadSized[T any](s *ReadStream, size int) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int8:
		v, err := ReadInt[int8](s, size)
		return any(v).(T), err
	case int16:
		v, err := ReadInt[int16](s, size)
		return any(v).(T), err
	case int32:
		v, err := ReadInt[int32](s, size)
		return any(v).(T), err
	case int64:
		v, err := ReadInt[int64](s, size)
		return any(v).(T), err
	case int:
		v, err := ReadInt[int](s, size)
		return any(v).(T), err
	case uint8:
		v, err := ReadInt[uint8](s, size)
		return any(v).(T), err
	case uint16:
		v, err := ReadInt[uint16](s, size)
		return any(v).(T), err
	case uint32:
		v, err := ReadInt[uint32](s, size)
		return any(v).(T), err
	case uint64:
		v, err := ReadInt[uint64](s, size)
		return any(v).(T), err
	case uint:
		v, err := ReadInt[uint](s, size)
		return any(v).(T), err
	case Uint128:
		v, err := s.ReadUint128(size)
		return any(v).(T), err
	case Int128:
		v, err := s.ReadInt128(size)
		return any(v).(T), err
	case string:
		v, err := s.ReadString(size)
		return any(v).(T), err
	case []byte:
		v, err := s.ReadBytes(size)
		return any(v).(T), err
	default:
		v, err := readRecordOrSumSized[T](s, size)
		return v, err
	}
}

// Write is the write-side dual of Read.
func Write[T any](s *WriteStream, v T) error {
	switch val := any(v).(type) {
	case bool:
		return s.WriteBool(val)
	case int8:
		return WriteInt(s, val, 8)
	case int16:
		return WriteInt(s, val, 16)
	case int32:
		return WriteInt(s, val, 32)
	case int64:
		return WriteInt(s, val, 64)
	case int:
		return WriteInt(s, val, bitWidth[int]())
	case uint8:
		return WriteInt(s, val, 8)
	case uint16:
		return WriteInt(s, val, 16)
	case uint32:
		return WriteInt(s, val, 32)
	case uint64:
		return WriteInt(s, val, 64)
	case uint:
		return WriteInt(s, val, bitWidth[uint]())
	case Uint128:
		return s.WriteUint128(val, 128)
	case Int128:
		return s.WriteInt128(val, 128)
	case float32:
		return WriteFloat(s, val)
	case float64:
		return WriteFloat(s, val)
	case string:
		return s.WriteString(val)
	default:
		return writeRecordOrSum(s, v)
	}
}

// WriteSized is the write-side dual of ReadSized.
func WriteSized[T any](s *WriteStream, v T, size int) error {
	switch val := any(v).(type) {
	case int8:
		return WriteInt(s, val, size)
	case int16:
		return WriteInt(s, val, size)
	case int32:
		return WriteInt(s, val, size)
	case int64:
		return WriteInt(s, val, size)
	case int:
		return WriteInt(s, val, size)
	case uint8:
		return WriteInt(s, val, size)
	case uint16:
		return WriteInt(s, val, size)
	case uint32:
		return WriteInt(s, val, size)
	case uint64:
		return WriteInt(s, val, size)
	case uint:
		return WriteInt(s, val, size)
	case Uint128:
		return s.WriteUint128(val, size)
	case Int128:
		return s.WriteInt128(val, size)
	case string:
		return s.WriteStringSized(val, size)
	case []byte:
		return s.WriteBytes(val)
	default:
		return writeRecordOrSumSized(s, v, size)
	}
}

// BitSize reports T's compile-time-known bit size, matching the
// predictable-size analysis of the typed-read trait: ok is false when T's
// size can't be known without a size expression (e.g. a record with a
// variable-size field, or a type only readable via ReadSized).
func BitSize[T any]() (bits int, ok bool) {
	var zero T
	switch any(zero).(type) {
	case bool:
		return 1, true
	case int8, uint8:
		return 8, true
	case int16, uint16:
		return 16, true
	case int32, uint32, float32:
		return 32, true
	case int64, uint64, float64:
		return 64, true
	case int, uint:
		return bitWidth[T](), true
	case Uint128, Int128:
		return 128, true
	default:
		return describeBitSize[T]()
	}
}

// BitSizeSized reports the bit size of a ReadSized/WriteSized operation on
// T given the external size, in the units ReadSized/WriteSized use (bits
// for integers, bytes*8 for strings/byte slices).
func BitSizeSized[T any](size int) (bits int, ok bool) {
	var zero T
	switch any(zero).(type) {
	case int8, int16, int32, int64, int, uint8, uint16, uint32, uint64, uint, Uint128, Int128:
		return size, true
	case string, []byte:
		return size * 8, true
	default:
		return describeBitSizeSized[T](size)
	}
}
