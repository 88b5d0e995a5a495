package bitio

import "encoding/binary"

// ByteOrder governs how a multi-byte word is assembled out of the bits read
// from a region, and how a value is split back into bits on write. The
// original crate expressed this at the type level via PhantomData<E>; Go has
// no zero-cost phantom markers, so it is a runtime interface value carried
// alongside a ReadBuffer/WriteBuffer instead (a deliberate, explicit tradeoff).
type ByteOrder interface {
	// String names the order, used in panic/diagnostic messages only.
	String() string

	// uint64 turns 8 raw bytes, as they appear in storage order, into the
	// uint64 they represent under this ordering.
	uint64(b [8]byte) uint64

	// putUint64 is the inverse of uint64: it lays out v into 8 bytes in
	// storage order under this ordering.
	putUint64(v uint64) [8]byte
}

type littleEndian struct{}
type bigEndian struct{}

func (littleEndian) String() string { return "LittleEndian" }
func (bigEndian) String() string    { return "BigEndian" }

func (littleEndian) uint64(b [8]byte) uint64 { return binary.LittleEndian.Uint64(b[:]) }

func (bigEndian) uint64(b [8]byte) uint64 { return binary.BigEndian.Uint64(b[:]) }

func (littleEndian) putUint64(v uint64) (b [8]byte) {
	binary.LittleEndian.PutUint64(b[:], v)
	return
}

func (bigEndian) putUint64(v uint64) (b [8]byte) {
	binary.BigEndian.PutUint64(b[:], v)
	return
}

var (
	// LE is the little-endian ByteOrder singleton.
	LE ByteOrder = littleEndian{}
	// BE is the big-endian ByteOrder singleton.
	BE ByteOrder = bigEndian{}
)
