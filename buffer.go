package bitio

import "math"

// wordBytes is the machine-word load unit used by the bit-extraction fast
// path (spec's "WS" — a natural 64-bit word on every platform this targets).
const wordBytes = 8

// ReadBuffer is a random-access, immutable bit-level view over a byte
// region. Unlike ReadStream it carries no cursor: every operation takes an
// explicit bit position. Cloning a ReadBuffer (via SubBuffer or by copying
// the struct) is cheap because Go slices already alias their backing array —
// there is no separate reference-counted box the way the original crate
// needs one for its borrow checker.
type ReadBuffer struct {
	bytes  []byte
	bitLen int
	order  ByteOrder
}

// NewReadBuffer wraps bytes as a borrowed region: the returned ReadBuffer
// aliases the caller's slice directly. The caller must not mutate bytes
// while the buffer (or any sub-buffer/stream derived from it) is in use.
func NewReadBuffer(bytes []byte, order ByteOrder) *ReadBuffer {
	if bytes == nil {
		bytes = []byte{}
	}
	return &ReadBuffer{bytes: bytes, bitLen: len(bytes) * 8, order: order}
}

// NewReadBufferOwned copies bytes into a region the returned ReadBuffer owns
// outright, so later mutation of the caller's slice cannot affect it.
func NewReadBufferOwned(bytes []byte, order ByteOrder) *ReadBuffer {
	owned := make([]byte, len(bytes))
	copy(owned, bytes)
	return &ReadBuffer{bytes: owned, bitLen: len(owned) * 8, order: order}
}

// Order reports the byte order this buffer was constructed with.
func (b *ReadBuffer) Order() ByteOrder { return b.order }

// BitLen reports the buffer's bit length L (may be less than 8*len(bytes)
// when the buffer is a truncated sub-view).
func (b *ReadBuffer) BitLen() int { return b.bitLen }

// Bytes exposes the backing region. Callers must treat it as read-only.
func (b *ReadBuffer) Bytes() []byte { return b.bytes }

// SubBuffer returns a new buffer over the same bytes truncated to n bits.
func (b *ReadBuffer) SubBuffer(n int) (*ReadBuffer, error) {
	if n > b.bitLen {
		return nil, errNotEnoughData(n, b.bitLen)
	}
	return &ReadBuffer{bytes: b.bytes, bitLen: n, order: b.order}, nil
}

func (b *ReadBuffer) isLE() bool {
	_, ok := b.order.(littleEndian)
	return ok
}

// loadWord performs step 2-4 of the bit-extraction algorithm: load at most
// one machine word starting at byteIndex (padding with zeros near the end
// of the region, so bits past L always read as zero), then shift and mask
// out the n-bit window starting bitOffset bits into that word. Requires
// bitOffset+n <= 64.
func (b *ReadBuffer) loadWord(byteIndex, bitOffset, n int) uint64 {
	var buf [wordBytes]byte
	avail := len(b.bytes) - byteIndex
	if avail > wordBytes {
		avail = wordBytes
	}
	if avail > 0 {
		copy(buf[:avail], b.bytes[byteIndex:byteIndex+avail])
	}
	word := b.order.uint64(buf)
	var mask uint64
	if n >= 64 {
		mask = ^uint64(0)
	} else {
		mask = uint64(1)<<uint(n) - 1
	}
	if b.isLE() {
		return (word >> uint(bitOffset)) & mask
	}
	return (word >> uint(wordBytes*8-bitOffset-n)) & mask
}

// readBitsUnchecked is the bit-extraction algorithm in full: the "fits in a
// word" fast path (step 5) when bitOffset+n <= 64, and the accumulate
// fallback (step 6) otherwise, assembling the result out of chunks no wider
// than (WS-1)*8 = 56 bits so every chunk itself fits a single word load.
func (b *ReadBuffer) readBitsUnchecked(p, n int) uint64 {
	if n == 0 {
		return 0
	}
	byteIndex := p / 8
	bitOffset := p % 8
	if bitOffset+n <= wordBytes*8 {
		return b.loadWord(byteIndex, bitOffset, n)
	}

	const chunkBits = (wordBytes - 1) * 8
	le := b.isLE()
	var acc uint64
	var shift uint
	remaining, pos := n, p
	for remaining > 0 {
		take := remaining
		if take > chunkBits {
			take = chunkBits
		}
		bi, bo := pos/8, pos%8
		v := b.loadWord(bi, bo, take)
		if le {
			acc |= v << shift
			shift += uint(take)
		} else {
			acc = (acc << uint(take)) | v
		}
		pos += take
		remaining -= take
	}
	return acc
}

// checkBits validates that an n-bit read starting at bit p is in range,
// returning the precise IndexOutOfBounds/NotEnoughData kind per the
// read_int precondition order: position first, then length.
func (b *ReadBuffer) checkBits(p, n int) error {
	if p > b.bitLen {
		return errIndexOutOfBounds(p, b.bitLen)
	}
	if p+n > b.bitLen {
		return errNotEnoughData(n, b.bitLen-p)
	}
	return nil
}

// ReadBool reads the single bit at position p.
func (b *ReadBuffer) ReadBool(p int) (bool, error) {
	if err := b.checkBits(p, 1); err != nil {
		return false, err
	}
	return b.readBitsUnchecked(p, 1) != 0, nil
}

// ReadUint reads n unsigned bits (0 < n <= 64) starting at bit p.
func (b *ReadBuffer) ReadUint(p, n int) (uint64, error) {
	if n > 64 {
		return 0, errTooManyBits(n, 64)
	}
	if err := b.checkBits(p, n); err != nil {
		return 0, err
	}
	return b.readBitsUnchecked(p, n), nil
}

// ReadUintUnchecked is the unsigned entry documented as safe only after a
// CheckRead witness has confirmed there's room for the fast/padded path.
func (b *ReadBuffer) ReadUintUnchecked(p, n int) uint64 {
	return b.readBitsUnchecked(p, n)
}

// signExtend sign-extends the low n bits of v, assuming v's higher bits are
// already zero. Uses the standard shift-left-then-arithmetic-shift-right
// idiom rather than an explicit OR-mask.
func signExtend(v uint64, n int) int64 {
	if n >= 64 {
		return int64(v)
	}
	shift := uint(64 - n)
	return int64(v<<shift) >> shift
}

// ReadInt reads n bits (0 < n <= 64) and sign-extends them from bit n-1.
func (b *ReadBuffer) ReadInt(p, n int) (int64, error) {
	u, err := b.ReadUint(p, n)
	if err != nil {
		return 0, err
	}
	return signExtend(u, n), nil
}

// ReadIntUnchecked mirrors ReadUintUnchecked for the signed entry point.
func (b *ReadBuffer) ReadIntUnchecked(p, n int) int64 {
	return signExtend(b.readBitsUnchecked(p, n), n)
}

// ReadUint128 reads n unsigned bits (0 < n <= 128) as a Uint128.
func (b *ReadBuffer) ReadUint128(p, n int) (Uint128, error) {
	if n > 128 {
		return Uint128{}, errTooManyBits(n, 128)
	}
	if err := b.checkBits(p, n); err != nil {
		return Uint128{}, err
	}
	return b.readUint128Unchecked(p, n), nil
}

func (b *ReadBuffer) readUint128Unchecked(p, n int) Uint128 {
	if n <= 64 {
		return Uint128{Lo: b.readBitsUnchecked(p, n)}
	}
	if b.isLE() {
		lo := b.readBitsUnchecked(p, 64)
		hi := b.readBitsUnchecked(p+64, n-64)
		return Uint128{Hi: hi, Lo: lo}
	}
	hi := b.readBitsUnchecked(p, n-64)
	lo := b.readBitsUnchecked(p+n-64, 64)
	return Uint128{Hi: hi, Lo: lo}
}

// ReadInt128 reads n bits (0 < n <= 128) as a sign-extended Int128.
func (b *ReadBuffer) ReadInt128(p, n int) (Int128, error) {
	u, err := b.ReadUint128(p, n)
	if err != nil {
		return Int128{}, err
	}
	return signExtend128(u, n), nil
}

// ReadFloat32 reads 32 bits and reinterprets them as an IEEE-754 float32.
func (b *ReadBuffer) ReadFloat32(p int) (float32, error) {
	u, err := b.ReadUint(p, 32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(u)), nil
}

// ReadFloat64 reads 64 bits and reinterprets them as an IEEE-754 float64.
func (b *ReadBuffer) ReadFloat64(p int) (float64, error) {
	u, err := b.ReadUint(p, 64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ReadBytes returns k bytes starting at bit p. When p is byte-aligned the
// result borrows directly from the backing region (zero-copy); otherwise it
// is assembled one byte at a time via n=8 integer reads, per spec §6.
func (b *ReadBuffer) ReadBytes(p, k int) ([]byte, error) {
	if err := b.checkBits(p, k*8); err != nil {
		return nil, err
	}
	if p%8 == 0 {
		start := p / 8
		return b.bytes[start : start+k : start+k], nil
	}
	out := make([]byte, k)
	for i := 0; i < k; i++ {
		out[i] = byte(b.readBitsUnchecked(p+i*8, 8))
	}
	return out, nil
}

// ReadString reads exactly length bytes starting at bit p, validates UTF-8,
// and trims trailing NUL bytes (the fixed-length form of read_string).
func (b *ReadBuffer) ReadString(p, length int) (string, error) {
	raw, err := b.ReadBytes(p, length)
	if err != nil {
		return "", err
	}
	return trimAndValidate(raw, length)
}

// ReadStringUntilNull reads bytes from bit p until (but excluding) the
// first NUL byte, validating UTF-8 along the way. It returns the decoded
// string and the number of bits consumed (including the terminator).
func (b *ReadBuffer) ReadStringUntilNull(p int) (string, int, error) {
	maxBytes := (b.bitLen - p) / 8
	if p%8 != 0 {
		// Unaligned: fall back to the same one-byte-at-a-time scan a
		// misaligned record field would use; there is no borrowed span to
		// return here regardless, so the SWAR word scan buys nothing.
		var out []byte
		i := 0
		for {
			bitPos := p + i*8
			if bitPos+8 > b.bitLen {
				return "", 0, errNotEnoughData(8, b.bitLen-bitPos)
			}
			c := byte(b.readBitsUnchecked(bitPos, 8))
			if c == 0 {
				s, err := validateUTF8(out)
				return s, (i + 1) * 8, err
			}
			out = append(out, c)
			i++
		}
	}
	start := p / 8
	idx := -1
	for i := 0; i < maxBytes; i++ {
		if b.bytes[start+i] == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", 0, errNotEnoughData(8, b.bitLen-p)
	}
	s, err := validateUTF8(b.bytes[start : start+idx])
	return s, (idx + 1) * 8, err
}
