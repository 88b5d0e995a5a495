package bitio

// Record provides a generic Codec implementation for any type Body
// covered by Read[Body]/Write[Body] (built-in, record, or sum), the
// bit-level analogue of the teacher's Fixed[Payload] wrapper. Unlike
// Fixed, Body is not required to be constant-size: Size() falls back to a
// full marshal when BitSize[Body] can't be determined without the data.
type Record[Body any] struct {
	Payload Body
	Order   ByteOrder
}

// NewRecord wraps payload for Codec-style marshaling under the given byte order.
func NewRecord[Body any](payload Body, order ByteOrder) *Record[Body] {
	return &Record[Body]{Payload: payload, Order: order}
}

// Statically assert that Record implements Codec.
var _ Codec = (*Record[struct{}])(nil)

func (c *Record[Body]) order() ByteOrder {
	if c.Order == nil {
		return BE
	}
	return c.Order
}

// Size returns the encoded size in bytes. When Body's bit size is
// statically predictable this is a cheap lookup; otherwise it performs a
// full marshal to measure.
func (c *Record[Body]) Size() int {
	if bits, ok := BitSize[Body](); ok {
		return (bits + 7) / 8
	}
	data, err := MarshalBinaryGeneric(c.Payload, c.order())
	if err != nil {
		return 0
	}
	return len(data)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Record[Body]) MarshalBinary() ([]byte, error) {
	return MarshalBinaryGeneric(c.Payload, c.order())
}

// MarshalTo implements the zero-allocation Marshaler entry.
func (c *Record[Body]) MarshalTo(buf []byte) (int, error) {
	return MarshalToGeneric(c.Payload, buf, c.order())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects
// non-zero trailing bytes past what Body actually consumed, the same
// truncation guard the teacher's Fixed.UnmarshalBinary applies via
// CheckBufferNotZeros.
func (c *Record[Body]) UnmarshalBinary(data []byte) error {
	v, err := UnmarshalBinaryGeneric[Body](data, c.order())
	if err != nil {
		return err
	}
	c.Payload = v
	return nil
}
