package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReadStreamTestSuite struct {
	suite.Suite
}

func TestReadStreamTestSuite(t *testing.T) {
	suite.Run(t, new(ReadStreamTestSuite))
}

// TestPositionAccounting is testable property 2: after any successful read
// of n bits, pos advances by exactly n.
func (s *ReadStreamTestSuite) TestPositionAccounting() {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i + 1)
	}
	stream := NewReadStream(NewReadBuffer(data, BE))

	s.Assert().Equal(0, stream.Pos())
	_, err := stream.ReadUint(5)
	s.Require().NoError(err)
	s.Assert().Equal(5, stream.Pos())

	_, err = stream.ReadInt(20)
	s.Require().NoError(err)
	s.Assert().Equal(25, stream.Pos())

	_, err = stream.ReadBool()
	s.Require().NoError(err)
	s.Assert().Equal(26, stream.Pos())

	_, err = stream.ReadFloat32()
	s.Require().NoError(err)
	s.Assert().Equal(58, stream.Pos())
}

// TestCheckReadUncheckedEquivalence is testable property 4: wherever
// CheckRead permits the fast path, the unchecked and checked entries agree.
func (s *ReadStreamTestSuite) TestCheckReadUncheckedEquivalence() {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i*37 + 11)
	}
	for _, order := range []ByteOrder{LE, BE} {
		for n := 1; n <= 60; n += 7 {
			checked := NewReadStream(NewReadBuffer(data, order))
			unchecked := NewReadStream(NewReadBuffer(data, order))

			end, err := checked.CheckRead(n)
			s.Require().NoError(err)
			s.Require().True(end, "expected fast path available for n=%d", n)

			want, err := checked.ReadUint(n)
			s.Require().NoError(err)
			got := unchecked.ReadUintUnchecked(n)
			s.Assert().Equal(want, got, "order=%v n=%d", order, n)
		}
	}
}

func (s *ReadStreamTestSuite) TestCheckReadExactAndInsufficient() {
	data := make([]byte, 2)
	stream := NewReadStream(NewReadBuffer(data, BE))

	end, err := stream.CheckRead(16)
	s.Require().NoError(err)
	s.Assert().False(end) // exactly enough data, no padded tail

	_, err = stream.CheckRead(17)
	s.Assert().ErrorIs(err, ErrNotEnoughData)
}

func (s *ReadStreamTestSuite) TestSetPosAndSkipBits() {
	data := make([]byte, 4)
	stream := NewReadStream(NewReadBuffer(data, LE))

	s.Require().NoError(stream.SkipBits(10))
	s.Assert().Equal(10, stream.Pos())

	s.Require().NoError(stream.SetPos(3))
	s.Assert().Equal(3, stream.Pos())

	s.Assert().ErrorIs(stream.SetPos(33), ErrIndexOutOfBounds)
	s.Assert().ErrorIs(stream.SkipBits(100), ErrNotEnoughData)
}

// TestSubStreamIsolatesCursor checks spec §4.2's sub-stream contract: the
// parent's cursor advances past the sub-range, the child has its own
// independent cursor starting at the sub-range's beginning.
func (s *ReadStreamTestSuite) TestSubStreamIsolatesCursor() {
	data := []byte{0xFF, 0x00, 0xAA, 0xBB}
	parent := NewReadStream(NewReadBuffer(data, BE))

	_, err := parent.ReadUint(8) // consume byte 0
	s.Require().NoError(err)

	child, err := parent.SubStream(16)
	s.Require().NoError(err)
	s.Assert().Equal(24, parent.Pos())
	s.Assert().Equal(0, child.Pos())

	v, err := child.ReadUint(16)
	s.Require().NoError(err)
	s.Assert().EqualValues(0x00AA, v)
	s.Assert().Equal(24, parent.Pos(), "parent cursor must not move when child reads")
}

func (s *ReadStreamTestSuite) TestToOwnedTrimsToVisibleRange() {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}
	parent := NewReadStream(NewReadBuffer(data, LE))
	_, err := parent.ReadUint(20)
	s.Require().NoError(err)

	sub, err := parent.SubStream(40)
	s.Require().NoError(err)

	owned := sub.ToOwned()
	s.Assert().Equal(sub.BitsLeft(), owned.BitsLeft())

	a, err := sub.ReadUint(32)
	s.Require().NoError(err)
	b, err := owned.ReadUint(32)
	s.Require().NoError(err)
	s.Assert().Equal(a, b)
}

func (s *ReadStreamTestSuite) TestEqualComparesRemainingBits() {
	data := make([]byte, 9)
	for i := range data {
		data[i] = byte(i * 13)
	}
	a := NewReadStream(NewReadBuffer(data, BE))
	b := NewReadStream(NewReadBuffer(append([]byte{}, data...), BE))
	s.Assert().True(a.Equal(b))

	_, err := a.ReadUint(3)
	s.Require().NoError(err)
	s.Assert().False(a.Equal(b))
}

// TestReadStringUntilNullTrimsAtSubStreamBoundary covers §4.2's carveout: a
// string read that would cross a sub-stream boundary (but not the parent
// buffer) trims to the longest valid UTF-8 prefix that fits.
func (s *ReadStreamTestSuite) TestReadStringUntilNullTrimsAtSubStreamBoundary() {
	payload := append([]byte("hello world, terminated past the sub-stream"), 0)
	parent := NewReadStream(NewReadBuffer(payload, LE))
	sub, err := parent.SubStream(8 * 5) // "hello", no NUL inside
	s.Require().NoError(err)

	str, err := sub.ReadStringUntilNull()
	s.Require().NoError(err)
	s.Assert().Equal("hello", str)
}

func (s *ReadStreamTestSuite) TestReadBytesAdvancesPosByByteCount() {
	data := []byte{1, 2, 3, 4}
	stream := NewReadStream(NewReadBuffer(data, LE))
	out, err := stream.ReadBytes(3)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{1, 2, 3}, out)
	s.Assert().Equal(24, stream.Pos())
}

func TestReadStreamMalformedUTF8AdvancesCursor(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'o', 'k'}
	stream := NewReadStream(NewReadBuffer(data, LE))
	_, err := stream.ReadString(2)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindUTF8, e.Kind)
	require.Equal(t, 16, stream.Pos(), "cursor advances past the attempted region even on error")
}
