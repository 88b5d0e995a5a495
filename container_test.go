package bitio

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ContainerTestSuite struct {
	suite.Suite
}

func TestContainerTestSuite(t *testing.T) {
	suite.Run(t, new(ContainerTestSuite))
}

func (s *ContainerTestSuite) TestOptionRoundTrip() {
	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)

	s.Require().NoError(WriteOption[uint32](ws, Ptr(uint32(0xDEADBEEF))))
	s.Require().NoError(WriteOption[uint32](ws, nil))

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), BE))
	got, err := ReadOption[uint32](rs)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().EqualValues(0xDEADBEEF, *got)

	absent, err := ReadOption[uint32](rs)
	s.Require().NoError(err)
	s.Assert().Nil(absent)
}

func (s *ContainerTestSuite) TestOptionSizedRoundTrip() {
	wb := NewWriteBuffer(LE)
	ws := NewWriteStream(wb)

	s.Require().NoError(WriteOptionSized[uint16](ws, Ptr(uint16(0x1F)), 5))
	s.Require().NoError(WriteOptionSized[uint16](ws, nil, 5))

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), LE))
	got, err := ReadOptionSized[uint16](rs, 5)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().EqualValues(0x1F, *got)

	absent, err := ReadOptionSized[uint16](rs, 5)
	s.Require().NoError(err)
	s.Assert().Nil(absent)
}

func (s *ContainerTestSuite) TestVectorRoundTrip() {
	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	in := []uint8{1, 2, 3, 4, 5}
	s.Require().NoError(WriteVector(ws, in))

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), BE))
	out, err := ReadVector[uint8](rs, len(in))
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
}

func (s *ContainerTestSuite) TestVectorSizedRoundTrip() {
	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	in := []uint8{0b101, 0b011, 0b111, 0b000}
	s.Require().NoError(WriteVectorSized(ws, in, 3))
	s.Assert().Equal(3*len(in), ws.Pos())

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), BE))
	out, err := ReadVectorSized[uint8](rs, len(in), 3)
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
}

func (s *ContainerTestSuite) TestMappingRoundTrip() {
	wb := NewWriteBuffer(LE)
	ws := NewWriteStream(wb)
	in := []Pair[uint8, uint16]{
		{Key: 1, Value: 0x1111},
		{Key: 2, Value: 0x2222},
	}
	s.Require().NoError(WriteMapping(ws, in))

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), LE))
	out, err := ReadMapping[uint8, uint16](rs, len(in))
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
}

// TestSubStreamRoundTrip exercises the sub-stream row of the built-in codec
// table: a child stream's remaining bits can be written back out verbatim.
func (s *ContainerTestSuite) TestSubStreamRoundTrip() {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	parent := NewReadStream(NewReadBuffer(data, BE))
	_, err := parent.ReadUint(8)
	s.Require().NoError(err)

	sub, err := ReadSubStream(parent, 16)
	s.Require().NoError(err)

	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	s.Require().NoError(WriteSubStream(ws, sub))
	s.Assert().Equal([]byte{0xBB, 0xCC}, wb.Bytes())
}
