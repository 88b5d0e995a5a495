package bitio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// scenarioS4Record mirrors spec scenario S4's field declaration order:
// foo, str (unsized, null-terminated), truncated (fixed size=2), bar
// (unsized u16), float (unsized f32), asd (size=3 bits), dyn (a
// size_bits=2 dynamic-width field), prev (size=asd, referencing the prior
// field's value).
type scenarioS4Record struct {
	Foo       uint8
	Str       string
	Truncated string `bitio:"size=2"`
	Bar       uint16
	Float     float32
	Asd       uint8 `bitio:"size=3"`
	Dyn       uint8 `bitio:"size_bits=2"`
	Prev      uint8 `bitio:"size=Asd"`
}

type RecordTestSuite struct {
	suite.Suite
}

func TestRecordTestSuite(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}

func (s *RecordTestSuite) TestScenarioS4CompositeRecord() {
	var data []byte
	data = append(data, 12)
	data = append(data, []byte("hello")...)
	data = append(data, 0) // terminates Str
	data = append(data, []byte("foo")...)
	data = append(data, 0)

	floatBits := make([]byte, 4)
	binary.LittleEndian.PutUint32(floatBits, math.Float32bits(12.5))
	data = append(data, floatBits...)
	data = append(data, 0x55, 0xAA)

	stream := NewReadStream(NewReadBuffer(data, LE))
	rec, err := Read[scenarioS4Record](stream)
	s.Require().NoError(err)

	s.Assert().EqualValues(12, rec.Foo)
	s.Assert().Equal("hello", rec.Str)
	s.Assert().Equal("fo", rec.Truncated)
	s.Assert().EqualValues(0x6F, rec.Bar)
	s.Assert().InDelta(12.5, rec.Float, 0)
	s.Assert().EqualValues(0b101, rec.Asd)
	s.Assert().EqualValues(0b10, rec.Dyn)
	s.Assert().EqualValues(0b10100, rec.Prev)
}

// TestPredictableSizeRoundTrip is testable property 6: when every field of
// a record is predictable, BitSize() equals the bits consumed by a read.
type fixedSizeRecord struct {
	A uint8
	B uint16
	C bool
	D float32
}

func (s *RecordTestSuite) TestPredictableSizeRoundTrip() {
	bits, ok := BitSize[fixedSizeRecord]()
	s.Require().True(ok)
	s.Assert().Equal(8+16+1+32, bits)

	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	in := fixedSizeRecord{A: 7, B: 1234, C: true, D: 1.5}
	s.Require().NoError(Write(ws, in))
	s.Assert().Equal(bits, ws.Pos())

	rb := NewReadBuffer(wb.Bytes(), BE)
	rs := NewReadStream(rb)
	out, err := Read[fixedSizeRecord](rs)
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
	s.Assert().Equal(bits, rs.Pos())
}

// unpredictableRecord has a variable-size field (size references a prior
// field), so BitSize must report ok=false.
type unpredictableRecord struct {
	Len  uint8
	Data string `bitio:"size=Len"`
}

func (s *RecordTestSuite) TestUnpredictableSizeReportsFalse() {
	_, ok := BitSize[unpredictableRecord]()
	s.Assert().False(ok)
}

type alignedRecord struct {
	Flag uint8 `bitio:"size=1"`
	Rest uint8 `bitio:"align"`
}

func (s *RecordTestSuite) TestAlignDirectiveMakesSizeUnpredictableAndSkipsToByteBoundary() {
	_, ok := BitSize[alignedRecord]()
	s.Assert().False(ok, "align makes the record size unpredictable per spec §4.4 item 2")

	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	require.NoError(s.T(), Write(ws, alignedRecord{Flag: 1, Rest: 0xAB}))
	s.Assert().Equal(16, ws.Pos(), "align pads the 1-bit flag out to a full byte before Rest")

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), BE))
	out, err := Read[alignedRecord](rs)
	s.Require().NoError(err)
	s.Assert().EqualValues(1, out.Flag)
	s.Assert().EqualValues(0xAB, out.Rest)
}

// TestOptionFieldRoundTrip exercises the option<T> built-in via a pointer
// field: present and absent cases.
type optionRecord struct {
	Tag   uint8
	Value *uint32
}

func (s *RecordTestSuite) TestOptionFieldRoundTrip() {
	for _, v := range []*uint32{nil, Ptr(uint32(0xCAFEBABE))} {
		wb := NewWriteBuffer(LE)
		ws := NewWriteStream(wb)
		in := optionRecord{Tag: 1, Value: v}
		s.Require().NoError(Write(ws, in))

		rs := NewReadStream(NewReadBuffer(wb.Bytes(), LE))
		out, err := Read[optionRecord](rs)
		s.Require().NoError(err)
		s.Assert().Equal(in.Tag, out.Tag)
		if v == nil {
			s.Assert().Nil(out.Value)
		} else {
			s.Require().NotNil(out.Value)
			s.Assert().Equal(*v, *out.Value)
		}
	}
}

// TestNestedRecordIsPredictableWhenFlat checks that a nested struct field
// contributes its own predictable size to the parent's.
type innerRecord struct {
	X uint8
	Y uint8
}

type outerRecord struct {
	Head  uint8
	Inner innerRecord
}

func (s *RecordTestSuite) TestNestedRecordIsPredictableWhenFlat() {
	bits, ok := BitSize[outerRecord]()
	s.Require().True(ok)
	s.Assert().Equal(8+8+8, bits)

	wb := NewWriteBuffer(BE)
	ws := NewWriteStream(wb)
	in := outerRecord{Head: 9, Inner: innerRecord{X: 1, Y: 2}}
	s.Require().NoError(Write(ws, in))

	rs := NewReadStream(NewReadBuffer(wb.Bytes(), BE))
	out, err := Read[outerRecord](rs)
	s.Require().NoError(err)
	s.Assert().Equal(in, out)
}
