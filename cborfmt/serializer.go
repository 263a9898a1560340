package cborfmt

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/dhoelle/shapeshift"
)

const (
	majorText  = 3
	majorArray = 4
	majorMap   = 5
)

// appendHead appends a data item head for major type major and argument n.
func appendHead(b []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(b, m|byte(n))
	case n <= math.MaxUint8:
		return append(b, m|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, m|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(b, m|26), uint32(n))
	}
	return binary.BigEndian.AppendUint64(append(b, m|27), n)
}

// Serializer writes CBOR to an in-memory buffer. Enum values are
// externally tagged: a unit variant is a text string, every other variant
// a single-entry map from its name to the payload.
type Serializer struct {
	buf bytes.Buffer
}

var _ shapeshift.Serializer = (*Serializer)(nil)

func NewSerializer() *Serializer {
	return &Serializer{}
}

// Bytes returns everything written so far.
func (s *Serializer) Bytes() []byte { return s.buf.Bytes() }

func (s *Serializer) scalar(v any) error {
	b, err := encMode.Marshal(v)
	if err != nil {
		return &shapeshift.FormatError{Format: "cbor", Offset: int64(s.buf.Len()), Err: err}
	}
	s.buf.Write(b)
	return nil
}

func (s *Serializer) SerializeBool(v bool) error { return s.scalar(v) }

func (s *Serializer) SerializeInt(_ shapeshift.Kind, v int64) error   { return s.scalar(v) }
func (s *Serializer) SerializeUint(_ shapeshift.Kind, v uint64) error { return s.scalar(v) }

func (s *Serializer) SerializeInt128(v shapeshift.Int128) error   { return s.scalar(v.Big()) }
func (s *Serializer) SerializeUint128(v shapeshift.Uint128) error { return s.scalar(v.Big()) }

func (s *Serializer) SerializeFloat(k shapeshift.Kind, v float64) error {
	if k == shapeshift.KindF32 {
		return s.scalar(float32(v))
	}
	return s.scalar(v)
}

func (s *Serializer) SerializeChar(v rune) error    { return s.scalar(string(v)) }
func (s *Serializer) SerializeStr(v string) error   { return s.scalar(v) }
func (s *Serializer) SerializeBytes(v []byte) error { return s.scalar(v) }
func (s *Serializer) SerializeUnit() error          { return s.scalar(nil) }
func (s *Serializer) SerializeNone() error          { return s.scalar(nil) }

func (s *Serializer) SerializeSome(v shapeshift.Serializable) error {
	return v.Serialize(s)
}

func (s *Serializer) SerializeSeq(int) (shapeshift.SeqSerializer, error) {
	return &collection{parent: s, major: majorArray}, nil
}

func (s *Serializer) SerializeMap(int) (shapeshift.MapSerializer, error) {
	return &collection{parent: s, major: majorMap}, nil
}

func (s *Serializer) SerializeStruct(string, int) (shapeshift.StructSerializer, error) {
	return &collection{parent: s, major: majorMap}, nil
}

func (s *Serializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.scalar(variant)
}

func (s *Serializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v shapeshift.Serializable) error {
	if err := s.openVariant(variant); err != nil {
		return err
	}
	return v.Serialize(s)
}

func (s *Serializer) SerializeTupleVariant(_ string, _ uint32, variant string, _ int) (shapeshift.SeqSerializer, error) {
	if err := s.openVariant(variant); err != nil {
		return nil, err
	}
	return &collection{parent: s, major: majorArray}, nil
}

func (s *Serializer) SerializeStructVariant(_ string, _ uint32, variant string, _ int) (shapeshift.StructSerializer, error) {
	if err := s.openVariant(variant); err != nil {
		return nil, err
	}
	return &collection{parent: s, major: majorMap}, nil
}

// openVariant writes the head of a single-entry map and the variant name.
// The payload follows.
func (s *Serializer) openVariant(variant string) error {
	s.buf.Write(appendHead(nil, majorMap, 1))
	return s.scalar(variant)
}

// collection buffers its items so that the head written on End carries the
// number of items actually serialized.
type collection struct {
	parent *Serializer
	major  byte
	items  Serializer
	count  uint64
	keys   uint64
}

func (c *collection) SerializeElement(v shapeshift.Serializable) error {
	if err := v.Serialize(&c.items); err != nil {
		return err
	}
	c.count++
	return nil
}

func (c *collection) SerializeKey(k shapeshift.Serializable) error {
	if err := k.Serialize(&c.items); err != nil {
		return err
	}
	c.keys++
	return nil
}

func (c *collection) SerializeValue(v shapeshift.Serializable) error {
	return c.SerializeElement(v)
}

func (c *collection) SerializeField(name string, v shapeshift.Serializable) error {
	if err := c.items.SerializeStr(name); err != nil {
		return err
	}
	c.keys++
	return c.SerializeElement(v)
}

func (c *collection) End() error {
	if c.major == majorMap && c.keys != c.count {
		return shapeshift.Errorf("map has %d keys but %d values", c.keys, c.count)
	}
	c.parent.buf.Write(appendHead(nil, c.major, c.count))
	c.parent.buf.Write(c.items.Bytes())
	return nil
}
