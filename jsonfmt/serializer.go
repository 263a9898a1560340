package jsonfmt

import (
	"math"
	"strconv"

	"github.com/dhoelle/shapeshift"
	"github.com/go-json-experiment/json/jsontext"
)

// Serializer writes values to a jsontext.Encoder.
//
// Unit and none are written as null, byte strings as arrays of numbers, and
// enum values externally tagged:
//
//	"Unit"
//	{"Newtype": payload}
//	{"Tuple": [a, b]}
//	{"Struct": {"a": a}}
type Serializer struct {
	enc *jsontext.Encoder
}

var _ shapeshift.Serializer = (*Serializer)(nil)

func NewSerializer(enc *jsontext.Encoder) *Serializer {
	return &Serializer{enc: enc}
}

func (s *Serializer) fail(err error) error {
	return &shapeshift.FormatError{
		Format:  "json",
		Offset:  s.enc.OutputOffset(),
		Pointer: string(s.enc.StackPointer()),
		Err:     err,
	}
}

func (s *Serializer) token(t jsontext.Token) error {
	if err := s.enc.WriteToken(t); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Serializer) raw(v []byte) error {
	if err := s.enc.WriteValue(jsontext.Value(v)); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Serializer) SerializeBool(v bool) error { return s.token(jsontext.Bool(v)) }

func (s *Serializer) SerializeInt(_ shapeshift.Kind, v int64) error {
	return s.token(jsontext.Int(v))
}

func (s *Serializer) SerializeUint(_ shapeshift.Kind, v uint64) error {
	return s.token(jsontext.Uint(v))
}

func (s *Serializer) SerializeInt128(v shapeshift.Int128) error {
	return s.raw([]byte(v.String()))
}

func (s *Serializer) SerializeUint128(v shapeshift.Uint128) error {
	return s.raw([]byte(v.String()))
}

func (s *Serializer) SerializeFloat(k shapeshift.Kind, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return shapeshift.Errorf("invalid value: %v cannot be represented in JSON", v)
	}
	if k == shapeshift.KindF32 {
		return s.raw(strconv.AppendFloat(nil, v, 'g', -1, 32))
	}
	return s.token(jsontext.Float(v))
}

func (s *Serializer) SerializeChar(v rune) error  { return s.token(jsontext.String(string(v))) }
func (s *Serializer) SerializeStr(v string) error { return s.token(jsontext.String(v)) }

func (s *Serializer) SerializeBytes(v []byte) error {
	if err := s.token(jsontext.BeginArray); err != nil {
		return err
	}
	for _, b := range v {
		if err := s.token(jsontext.Uint(uint64(b))); err != nil {
			return err
		}
	}
	return s.token(jsontext.EndArray)
}

func (s *Serializer) SerializeUnit() error { return s.token(jsontext.Null) }
func (s *Serializer) SerializeNone() error { return s.token(jsontext.Null) }

func (s *Serializer) SerializeSome(v shapeshift.Serializable) error {
	return v.Serialize(s)
}

func (s *Serializer) SerializeSeq(int) (shapeshift.SeqSerializer, error) {
	if err := s.token(jsontext.BeginArray); err != nil {
		return nil, err
	}
	return &compound{s: s, closers: []jsontext.Token{jsontext.EndArray}}, nil
}

func (s *Serializer) SerializeMap(int) (shapeshift.MapSerializer, error) {
	if err := s.token(jsontext.BeginObject); err != nil {
		return nil, err
	}
	return &compound{s: s, closers: []jsontext.Token{jsontext.EndObject}}, nil
}

func (s *Serializer) SerializeStruct(string, int) (shapeshift.StructSerializer, error) {
	if err := s.token(jsontext.BeginObject); err != nil {
		return nil, err
	}
	return &compound{s: s, closers: []jsontext.Token{jsontext.EndObject}}, nil
}

func (s *Serializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.token(jsontext.String(variant))
}

func (s *Serializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v shapeshift.Serializable) error {
	if err := s.openVariant(variant); err != nil {
		return err
	}
	if err := v.Serialize(s); err != nil {
		return err
	}
	return s.token(jsontext.EndObject)
}

func (s *Serializer) SerializeTupleVariant(_ string, _ uint32, variant string, _ int) (shapeshift.SeqSerializer, error) {
	if err := s.openVariant(variant); err != nil {
		return nil, err
	}
	if err := s.token(jsontext.BeginArray); err != nil {
		return nil, err
	}
	return &compound{s: s, closers: []jsontext.Token{jsontext.EndArray, jsontext.EndObject}}, nil
}

func (s *Serializer) SerializeStructVariant(_ string, _ uint32, variant string, _ int) (shapeshift.StructSerializer, error) {
	if err := s.openVariant(variant); err != nil {
		return nil, err
	}
	if err := s.token(jsontext.BeginObject); err != nil {
		return nil, err
	}
	return &compound{s: s, closers: []jsontext.Token{jsontext.EndObject, jsontext.EndObject}}, nil
}

// openVariant writes the opening brace and the variant name.
func (s *Serializer) openVariant(variant string) error {
	if err := s.token(jsontext.BeginObject); err != nil {
		return err
	}
	return s.token(jsontext.String(variant))
}

// compound writes the members of an array or object and closes it with
// closers.
type compound struct {
	s       *Serializer
	closers []jsontext.Token
}

func (c *compound) SerializeElement(v shapeshift.Serializable) error {
	return v.Serialize(c.s)
}

func (c *compound) SerializeKey(k shapeshift.Serializable) error {
	return k.Serialize(&keySerializer{
		SerializerBase: shapeshift.SerializerBase{Expected: "a string key"},
		s:              c.s,
	})
}

func (c *compound) SerializeValue(v shapeshift.Serializable) error {
	return v.Serialize(c.s)
}

func (c *compound) SerializeField(name string, v shapeshift.Serializable) error {
	if err := c.s.token(jsontext.String(name)); err != nil {
		return err
	}
	return v.Serialize(c.s)
}

func (c *compound) End() error {
	for _, t := range c.closers {
		if err := c.s.token(t); err != nil {
			return err
		}
	}
	return nil
}

// keySerializer writes object member names. Strings, chars, integers, bools
// and unit variants are accepted; integers and bools are quoted.
type keySerializer struct {
	shapeshift.SerializerBase
	s *Serializer
}

func (k *keySerializer) name(v string) error { return k.s.token(jsontext.String(v)) }

func (k *keySerializer) SerializeStr(v string) error { return k.name(v) }
func (k *keySerializer) SerializeChar(v rune) error  { return k.name(string(v)) }
func (k *keySerializer) SerializeBool(v bool) error  { return k.name(strconv.FormatBool(v)) }

func (k *keySerializer) SerializeInt(_ shapeshift.Kind, v int64) error {
	return k.name(strconv.FormatInt(v, 10))
}

func (k *keySerializer) SerializeUint(_ shapeshift.Kind, v uint64) error {
	return k.name(strconv.FormatUint(v, 10))
}

func (k *keySerializer) SerializeInt128(v shapeshift.Int128) error   { return k.name(v.String()) }
func (k *keySerializer) SerializeUint128(v shapeshift.Uint128) error { return k.name(v.String()) }

func (k *keySerializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return k.name(variant)
}

func (k *keySerializer) SerializeSome(v shapeshift.Serializable) error {
	return v.Serialize(k)
}
