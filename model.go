package shapeshift

import (
	"fmt"
	"math/big"
)

// Kind identifies one shape in the closed grammar shared by Serializer,
// Visitor and Content.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes
	KindUnit
	KindNone
	KindSome
	KindSeq
	KindMap
	KindUnitVariant
	KindNewtypeVariant
	KindTupleVariant
	KindStructVariant
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindBool:           "bool",
	KindI8:             "i8",
	KindI16:            "i16",
	KindI32:            "i32",
	KindI64:            "i64",
	KindI128:           "i128",
	KindU8:             "u8",
	KindU16:            "u16",
	KindU32:            "u32",
	KindU64:            "u64",
	KindU128:           "u128",
	KindF32:            "f32",
	KindF64:            "f64",
	KindChar:           "char",
	KindStr:            "string",
	KindBytes:          "bytes",
	KindUnit:           "unit",
	KindNone:           "none",
	KindSome:           "some",
	KindSeq:            "sequence",
	KindMap:            "map",
	KindUnitVariant:    "unit variant",
	KindNewtypeVariant: "newtype variant",
	KindTupleVariant:   "tuple variant",
	KindStructVariant:  "struct variant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsVariant reports whether k is one of the four enum variant shapes.
func (k Kind) IsVariant() bool {
	return k >= KindUnitVariant && k <= KindStructVariant
}

func (k Kind) isSigned() bool   { return k >= KindI8 && k <= KindI64 }
func (k Kind) isUnsigned() bool { return k >= KindU8 && k <= KindU64 }
func (k Kind) isFloat() bool    { return k == KindF32 || k == KindF64 }

// Int128 is a signed 128-bit integer in two's complement.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

var (
	two64      = new(big.Int).Lsh(big.NewInt(1), 64)
	two128     = new(big.Int).Lsh(big.NewInt(1), 128)
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// Big returns v as a big.Int.
func (v Int128) Big() *big.Int {
	b := new(big.Int).SetUint64(v.Lo)
	hi := new(big.Int).Lsh(big.NewInt(v.Hi), 64)
	return b.Add(b, hi)
}

func (v Int128) String() string { return v.Big().String() }

// Big returns v as a big.Int.
func (v Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(v.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(v.Lo))
}

func (v Uint128) String() string { return v.Big().String() }

// Int128FromBig converts b, reporting false if it does not fit.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minInt128) < 0 || b.Cmp(maxInt128) > 0 {
		return Int128{}, false
	}
	// Work on the two's complement representation.
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(u, 64)
	return Int128{Hi: int64(hi.Uint64()), Lo: lo.Uint64()}, true
}

// Uint128FromBig converts b, reporting false if it does not fit.
func Uint128FromBig(b *big.Int) (Uint128, bool) {
	if b.Sign() < 0 || b.Cmp(maxUint128) > 0 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}, true
}

// Serializer is the producer side of a wire format. Width-carrying calls
// take a Kind so that one entry point covers every width of a family.
//
// A length of -1 passed to a compound call means the length is not known in
// advance.
type Serializer interface {
	SerializeBool(v bool) error
	SerializeInt(k Kind, v int64) error
	SerializeUint(k Kind, v uint64) error
	SerializeInt128(v Int128) error
	SerializeUint128(v Uint128) error
	SerializeFloat(k Kind, v float64) error
	SerializeChar(v rune) error
	SerializeStr(v string) error
	SerializeBytes(v []byte) error
	SerializeUnit() error
	SerializeNone() error
	SerializeSome(v Serializable) error
	SerializeSeq(length int) (SeqSerializer, error)
	SerializeMap(length int) (MapSerializer, error)
	SerializeStruct(name string, length int) (StructSerializer, error)
	SerializeUnitVariant(name string, index uint32, variant string) error
	SerializeNewtypeVariant(name string, index uint32, variant string, v Serializable) error
	SerializeTupleVariant(name string, index uint32, variant string, length int) (SeqSerializer, error)
	SerializeStructVariant(name string, index uint32, variant string, length int) (StructSerializer, error)
}

// SeqSerializer writes the elements of a sequence or tuple variant.
type SeqSerializer interface {
	SerializeElement(v Serializable) error
	End() error
}

// MapSerializer writes map entries. Every SerializeKey must be followed by
// exactly one SerializeValue.
type MapSerializer interface {
	SerializeKey(k Serializable) error
	SerializeValue(v Serializable) error
	End() error
}

// StructSerializer writes the named fields of a struct or struct variant.
type StructSerializer interface {
	SerializeField(name string, v Serializable) error
	End() error
}

// SerializeEntry writes one key/value pair to m.
func SerializeEntry(m MapSerializer, k, v Serializable) error {
	if err := m.SerializeKey(k); err != nil {
		return err
	}
	return m.SerializeValue(v)
}

// Serializable is implemented by values that can write themselves to a
// Serializer.
type Serializable interface {
	Serialize(s Serializer) error
}

// SerializeFunc adapts a function to Serializable.
type SerializeFunc func(s Serializer) error

func (f SerializeFunc) Serialize(s Serializer) error { return f(s) }

// Deserializer is the consumer side of a wire format. It drives a Visitor
// with whatever shape comes next in the input.
//
// DeserializeOption and DeserializeEnum are hints: a self-describing format
// uses them to present null as VisitNone and tagged values as VisitEnum.
type Deserializer interface {
	DeserializeAny(v Visitor) error
	DeserializeOption(v Visitor) error
	DeserializeEnum(name string, variants []string, v Visitor) error
}

// Visitor receives exactly one shape from a Deserializer.
//
// VisitBytes receives borrowed=true when b aliases input that outlives the
// surrounding deserialize call. Otherwise b is only valid until VisitBytes
// returns.
type Visitor interface {
	VisitBool(v bool) error
	VisitInt(k Kind, v int64) error
	VisitUint(k Kind, v uint64) error
	VisitInt128(v Int128) error
	VisitUint128(v Uint128) error
	VisitFloat(k Kind, v float64) error
	VisitChar(v rune) error
	VisitStr(v string) error
	VisitBytes(b []byte, borrowed bool) error
	VisitUnit() error
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// SeqAccess iterates a sequence. NextElement returns false once the sequence
// is exhausted.
type SeqAccess interface {
	NextElement(dst Deserializable) (bool, error)
	// SizeHint returns the number of remaining elements, or -1 if unknown.
	SizeHint() int
}

// MapAccess iterates a map. NextKey returns false once no entries remain,
// which is distinct from a decoding error. Every successful NextKey must be
// followed by exactly one NextValue.
type MapAccess interface {
	NextKey(dst Deserializable) (bool, error)
	NextValue(dst Deserializable) error
	SizeHint() int
}

// EnumAccess exposes the discriminant of a tagged value.
type EnumAccess interface {
	Variant() (string, VariantAccess, error)
}

// VariantAccess consumes the payload of the variant returned by
// EnumAccess.Variant. Exactly one method must be called.
type VariantAccess interface {
	UnitVariant() error
	NewtypeVariant(dst Deserializable) error
	TupleVariant(length int, v Visitor) error
	StructVariant(fields []string, v Visitor) error
}

// Deserializable is implemented by (pointers to) values that can read
// themselves from a Deserializer.
type Deserializable interface {
	Deserialize(d Deserializer) error
}

// DeserializeFunc adapts a function to Deserializable.
type DeserializeFunc func(d Deserializer) error

func (f DeserializeFunc) Deserialize(d Deserializer) error { return f(d) }
