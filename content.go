package shapeshift

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Content is a format-agnostic snapshot of one serialized value. It is
// created once by capturing from a Deserializer (see Capture) or from a
// Serializable (see ToContent), and consumed by replaying it into a
// Serializer (Content.Serialize) or a Visitor (NewContentDeserializer).
//
// Content is never mutated after construction. Callers must not modify the
// slices returned by its accessors.
type Content struct {
	kind Kind

	// num holds bool (0/1), integer bits, float bits, char, and the low word
	// of 128-bit integers. hi holds the high word.
	num uint64
	hi  uint64

	// str holds string content, or the variant name for variant kinds.
	str string

	// name and index identify the enum type of variant kinds.
	name  string
	index uint32

	bytes    []byte
	borrowed bool

	// elems holds sequence elements, tuple variant fields, or the single
	// payload of Some and newtype variants.
	elems []Content

	// entries holds map entries and struct variant fields.
	entries []ContentEntry
}

// ContentEntry is one key/value pair of a map or struct variant Content.
type ContentEntry struct {
	Key   Content
	Value Content
}

func BoolContent(v bool) Content {
	c := Content{kind: KindBool}
	if v {
		c.num = 1
	}
	return c
}

// IntContent returns signed integer content. k must be one of KindI8 through
// KindI64.
func IntContent(k Kind, v int64) Content {
	if !k.isSigned() {
		panic("shapeshift: IntContent called with " + k.String())
	}
	return Content{kind: k, num: uint64(v)}
}

// UintContent returns unsigned integer content. k must be one of KindU8
// through KindU64.
func UintContent(k Kind, v uint64) Content {
	if !k.isUnsigned() {
		panic("shapeshift: UintContent called with " + k.String())
	}
	return Content{kind: k, num: v}
}

func Int128Content(v Int128) Content {
	return Content{kind: KindI128, num: v.Lo, hi: uint64(v.Hi)}
}

func Uint128Content(v Uint128) Content {
	return Content{kind: KindU128, num: v.Lo, hi: v.Hi}
}

// FloatContent returns floating point content. k must be KindF32 or KindF64.
func FloatContent(k Kind, v float64) Content {
	if !k.isFloat() {
		panic("shapeshift: FloatContent called with " + k.String())
	}
	return Content{kind: k, num: math.Float64bits(v)}
}

func CharContent(v rune) Content { return Content{kind: KindChar, num: uint64(v)} }

func StringContent(v string) Content { return Content{kind: KindStr, str: v} }

// BytesContent returns byte string content. If borrowed is false, b is
// copied.
func BytesContent(b []byte, borrowed bool) Content {
	if !borrowed {
		b = bytes.Clone(b)
	}
	return Content{kind: KindBytes, bytes: b, borrowed: borrowed}
}

func UnitContent() Content { return Content{kind: KindUnit} }

func NoneContent() Content { return Content{kind: KindNone} }

func SomeContent(v Content) Content {
	return Content{kind: KindSome, elems: []Content{v}}
}

func SeqContent(elems []Content) Content {
	return Content{kind: KindSeq, elems: elems}
}

func MapContent(entries []ContentEntry) Content {
	return Content{kind: KindMap, entries: entries}
}

func UnitVariantContent(name string, index uint32, variant string) Content {
	return Content{kind: KindUnitVariant, name: name, index: index, str: variant}
}

func NewtypeVariantContent(name string, index uint32, variant string, v Content) Content {
	return Content{kind: KindNewtypeVariant, name: name, index: index, str: variant, elems: []Content{v}}
}

func TupleVariantContent(name string, index uint32, variant string, fields []Content) Content {
	return Content{kind: KindTupleVariant, name: name, index: index, str: variant, elems: fields}
}

// StructVariantContent returns struct variant content. Every field key must
// be string content.
func StructVariantContent(name string, index uint32, variant string, fields []ContentEntry) Content {
	return Content{kind: KindStructVariant, name: name, index: index, str: variant, entries: fields}
}

// Kind reports the shape of c. The zero Content has KindInvalid.
func (c Content) Kind() Kind { return c.kind }

func (c Content) Bool() bool { return c.num != 0 }

func (c Content) Int() int64 { return int64(c.num) }

func (c Content) Uint() uint64 { return c.num }

func (c Content) Int128() Int128 { return Int128{Hi: int64(c.hi), Lo: c.num} }

func (c Content) Uint128() Uint128 { return Uint128{Hi: c.hi, Lo: c.num} }

func (c Content) Float() float64 { return math.Float64frombits(c.num) }

func (c Content) Char() rune { return rune(c.num) }

// Str returns string content, or the variant name of variant content.
func (c Content) Str() string { return c.str }

func (c Content) Bytes() []byte { return c.bytes }

// Borrowed reports whether byte content aliases the input it was captured
// from.
func (c Content) Borrowed() bool { return c.borrowed }

// Elems returns sequence elements or tuple variant fields.
func (c Content) Elems() []Content {
	switch c.kind {
	case KindSeq, KindTupleVariant:
		return c.elems
	}
	return nil
}

// Payload returns the wrapped value of Some and newtype variant content.
func (c Content) Payload() (Content, bool) {
	switch c.kind {
	case KindSome, KindNewtypeVariant:
		return c.elems[0], true
	}
	return Content{}, false
}

// Entries returns map entries or struct variant fields.
func (c Content) Entries() []ContentEntry { return c.entries }

// Variant returns the enum name, variant index and variant name of variant
// content.
func (c Content) Variant() (name string, index uint32, variant string) {
	return c.name, c.index, c.str
}

// Equal reports whether c and o have the same shape and payload. Floats are
// compared bit for bit; the borrowed flag of byte content is ignored.
func (c Content) Equal(o Content) bool {
	if c.kind != o.kind || c.num != o.num || c.hi != o.hi || c.str != o.str ||
		c.name != o.name || c.index != o.index || !bytes.Equal(c.bytes, o.bytes) ||
		len(c.elems) != len(o.elems) || len(c.entries) != len(o.entries) {
		return false
	}
	for i := range c.elems {
		if !c.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	for i := range c.entries {
		if !c.entries[i].Key.Equal(o.entries[i].Key) || !c.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

// String renders c for debugging.
func (c Content) String() string {
	var b strings.Builder
	c.format(&b)
	return b.String()
}

func (c Content) format(b *strings.Builder) {
	switch c.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(c.Bool()))
	case KindI8, KindI16, KindI32, KindI64:
		fmt.Fprintf(b, "%s(%d)", c.kind, c.Int())
	case KindU8, KindU16, KindU32, KindU64:
		fmt.Fprintf(b, "%s(%d)", c.kind, c.Uint())
	case KindI128:
		fmt.Fprintf(b, "i128(%s)", c.Int128())
	case KindU128:
		fmt.Fprintf(b, "u128(%s)", c.Uint128())
	case KindF32, KindF64:
		fmt.Fprintf(b, "%s(%g)", c.kind, c.Float())
	case KindChar:
		fmt.Fprintf(b, "%q", c.Char())
	case KindStr:
		b.WriteString(strconv.Quote(c.str))
	case KindBytes:
		fmt.Fprintf(b, "bytes(%x)", c.bytes)
	case KindUnit:
		b.WriteString("()")
	case KindNone:
		b.WriteString("None")
	case KindSome:
		b.WriteString("Some(")
		c.elems[0].format(b)
		b.WriteByte(')')
	case KindSeq:
		b.WriteByte('[')
		formatList(b, c.elems)
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		formatEntries(b, c.entries)
		b.WriteByte('}')
	case KindUnitVariant:
		b.WriteString(c.str)
	case KindNewtypeVariant:
		b.WriteString(c.str)
		b.WriteByte('(')
		c.elems[0].format(b)
		b.WriteByte(')')
	case KindTupleVariant:
		b.WriteString(c.str)
		b.WriteByte('(')
		formatList(b, c.elems)
		b.WriteByte(')')
	case KindStructVariant:
		b.WriteString(c.str)
		b.WriteString("{")
		formatEntries(b, c.entries)
		b.WriteByte('}')
	default:
		b.WriteString("<invalid>")
	}
}

func formatList(b *strings.Builder, elems []Content) {
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		e.format(b)
	}
}

func formatEntries(b *strings.Builder, entries []ContentEntry) {
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		e.Key.format(b)
		b.WriteString(": ")
		e.Value.format(b)
	}
}
