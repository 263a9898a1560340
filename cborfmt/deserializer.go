package cborfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"

	"github.com/dhoelle/shapeshift"
)

var errIndefinite = errors.New("indefinite-length items are not supported")

// Deserializer reads CBOR data items from a byte slice. Arrays and maps
// are walked item by item; every other item is decoded whole.
type Deserializer struct {
	st *cursor
}

var _ shapeshift.Deserializer = (*Deserializer)(nil)

type cursor struct {
	data []byte
	off  int
}

func NewDeserializer(data []byte) *Deserializer {
	return &Deserializer{st: &cursor{data: data}}
}

// Rest returns the bytes not consumed yet.
func (d *Deserializer) Rest() []byte { return d.st.data[d.st.off:] }

func (d *Deserializer) fail(err error) error {
	return &shapeshift.FormatError{Format: "cbor", Offset: int64(d.st.off), Err: err}
}

// peek returns the major type and additional information of the next
// initial byte.
func (d *Deserializer) peek() (major, info byte, err error) {
	if d.st.off >= len(d.st.data) {
		return 0, 0, d.fail(io.ErrUnexpectedEOF)
	}
	ib := d.st.data[d.st.off]
	return ib >> 5, ib & 31, nil
}

// head consumes a data item head and returns its argument.
func (d *Deserializer) head() (major byte, n uint64, err error) {
	major, info, err := d.peek()
	if err != nil {
		return 0, 0, err
	}
	rest := d.st.data[d.st.off+1:]
	size := 0
	switch {
	case info < 24:
		n = uint64(info)
	case info == 24 && len(rest) >= 1:
		n, size = uint64(rest[0]), 1
	case info == 25 && len(rest) >= 2:
		n, size = uint64(binary.BigEndian.Uint16(rest)), 2
	case info == 26 && len(rest) >= 4:
		n, size = uint64(binary.BigEndian.Uint32(rest)), 4
	case info == 27 && len(rest) >= 8:
		n, size = binary.BigEndian.Uint64(rest), 8
	case info == 31:
		return 0, 0, d.fail(errIndefinite)
	case info < 28:
		return 0, 0, d.fail(io.ErrUnexpectedEOF)
	default:
		return 0, 0, d.fail(fmt.Errorf("invalid additional information %d", info))
	}
	d.st.off += 1 + size
	return major, n, nil
}

// length consumes an array or map head and checks that the announced
// number of items could fit in the remaining input.
func (d *Deserializer) length() (major byte, n int, err error) {
	major, u, err := d.head()
	if err != nil {
		return 0, 0, err
	}
	if u > uint64(len(d.st.data)-d.st.off) {
		return 0, 0, d.fail(fmt.Errorf("length %d exceeds remaining input", u))
	}
	return major, int(u), nil
}

// scalar decodes the next data item whole.
func (d *Deserializer) scalar() (any, error) {
	var v any
	rest, err := decMode.UnmarshalFirst(d.st.data[d.st.off:], &v)
	if err != nil {
		return nil, d.fail(err)
	}
	d.st.off = len(d.st.data) - len(rest)
	return v, nil
}

func (d *Deserializer) DeserializeAny(v shapeshift.Visitor) error {
	major, info, err := d.peek()
	if err != nil {
		return err
	}
	if info == 31 && (major == majorArray || major == majorMap) {
		return d.fail(errIndefinite)
	}
	switch major {
	case majorArray:
		_, n, err := d.length()
		if err != nil {
			return err
		}
		a := &seqAccess{d: d, left: n}
		if err := v.VisitSeq(a); err != nil {
			return err
		}
		return a.finish()
	case majorMap:
		_, n, err := d.length()
		if err != nil {
			return err
		}
		a := &mapAccess{d: d, left: n}
		if err := v.VisitMap(a); err != nil {
			return err
		}
		return a.finish()
	}

	start := d.st.off
	x, err := d.scalar()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case nil:
		return v.VisitUnit()
	case bool:
		return v.VisitBool(x)
	case uint64:
		return v.VisitUint(shapeshift.KindU64, x)
	case int64:
		if x >= 0 {
			return v.VisitUint(shapeshift.KindU64, uint64(x))
		}
		return v.VisitInt(shapeshift.KindI64, x)
	case big.Int:
		return visitBig(&x, v, d, start)
	case *big.Int:
		return visitBig(x, v, d, start)
	case float64:
		return v.VisitFloat(shapeshift.KindF64, x)
	case string:
		return v.VisitStr(x)
	case []byte:
		return v.VisitBytes(x, false)
	}
	return &shapeshift.FormatError{
		Format: "cbor",
		Offset: int64(start),
		Err:    &shapeshift.ErrTypeMismatch{Got: fmt.Sprintf("%T", x), Expected: "a CBOR data item"},
	}
}

func visitBig(b *big.Int, v shapeshift.Visitor, d *Deserializer, start int) error {
	if b.Sign() < 0 {
		if i, ok := shapeshift.Int128FromBig(b); ok {
			return v.VisitInt128(i)
		}
	} else if u, ok := shapeshift.Uint128FromBig(b); ok {
		return v.VisitUint128(u)
	}
	return &shapeshift.FormatError{
		Format: "cbor",
		Offset: int64(start),
		Err:    shapeshift.Errorf("integer %s does not fit in 128 bits", b),
	}
}

// isNull reports whether the next item is null or undefined.
func (d *Deserializer) isNull() bool {
	if d.st.off >= len(d.st.data) {
		return false
	}
	ib := d.st.data[d.st.off]
	return ib == 0xf6 || ib == 0xf7
}

func (d *Deserializer) DeserializeOption(v shapeshift.Visitor) error {
	if d.isNull() {
		d.st.off++
		return v.VisitNone()
	}
	return v.VisitSome(d)
}

// DeserializeEnum reads a text string naming a unit variant or a
// single-entry map from the variant name to its payload.
func (d *Deserializer) DeserializeEnum(_ string, variants []string, v shapeshift.Visitor) error {
	major, _, err := d.peek()
	if err != nil {
		return err
	}
	unit := false
	switch major {
	case majorText:
		unit = true
	case majorMap:
		_, n, err := d.length()
		if err != nil {
			return err
		}
		if n != 1 {
			return d.fail(&shapeshift.ErrTypeMismatch{Got: fmt.Sprintf("map with %d entries", n), Expected: "a map with a single key"})
		}
	default:
		return d.fail(&shapeshift.ErrTypeMismatch{Got: fmt.Sprintf("major type %d", major), Expected: "a string or a map"})
	}

	var variant string
	if err := d.text(&variant); err != nil {
		return err
	}
	if len(variants) > 0 && !slices.Contains(variants, variant) {
		return &shapeshift.ErrUnknownVariant{Variant: variant, Expected: variants}
	}
	return v.VisitEnum(&enumAccess{d: d, variant: variant, unit: unit})
}

func (d *Deserializer) text(dst *string) error {
	if major, _, err := d.peek(); err != nil {
		return err
	} else if major != majorText {
		return d.fail(&shapeshift.ErrTypeMismatch{Got: fmt.Sprintf("major type %d", major), Expected: "a text string"})
	}
	rest, err := decMode.UnmarshalFirst(d.st.data[d.st.off:], dst)
	if err != nil {
		return d.fail(err)
	}
	d.st.off = len(d.st.data) - len(rest)
	return nil
}

type seqAccess struct {
	d    *Deserializer
	left int
	n    int
}

func (a *seqAccess) NextElement(dst shapeshift.Deserializable) (bool, error) {
	if a.left == 0 {
		return false, nil
	}
	a.left--
	a.n++
	return true, dst.Deserialize(a.d)
}

func (a *seqAccess) SizeHint() int { return a.left }

// finish skips elements the visitor did not read and reports them.
func (a *seqAccess) finish() error {
	if a.left == 0 {
		return nil
	}
	consumed := a.n
	for a.left > 0 {
		if _, err := a.NextElement(&shapeshift.IgnoredAny{}); err != nil {
			return err
		}
	}
	return a.d.fail(&shapeshift.ErrLengthMismatch{Expected: consumed, Actual: a.n})
}

type mapAccess struct {
	d    *Deserializer
	left int
	n    int
}

func (a *mapAccess) NextKey(dst shapeshift.Deserializable) (bool, error) {
	if a.left == 0 {
		return false, nil
	}
	a.left--
	a.n++
	return true, dst.Deserialize(a.d)
}

func (a *mapAccess) NextValue(dst shapeshift.Deserializable) error {
	return dst.Deserialize(a.d)
}

func (a *mapAccess) SizeHint() int { return a.left }

func (a *mapAccess) finish() error {
	if a.left == 0 {
		return nil
	}
	consumed := a.n
	for a.left > 0 {
		if _, err := a.NextKey(&shapeshift.IgnoredAny{}); err != nil {
			return err
		}
		if err := a.NextValue(&shapeshift.IgnoredAny{}); err != nil {
			return err
		}
	}
	return a.d.fail(&shapeshift.ErrLengthMismatch{Expected: consumed, Actual: a.n})
}

type enumAccess struct {
	d       *Deserializer
	variant string
	unit    bool
}

func (a *enumAccess) Variant() (string, shapeshift.VariantAccess, error) {
	return a.variant, a, nil
}

func (a *enumAccess) UnitVariant() error {
	if a.unit {
		return nil
	}
	if !a.d.isNull() {
		return a.d.fail(&shapeshift.ErrTypeMismatch{Got: "payload", Expected: "unit variant " + a.variant})
	}
	a.d.st.off++
	return nil
}

func (a *enumAccess) NewtypeVariant(dst shapeshift.Deserializable) error {
	if a.unit {
		return dst.Deserialize(shapeshift.NewContentDeserializer(shapeshift.UnitContent()))
	}
	return dst.Deserialize(a.d)
}

func (a *enumAccess) TupleVariant(_ int, v shapeshift.Visitor) error {
	if a.unit {
		return &shapeshift.ErrTypeMismatch{Got: "unit variant", Expected: "tuple variant " + a.variant}
	}
	return a.d.DeserializeAny(v)
}

func (a *enumAccess) StructVariant(_ []string, v shapeshift.Visitor) error {
	if a.unit {
		return &shapeshift.ErrTypeMismatch{Got: "unit variant", Expected: "struct variant " + a.variant}
	}
	return a.d.DeserializeAny(v)
}
