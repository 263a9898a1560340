package jsonfmt

import (
	"errors"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/dhoelle/shapeshift"
	"github.com/go-json-experiment/json/jsontext"
)

// Deserializer reads values from a jsontext.Decoder. It accepts the forms
// written by Serializer.
//
// Integers that do not fit in 64 bits are delivered as 128-bit integers.
// Object member names are always delivered as strings.
type Deserializer struct {
	dec *jsontext.Decoder
}

var _ shapeshift.Deserializer = (*Deserializer)(nil)

func NewDeserializer(dec *jsontext.Decoder) *Deserializer {
	return &Deserializer{dec: dec}
}

func (d *Deserializer) fail(err error) error {
	return &shapeshift.FormatError{
		Format:  "json",
		Offset:  d.dec.InputOffset(),
		Pointer: string(d.dec.StackPointer()),
		Err:     err,
	}
}

func (d *Deserializer) read() (jsontext.Token, error) {
	tok, err := d.dec.ReadToken()
	if err != nil {
		return tok, d.fail(err)
	}
	return tok, nil
}

// expect reads one token and fails unless it has kind k.
func (d *Deserializer) expect(k jsontext.Kind) error {
	tok, err := d.read()
	if err != nil {
		return err
	}
	if tok.Kind() != k {
		return d.fail(&shapeshift.ErrTypeMismatch{Got: tok.Kind().String(), Expected: k.String()})
	}
	return nil
}

func (d *Deserializer) DeserializeAny(v shapeshift.Visitor) error {
	switch k := d.dec.PeekKind(); k {
	case 'n':
		if _, err := d.read(); err != nil {
			return err
		}
		return v.VisitUnit()
	case 't', 'f':
		tok, err := d.read()
		if err != nil {
			return err
		}
		return v.VisitBool(tok.Bool())
	case '"':
		tok, err := d.read()
		if err != nil {
			return err
		}
		return v.VisitStr(tok.String())
	case '0':
		tok, err := d.read()
		if err != nil {
			return err
		}
		return d.visitNumber(tok.String(), v)
	case '[':
		if _, err := d.read(); err != nil {
			return err
		}
		a := &seqAccess{d: d}
		if err := v.VisitSeq(a); err != nil {
			return err
		}
		return a.finish()
	case '{':
		if _, err := d.read(); err != nil {
			return err
		}
		a := &mapAccess{d: d}
		if err := v.VisitMap(a); err != nil {
			return err
		}
		return a.finish()
	}
	// PeekKind reports 0 on error and end of input; reading surfaces it.
	tok, err := d.read()
	if err != nil {
		return err
	}
	return d.fail(&shapeshift.ErrTypeMismatch{Got: tok.Kind().String(), Expected: "a JSON value"})
}

func (d *Deserializer) visitNumber(raw string, v shapeshift.Visitor) error {
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return d.fail(err)
		}
		return v.VisitFloat(shapeshift.KindF64, f)
	}
	if strings.HasPrefix(raw, "-") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v.VisitInt(shapeshift.KindI64, i)
		}
		b, _ := new(big.Int).SetString(raw, 10)
		if i, ok := shapeshift.Int128FromBig(b); ok {
			return v.VisitInt128(i)
		}
	} else {
		if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return v.VisitUint(shapeshift.KindU64, u)
		}
		b, _ := new(big.Int).SetString(raw, 10)
		if u, ok := shapeshift.Uint128FromBig(b); ok {
			return v.VisitUint128(u)
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return d.fail(err)
	}
	return v.VisitFloat(shapeshift.KindF64, f)
}

func (d *Deserializer) DeserializeOption(v shapeshift.Visitor) error {
	if d.dec.PeekKind() == 'n' {
		if _, err := d.read(); err != nil {
			return err
		}
		return v.VisitNone()
	}
	return v.VisitSome(d)
}

// DeserializeEnum reads "Variant" or {"Variant": payload}.
func (d *Deserializer) DeserializeEnum(_ string, variants []string, v shapeshift.Visitor) error {
	check := func(variant string) error {
		if len(variants) > 0 && !slices.Contains(variants, variant) {
			return &shapeshift.ErrUnknownVariant{Variant: variant, Expected: variants}
		}
		return nil
	}

	switch d.dec.PeekKind() {
	case '"':
		tok, err := d.read()
		if err != nil {
			return err
		}
		variant := tok.String()
		if err := check(variant); err != nil {
			return err
		}
		return v.VisitEnum(&enumAccess{d: d, variant: variant, unit: true})
	case '{':
		if _, err := d.read(); err != nil {
			return err
		}
		if d.dec.PeekKind() != '"' {
			return d.fail(&shapeshift.ErrTypeMismatch{Got: "empty object", Expected: "an object with a single key"})
		}
		tok, err := d.read()
		if err != nil {
			return err
		}
		variant := tok.String()
		if err := check(variant); err != nil {
			return err
		}
		if err := v.VisitEnum(&enumAccess{d: d, variant: variant}); err != nil {
			return err
		}
		if d.dec.PeekKind() != '}' {
			return d.fail(&shapeshift.ErrTypeMismatch{Got: "object with several keys", Expected: "an object with a single key"})
		}
		_, err = d.read()
		return err
	}
	tok, err := d.read()
	if err != nil {
		return err
	}
	return d.fail(&shapeshift.ErrTypeMismatch{Got: tok.Kind().String(), Expected: "a string or an object"})
}

type seqAccess struct {
	d    *Deserializer
	n    int
	done bool
}

func (a *seqAccess) NextElement(dst shapeshift.Deserializable) (bool, error) {
	if a.done {
		return false, nil
	}
	if a.d.dec.PeekKind() == ']' {
		a.done = true
		_, err := a.d.read()
		return false, err
	}
	a.n++
	return true, dst.Deserialize(a.d)
}

func (a *seqAccess) SizeHint() int { return -1 }

// finish consumes the closing bracket, failing if the visitor left
// elements unread.
func (a *seqAccess) finish() error {
	if a.done {
		return nil
	}
	consumed := a.n
	for {
		ok, err := a.NextElement(&shapeshift.IgnoredAny{})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return &shapeshift.ErrLengthMismatch{Expected: consumed, Actual: a.n}
}

type mapAccess struct {
	d    *Deserializer
	n    int
	done bool
}

func (a *mapAccess) NextKey(dst shapeshift.Deserializable) (bool, error) {
	if a.done {
		return false, nil
	}
	if a.d.dec.PeekKind() == '}' {
		a.done = true
		_, err := a.d.read()
		return false, err
	}
	a.n++
	return true, dst.Deserialize(&keyDeserializer{d: a.d})
}

func (a *mapAccess) NextValue(dst shapeshift.Deserializable) error {
	return dst.Deserialize(a.d)
}

func (a *mapAccess) SizeHint() int { return -1 }

func (a *mapAccess) finish() error {
	if a.done {
		return nil
	}
	consumed := a.n
	for {
		ok, err := a.NextKey(&shapeshift.IgnoredAny{})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := a.NextValue(&shapeshift.IgnoredAny{}); err != nil {
			return err
		}
	}
	return &shapeshift.ErrLengthMismatch{Expected: consumed, Actual: a.n}
}

// keyDeserializer reads one object member name.
type keyDeserializer struct {
	d *Deserializer
}

func (k *keyDeserializer) name() (string, error) {
	tok, err := k.d.read()
	if err != nil {
		return "", err
	}
	if tok.Kind() != '"' {
		return "", k.d.fail(errors.New("object member name is not a string"))
	}
	return tok.String(), nil
}

func (k *keyDeserializer) DeserializeAny(v shapeshift.Visitor) error {
	name, err := k.name()
	if err != nil {
		return err
	}
	return v.VisitStr(name)
}

func (k *keyDeserializer) DeserializeOption(v shapeshift.Visitor) error {
	return v.VisitSome(k)
}

func (k *keyDeserializer) DeserializeEnum(_ string, variants []string, v shapeshift.Visitor) error {
	name, err := k.name()
	if err != nil {
		return err
	}
	if len(variants) > 0 && !slices.Contains(variants, name) {
		return &shapeshift.ErrUnknownVariant{Variant: name, Expected: variants}
	}
	return v.VisitEnum(&enumAccess{d: k.d, variant: name, unit: true})
}

// enumAccess reads the payload of an externally tagged variant. unit is
// set when the variant was a bare string and carries no payload.
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
	return a.d.expect('n')
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
