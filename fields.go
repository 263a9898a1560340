package shapeshift

import "fmt"

// Field binds one named field of a struct-like value to its destination.
type Field struct {
	Name string
	Into Deserializable

	// Optional fields may be absent from the input.
	Optional bool
}

// StructVisitor reads a map into Fields by name, or a sequence into Fields by
// position. Unknown keys are skipped. A key seen twice fails with
// *ErrDuplicateField and a required field that never appears fails with
// *ErrMissingField.
type StructVisitor struct {
	VisitorBase
	Fields []Field
}

func NewStructVisitor(fields ...Field) *StructVisitor {
	return &StructVisitor{VisitorBase: VisitorBase{Expected: "a struct"}, Fields: fields}
}

// DeserializeStruct reads the next value from d into fields.
func DeserializeStruct(d Deserializer, fields ...Field) error {
	return d.DeserializeAny(NewStructVisitor(fields...))
}

func (v *StructVisitor) index(name string) int {
	for i, f := range v.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (v *StructVisitor) VisitMap(a MapAccess) error {
	seen := make([]bool, len(v.Fields))
	for {
		var key string
		ok, err := a.NextKey(Into(&key))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		i := v.index(key)
		if i < 0 {
			var ignored IgnoredAny
			if err := a.NextValue(&ignored); err != nil {
				return withPath(err, key)
			}
			continue
		}
		if seen[i] {
			return &ErrDuplicateField{Field: key}
		}
		seen[i] = true
		if err := a.NextValue(v.Fields[i].Into); err != nil {
			return withPath(err, key)
		}
	}
	for i, f := range v.Fields {
		if !seen[i] && !f.Optional {
			return &ErrMissingField{Field: f.Name}
		}
	}
	return nil
}

func (v *StructVisitor) VisitSeq(a SeqAccess) error {
	elems := make([]Deserializable, len(v.Fields))
	for i, f := range v.Fields {
		elems[i] = f.Into
	}
	return visitTuple(a, elems, func(i int) string { return v.Fields[i].Name })
}

// TupleVisitor reads a sequence of exactly len(Elems) elements, in order.
type TupleVisitor struct {
	VisitorBase
	Elems []Deserializable
}

func NewTupleVisitor(elems ...Deserializable) *TupleVisitor {
	return &TupleVisitor{
		VisitorBase: VisitorBase{Expected: fmt.Sprintf("a tuple of size %d", len(elems))},
		Elems:       elems,
	}
}

// DeserializeTuple reads the next value from d into elems.
func DeserializeTuple(d Deserializer, elems ...Deserializable) error {
	return d.DeserializeAny(NewTupleVisitor(elems...))
}

func (v *TupleVisitor) VisitSeq(a SeqAccess) error {
	return visitTuple(a, v.Elems, func(i int) string { return fmt.Sprint(i) })
}

func visitTuple(a SeqAccess, elems []Deserializable, segment func(int) string) error {
	for i, e := range elems {
		ok, err := a.NextElement(e)
		if err != nil {
			return withPath(err, segment(i))
		}
		if !ok {
			return &ErrLengthMismatch{Expected: len(elems), Actual: i}
		}
	}
	extra := 0
	for {
		var ignored IgnoredAny
		ok, err := a.NextElement(&ignored)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		extra++
	}
	if extra > 0 {
		return &ErrLengthMismatch{Expected: len(elems), Actual: len(elems) + extra}
	}
	return nil
}

// IgnoredAny consumes and discards one value of any shape.
type IgnoredAny struct{}

func (*IgnoredAny) Deserialize(d Deserializer) error {
	return d.DeserializeAny(ignoreVisitor{})
}

type ignoreVisitor struct{}

var _ Visitor = ignoreVisitor{}

func (ignoreVisitor) VisitBool(bool) error           { return nil }
func (ignoreVisitor) VisitInt(Kind, int64) error     { return nil }
func (ignoreVisitor) VisitUint(Kind, uint64) error   { return nil }
func (ignoreVisitor) VisitInt128(Int128) error       { return nil }
func (ignoreVisitor) VisitUint128(Uint128) error     { return nil }
func (ignoreVisitor) VisitFloat(Kind, float64) error { return nil }
func (ignoreVisitor) VisitChar(rune) error           { return nil }
func (ignoreVisitor) VisitStr(string) error          { return nil }
func (ignoreVisitor) VisitBytes([]byte, bool) error  { return nil }
func (ignoreVisitor) VisitUnit() error               { return nil }
func (ignoreVisitor) VisitNone() error               { return nil }
func (ignoreVisitor) VisitSome(d Deserializer) error { return (&IgnoredAny{}).Deserialize(d) }

func (ignoreVisitor) VisitSeq(a SeqAccess) error {
	for {
		ok, err := a.NextElement(&IgnoredAny{})
		if err != nil || !ok {
			return err
		}
	}
}

func (ignoreVisitor) VisitMap(a MapAccess) error {
	for {
		ok, err := a.NextKey(&IgnoredAny{})
		if err != nil || !ok {
			return err
		}
		if err := a.NextValue(&IgnoredAny{}); err != nil {
			return err
		}
	}
}

func (ignoreVisitor) VisitEnum(a EnumAccess) error {
	_, va, err := a.Variant()
	if err != nil {
		return err
	}
	return va.NewtypeVariant(&IgnoredAny{})
}
