// Package sample provides an enum type with one variant of each payload
// shape, for use in tests across the module.
package sample

import (
	"fmt"

	"github.com/dhoelle/shapeshift"
)

type Kind uint8

const (
	Unit Kind = iota
	Tuple
	Struct
	Newtype
)

var variants = []string{"Unit", "Tuple", "Struct", "Newtype"}

func (k Kind) String() string {
	if int(k) < len(variants) {
		return variants[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is one of
//
//	Unit
//	Tuple(A, B, C)
//	Struct{a: A, b: B, c: C}
//	Newtype(A)
//
// Fields not named by the variant are ignored.
type Value struct {
	Kind Kind
	A    uint32
	B    string
	C    bool
}

func NewUnit() Value { return Value{Kind: Unit} }

func NewTuple(a uint32, b string, c bool) Value {
	return Value{Kind: Tuple, A: a, B: b, C: c}
}

func NewStruct(a uint32, b string, c bool) Value {
	return Value{Kind: Struct, A: a, B: b, C: c}
}

func NewNewtype(a uint32) Value {
	return Value{Kind: Newtype, A: a}
}

func (v Value) String() string {
	switch v.Kind {
	case Unit:
		return "Unit"
	case Tuple:
		return fmt.Sprintf("Tuple(%d, %q, %t)", v.A, v.B, v.C)
	case Newtype:
		return fmt.Sprintf("Newtype(%d)", v.A)
	}
	return fmt.Sprintf("Struct{a: %d, b: %q, c: %t}", v.A, v.B, v.C)
}

func (v Value) Serialize(s shapeshift.Serializer) error {
	switch v.Kind {
	case Unit:
		return s.SerializeUnitVariant("Value", 0, "Unit")
	case Tuple:
		seq, err := s.SerializeTupleVariant("Value", 1, "Tuple", 3)
		if err != nil {
			return err
		}
		for _, f := range []any{v.A, v.B, v.C} {
			if err := seq.SerializeElement(shapeshift.Value(f)); err != nil {
				return err
			}
		}
		return seq.End()
	case Struct:
		st, err := s.SerializeStructVariant("Value", 2, "Struct", 3)
		if err != nil {
			return err
		}
		if err := st.SerializeField("a", shapeshift.Value(v.A)); err != nil {
			return err
		}
		if err := st.SerializeField("b", shapeshift.Value(v.B)); err != nil {
			return err
		}
		if err := st.SerializeField("c", shapeshift.Value(v.C)); err != nil {
			return err
		}
		return st.End()
	case Newtype:
		return s.SerializeNewtypeVariant("Value", 3, "Newtype", shapeshift.Value(v.A))
	}
	return fmt.Errorf("invalid kind %s", v.Kind)
}

func (v *Value) Deserialize(d shapeshift.Deserializer) error {
	return d.DeserializeEnum("Value", variants, &visitor{
		VisitorBase: shapeshift.VisitorBase{Expected: "enum Value"},
		dst:         v,
	})
}

type visitor struct {
	shapeshift.VisitorBase
	dst *Value
}

func (x *visitor) VisitEnum(a shapeshift.EnumAccess) error {
	variant, va, err := a.Variant()
	if err != nil {
		return err
	}
	var out Value
	switch variant {
	case "Unit":
		out.Kind = Unit
		err = va.UnitVariant()
	case "Tuple":
		out.Kind = Tuple
		err = va.TupleVariant(3, shapeshift.NewTupleVisitor(
			shapeshift.Into(&out.A),
			shapeshift.Into(&out.B),
			shapeshift.Into(&out.C),
		))
	case "Struct":
		out.Kind = Struct
		err = va.StructVariant([]string{"a", "b", "c"}, shapeshift.NewStructVisitor(
			shapeshift.Field{Name: "a", Into: shapeshift.Into(&out.A)},
			shapeshift.Field{Name: "b", Into: shapeshift.Into(&out.B)},
			shapeshift.Field{Name: "c", Into: shapeshift.Into(&out.C)},
		))
	case "Newtype":
		out.Kind = Newtype
		err = va.NewtypeVariant(shapeshift.Into(&out.A))
	default:
		return &shapeshift.ErrUnknownVariant{Variant: variant, Expected: variants}
	}
	if err != nil {
		return err
	}
	*x.dst = out
	return nil
}

// Scenario returns the values [Unit, Tuple(1, "Middle", false),
// Struct{a: 666, b: "BBB", c: true}].
func Scenario() []Value {
	return []Value{
		NewUnit(),
		NewTuple(1, "Middle", false),
		NewStruct(666, "BBB", true),
	}
}

// Resource records whether it has been closed. Close fails on a second
// call.
type Resource struct {
	ID     int
	closed *[]int
}

// NewResources returns a source of Resources whose Close calls append the
// resource ID to log.
func NewResources(log *[]int) func(id int) *Resource {
	return func(id int) *Resource {
		return &Resource{ID: id, closed: log}
	}
}

func (r *Resource) Close() error {
	for _, id := range *r.closed {
		if id == r.ID {
			return fmt.Errorf("resource %d closed twice", r.ID)
		}
	}
	*r.closed = append(*r.closed, r.ID)
	return nil
}
