package yamlfmt

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/dhoelle/shapeshift"
	"gopkg.in/yaml.v3"
)

// Deserializer reads values from a yaml.Node tree. Aliases are followed
// and document nodes are unwrapped. Scalars are typed by their resolved
// tag; custom tags are delivered as strings.
type Deserializer struct {
	node *yaml.Node
}

var _ shapeshift.Deserializer = (*Deserializer)(nil)

func NewDeserializer(n *yaml.Node) *Deserializer {
	return &Deserializer{node: n}
}

func fail(n *yaml.Node, err error) error {
	return &shapeshift.FormatError{
		Format: "yaml",
		Offset: -1,
		Line:   n.Line,
		Column: n.Column,
		Err:    err,
	}
}

// resolve unwraps documents and aliases. A nil or empty node reads as
// null.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			if n.Kind == 0 || n.Kind == yaml.DocumentNode {
				return scalar(nullTag, "null")
			}
			return n
		}
	}
	return scalar(nullTag, "null")
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	}
	return n.ShortTag()
}

func (d *Deserializer) DeserializeAny(v shapeshift.Visitor) error {
	n := resolve(d.node)
	switch n.Kind {
	case yaml.ScalarNode:
		return visitScalar(n, v)
	case yaml.SequenceNode:
		a := &seqAccess{nodes: n.Content}
		if err := v.VisitSeq(a); err != nil {
			return err
		}
		if rest := len(a.nodes); rest > 0 {
			return fail(n, &shapeshift.ErrLengthMismatch{Expected: a.n, Actual: a.n + rest})
		}
		return nil
	case yaml.MappingNode:
		a := &mapAccess{nodes: n.Content}
		if err := v.VisitMap(a); err != nil {
			return err
		}
		if rest := len(a.nodes) / 2; rest > 0 {
			return fail(n, &shapeshift.ErrLengthMismatch{Expected: a.n, Actual: a.n + rest})
		}
		return nil
	}
	return fail(n, fmt.Errorf("unsupported node kind %d", n.Kind))
}

func visitScalar(n *yaml.Node, v shapeshift.Visitor) error {
	switch n.ShortTag() {
	case nullTag:
		return v.VisitUnit()
	case boolTag:
		var b bool
		if err := n.Decode(&b); err != nil {
			return fail(n, err)
		}
		return v.VisitBool(b)
	case intTag:
		return visitInt(n, v)
	case floatTag:
		var f float64
		if err := n.Decode(&f); err != nil {
			return fail(n, err)
		}
		return v.VisitFloat(shapeshift.KindF64, f)
	case binaryTag:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return fail(n, err)
		}
		return v.VisitBytes(b, false)
	}
	return v.VisitStr(n.Value)
}

func visitInt(n *yaml.Node, v shapeshift.Visitor) error {
	var i int64
	if err := n.Decode(&i); err == nil {
		if i < 0 {
			return v.VisitInt(shapeshift.KindI64, i)
		}
		return v.VisitUint(shapeshift.KindU64, uint64(i))
	}
	var u uint64
	if err := n.Decode(&u); err == nil {
		return v.VisitUint(shapeshift.KindU64, u)
	}
	b, ok := new(big.Int).SetString(strings.ReplaceAll(n.Value, "_", ""), 0)
	if !ok {
		return fail(n, fmt.Errorf("invalid integer %q", n.Value))
	}
	if b.Sign() < 0 {
		if i, ok := shapeshift.Int128FromBig(b); ok {
			return v.VisitInt128(i)
		}
	} else if u, ok := shapeshift.Uint128FromBig(b); ok {
		return v.VisitUint128(u)
	}
	return fail(n, shapeshift.Errorf("integer %s does not fit in 128 bits", n.Value))
}

func (d *Deserializer) DeserializeOption(v shapeshift.Visitor) error {
	n := resolve(d.node)
	if n.Kind == yaml.ScalarNode && n.ShortTag() == nullTag {
		return v.VisitNone()
	}
	return v.VisitSome(&Deserializer{node: n})
}

// DeserializeEnum reads a variant name or a single-entry mapping from the
// variant name to its payload.
func (d *Deserializer) DeserializeEnum(_ string, variants []string, v shapeshift.Visitor) error {
	n := resolve(d.node)
	var (
		variant string
		payload *yaml.Node
	)
	switch {
	case n.Kind == yaml.ScalarNode:
		variant = n.Value
	case n.Kind == yaml.MappingNode && len(n.Content) == 2:
		key := resolve(n.Content[0])
		if key.Kind != yaml.ScalarNode {
			return fail(key, &shapeshift.ErrTypeMismatch{Got: describe(key), Expected: "a variant name"})
		}
		variant = key.Value
		payload = n.Content[1]
	default:
		return fail(n, &shapeshift.ErrTypeMismatch{Got: describe(n), Expected: "a string or a single-entry mapping"})
	}
	if len(variants) > 0 && !slices.Contains(variants, variant) {
		return fail(n, &shapeshift.ErrUnknownVariant{Variant: variant, Expected: variants})
	}
	return v.VisitEnum(&enumAccess{variant: variant, payload: payload, node: n})
}

type seqAccess struct {
	nodes []*yaml.Node
	n     int
}

func (a *seqAccess) NextElement(dst shapeshift.Deserializable) (bool, error) {
	if len(a.nodes) == 0 {
		return false, nil
	}
	n := a.nodes[0]
	a.nodes = a.nodes[1:]
	a.n++
	return true, dst.Deserialize(&Deserializer{node: n})
}

func (a *seqAccess) SizeHint() int { return len(a.nodes) }

// mapAccess walks the alternating key and value children of a mapping
// node. Repeated keys are delivered as they appear.
type mapAccess struct {
	nodes []*yaml.Node
	value *yaml.Node
	n     int
}

func (a *mapAccess) NextKey(dst shapeshift.Deserializable) (bool, error) {
	if len(a.nodes) < 2 {
		return false, nil
	}
	key := a.nodes[0]
	a.value = a.nodes[1]
	a.nodes = a.nodes[2:]
	a.n++
	return true, dst.Deserialize(&Deserializer{node: key})
}

func (a *mapAccess) NextValue(dst shapeshift.Deserializable) error {
	if a.value == nil {
		return fmt.Errorf("map value requested before its key")
	}
	n := a.value
	a.value = nil
	return dst.Deserialize(&Deserializer{node: n})
}

func (a *mapAccess) SizeHint() int { return len(a.nodes) / 2 }

// enumAccess reads a variant payload. payload is nil for a bare variant
// name.
type enumAccess struct {
	variant string
	payload *yaml.Node
	node    *yaml.Node
}

func (a *enumAccess) Variant() (string, shapeshift.VariantAccess, error) {
	return a.variant, a, nil
}

func (a *enumAccess) UnitVariant() error {
	if a.payload == nil {
		return nil
	}
	p := resolve(a.payload)
	if p.Kind == yaml.ScalarNode && p.ShortTag() == nullTag {
		return nil
	}
	return fail(p, &shapeshift.ErrTypeMismatch{Got: describe(p), Expected: "unit variant " + a.variant})
}

func (a *enumAccess) NewtypeVariant(dst shapeshift.Deserializable) error {
	return dst.Deserialize(&Deserializer{node: a.payload})
}

func (a *enumAccess) TupleVariant(_ int, v shapeshift.Visitor) error {
	if a.payload == nil {
		return fail(a.node, &shapeshift.ErrTypeMismatch{Got: "unit variant", Expected: "tuple variant " + a.variant})
	}
	return (&Deserializer{node: a.payload}).DeserializeAny(v)
}

func (a *enumAccess) StructVariant(_ []string, v shapeshift.Visitor) error {
	if a.payload == nil {
		return fail(a.node, &shapeshift.ErrTypeMismatch{Got: "unit variant", Expected: "struct variant " + a.variant})
	}
	return (&Deserializer{node: a.payload}).DeserializeAny(v)
}
