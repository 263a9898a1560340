package yamlfmt

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/dhoelle/shapeshift"
	"gopkg.in/yaml.v3"
)

const (
	nullTag   = "!!null"
	boolTag   = "!!bool"
	strTag    = "!!str"
	intTag    = "!!int"
	floatTag  = "!!float"
	binaryTag = "!!binary"
	mapTag    = "!!map"
	seqTag    = "!!seq"
)

// Serializer builds a yaml.Node tree. Enum values are externally tagged,
// like in the JSON format: a unit variant is its name, every other
// variant is a single-entry mapping from its name to the payload.
type Serializer struct {
	dst *yaml.Node
}

var _ shapeshift.Serializer = (*Serializer)(nil)

// NewSerializer returns a Serializer that stores the serialized value in
// dst.
func NewSerializer(dst *yaml.Node) *Serializer {
	return &Serializer{dst: dst}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (s *Serializer) set(n *yaml.Node) error {
	*s.dst = *n
	return nil
}

func (s *Serializer) SerializeBool(v bool) error {
	return s.set(scalar(boolTag, strconv.FormatBool(v)))
}

func (s *Serializer) SerializeInt(_ shapeshift.Kind, v int64) error {
	return s.set(scalar(intTag, strconv.FormatInt(v, 10)))
}

func (s *Serializer) SerializeUint(_ shapeshift.Kind, v uint64) error {
	return s.set(scalar(intTag, strconv.FormatUint(v, 10)))
}

func (s *Serializer) SerializeInt128(v shapeshift.Int128) error {
	return s.set(scalar(intTag, v.String()))
}

func (s *Serializer) SerializeUint128(v shapeshift.Uint128) error {
	return s.set(scalar(intTag, v.String()))
}

func (s *Serializer) SerializeFloat(k shapeshift.Kind, v float64) error {
	return s.set(scalar(floatTag, formatFloat(v, k)))
}

// formatFloat always includes a decimal point or exponent so the value
// reads back as a float.
func formatFloat(v float64, k shapeshift.Kind) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	bits := 64
	if k == shapeshift.KindF32 {
		bits = 32
	}
	out := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(out, ".e") {
		out += ".0"
	}
	return out
}

func (s *Serializer) SerializeChar(v rune) error  { return s.set(scalar(strTag, string(v))) }
func (s *Serializer) SerializeStr(v string) error { return s.set(scalar(strTag, v)) }

func (s *Serializer) SerializeBytes(v []byte) error {
	return s.set(scalar(binaryTag, base64.StdEncoding.EncodeToString(v)))
}

func (s *Serializer) SerializeUnit() error { return s.set(scalar(nullTag, "null")) }
func (s *Serializer) SerializeNone() error { return s.set(scalar(nullTag, "null")) }

func (s *Serializer) SerializeSome(v shapeshift.Serializable) error {
	return v.Serialize(s)
}

func (s *Serializer) SerializeSeq(length int) (shapeshift.SeqSerializer, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: seqTag, Content: make([]*yaml.Node, 0, max(length, 0))}
	return &collection{node: n, dst: s.dst, outer: n}, nil
}

func (s *Serializer) SerializeMap(length int) (shapeshift.MapSerializer, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: mapTag, Content: make([]*yaml.Node, 0, 2*max(length, 0))}
	return &collection{node: n, dst: s.dst, outer: n}, nil
}

func (s *Serializer) SerializeStruct(_ string, length int) (shapeshift.StructSerializer, error) {
	m, err := s.SerializeMap(length)
	return m.(shapeshift.StructSerializer), err
}

func (s *Serializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.set(scalar(strTag, variant))
}

func (s *Serializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v shapeshift.Serializable) error {
	payload := &yaml.Node{}
	if err := v.Serialize(NewSerializer(payload)); err != nil {
		return err
	}
	return s.set(variantNode(variant, payload))
}

func (s *Serializer) SerializeTupleVariant(_ string, _ uint32, variant string, length int) (shapeshift.SeqSerializer, error) {
	payload := &yaml.Node{Kind: yaml.SequenceNode, Tag: seqTag, Content: make([]*yaml.Node, 0, max(length, 0))}
	return &collection{node: payload, dst: s.dst, outer: variantNode(variant, payload)}, nil
}

func (s *Serializer) SerializeStructVariant(_ string, _ uint32, variant string, length int) (shapeshift.StructSerializer, error) {
	payload := &yaml.Node{Kind: yaml.MappingNode, Tag: mapTag, Content: make([]*yaml.Node, 0, 2*max(length, 0))}
	return &collection{node: payload, dst: s.dst, outer: variantNode(variant, payload)}, nil
}

func variantNode(variant string, payload *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     mapTag,
		Content: []*yaml.Node{scalar(strTag, variant), payload},
	}
}

// collection appends children to node and stores outer in dst on End.
// outer is node itself, or a variant mapping wrapping it.
type collection struct {
	node  *yaml.Node
	outer *yaml.Node
	dst   *yaml.Node
}

func (c *collection) add(v shapeshift.Serializable) error {
	child := &yaml.Node{}
	if err := v.Serialize(NewSerializer(child)); err != nil {
		return err
	}
	c.node.Content = append(c.node.Content, child)
	return nil
}

func (c *collection) SerializeElement(v shapeshift.Serializable) error { return c.add(v) }
func (c *collection) SerializeKey(k shapeshift.Serializable) error     { return c.add(k) }
func (c *collection) SerializeValue(v shapeshift.Serializable) error   { return c.add(v) }

func (c *collection) SerializeField(name string, v shapeshift.Serializable) error {
	c.node.Content = append(c.node.Content, scalar(strTag, name))
	return c.add(v)
}

func (c *collection) End() error {
	*c.dst = *c.outer
	return nil
}
