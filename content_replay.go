package shapeshift

import (
	"fmt"
	"slices"
)

// Serialize replays c into s, invoking exactly the entry point matching the
// captured shape.
func (c Content) Serialize(s Serializer) error {
	switch c.kind {
	case KindBool:
		return s.SerializeBool(c.Bool())
	case KindI8, KindI16, KindI32, KindI64:
		return s.SerializeInt(c.kind, c.Int())
	case KindU8, KindU16, KindU32, KindU64:
		return s.SerializeUint(c.kind, c.Uint())
	case KindI128:
		return s.SerializeInt128(c.Int128())
	case KindU128:
		return s.SerializeUint128(c.Uint128())
	case KindF32, KindF64:
		return s.SerializeFloat(c.kind, c.Float())
	case KindChar:
		return s.SerializeChar(c.Char())
	case KindStr:
		return s.SerializeStr(c.str)
	case KindBytes:
		return s.SerializeBytes(c.bytes)
	case KindUnit:
		return s.SerializeUnit()
	case KindNone:
		return s.SerializeNone()
	case KindSome:
		return s.SerializeSome(c.elems[0])
	case KindSeq:
		seq, err := s.SerializeSeq(len(c.elems))
		if err != nil {
			return err
		}
		return serializeElements(seq, c.elems)
	case KindMap:
		m, err := s.SerializeMap(len(c.entries))
		if err != nil {
			return err
		}
		for _, e := range c.entries {
			if err := SerializeEntry(m, e.Key, e.Value); err != nil {
				return withPath(err, keySegment(e.Key))
			}
		}
		return m.End()
	case KindUnitVariant:
		return s.SerializeUnitVariant(c.name, c.index, c.str)
	case KindNewtypeVariant:
		return s.SerializeNewtypeVariant(c.name, c.index, c.str, c.elems[0])
	case KindTupleVariant:
		seq, err := s.SerializeTupleVariant(c.name, c.index, c.str, len(c.elems))
		if err != nil {
			return err
		}
		return serializeElements(seq, c.elems)
	case KindStructVariant:
		st, err := s.SerializeStructVariant(c.name, c.index, c.str, len(c.entries))
		if err != nil {
			return err
		}
		return serializeFields(st, c.entries)
	}
	return fmt.Errorf("cannot serialize content of kind %s", c.kind)
}

func serializeElements(seq SeqSerializer, elems []Content) error {
	for i, e := range elems {
		if err := seq.SerializeElement(e); err != nil {
			return withPath(err, fmt.Sprint(i))
		}
	}
	return seq.End()
}

func serializeFields(st StructSerializer, fields []ContentEntry) error {
	for _, f := range fields {
		if f.Key.Kind() != KindStr {
			return &ErrTypeMismatch{Got: f.Key.Kind().String(), Expected: "a string field name"}
		}
		if err := st.SerializeField(f.Key.Str(), f.Value); err != nil {
			return withPath(err, f.Key.Str())
		}
	}
	return st.End()
}

// NewContentDeserializer returns a Deserializer that replays c into whatever
// Visitor it is driven with.
func NewContentDeserializer(c Content) Deserializer {
	return contentDeserializer{c: c}
}

type contentDeserializer struct {
	c Content
}

func (d contentDeserializer) DeserializeAny(v Visitor) error {
	c := d.c
	switch c.kind {
	case KindBool:
		return v.VisitBool(c.Bool())
	case KindI8, KindI16, KindI32, KindI64:
		return v.VisitInt(c.kind, c.Int())
	case KindU8, KindU16, KindU32, KindU64:
		return v.VisitUint(c.kind, c.Uint())
	case KindI128:
		return v.VisitInt128(c.Int128())
	case KindU128:
		return v.VisitUint128(c.Uint128())
	case KindF32, KindF64:
		return v.VisitFloat(c.kind, c.Float())
	case KindChar:
		return v.VisitChar(c.Char())
	case KindStr:
		return v.VisitStr(c.str)
	case KindBytes:
		// Content is immutable, so its bytes outlive any visit.
		return v.VisitBytes(c.bytes, true)
	case KindUnit:
		return v.VisitUnit()
	case KindNone:
		return v.VisitNone()
	case KindSome:
		return v.VisitSome(contentDeserializer{c: c.elems[0]})
	case KindSeq:
		return visitContentSeq(v, c.elems)
	case KindMap:
		return visitContentMap(v, c.entries)
	case KindUnitVariant, KindNewtypeVariant, KindTupleVariant, KindStructVariant:
		return v.VisitEnum(contentEnumAccess{c: c})
	}
	return fmt.Errorf("cannot replay content of kind %s", c.kind)
}

func (d contentDeserializer) DeserializeOption(v Visitor) error {
	switch d.c.kind {
	case KindNone, KindUnit:
		return v.VisitNone()
	case KindSome:
		return v.VisitSome(contentDeserializer{c: d.c.elems[0]})
	}
	return v.VisitSome(d)
}

// DeserializeEnum accepts variant content as well as the externally tagged
// forms a self-describing format captures: a bare string for a unit variant
// and a single-entry map keyed by the variant name.
func (d contentDeserializer) DeserializeEnum(_ string, variants []string, v Visitor) error {
	c := d.c
	switch c.kind {
	case KindUnitVariant, KindNewtypeVariant, KindTupleVariant, KindStructVariant, KindStr:
		if len(variants) > 0 && !slices.Contains(variants, c.str) {
			return &ErrUnknownVariant{Variant: c.str, Expected: variants}
		}
	}
	switch c.kind {
	case KindUnitVariant, KindNewtypeVariant, KindTupleVariant, KindStructVariant:
		return v.VisitEnum(contentEnumAccess{c: c})
	case KindStr:
		return v.VisitEnum(contentEnumAccess{c: UnitVariantContent("", 0, c.str)})
	case KindMap:
		if len(c.entries) == 1 && c.entries[0].Key.Kind() == KindStr {
			e := c.entries[0]
			if len(variants) > 0 && !slices.Contains(variants, e.Key.Str()) {
				return &ErrUnknownVariant{Variant: e.Key.Str(), Expected: variants}
			}
			return v.VisitEnum(contentEnumAccess{c: NewtypeVariantContent("", 0, e.Key.Str(), e.Value)})
		}
		return &ErrTypeMismatch{Got: fmt.Sprintf("map with %d entries", len(c.entries)), Expected: "a map with a single key"}
	}
	return &ErrTypeMismatch{Got: c.kind.String(), Expected: "a string or a map"}
}

func visitContentSeq(v Visitor, elems []Content) error {
	a := &contentSeqAccess{elems: elems}
	if err := v.VisitSeq(a); err != nil {
		return err
	}
	if rest := len(a.elems); rest > 0 {
		return &ErrLengthMismatch{Expected: a.n, Actual: a.n + rest}
	}
	return nil
}

func visitContentMap(v Visitor, entries []ContentEntry) error {
	a := &contentMapAccess{entries: entries}
	if err := v.VisitMap(a); err != nil {
		return err
	}
	if rest := len(a.entries); rest > 0 {
		return &ErrLengthMismatch{Expected: a.n, Actual: a.n + rest}
	}
	return nil
}

type contentSeqAccess struct {
	elems []Content
	n     int
}

func (a *contentSeqAccess) NextElement(dst Deserializable) (bool, error) {
	if len(a.elems) == 0 {
		return false, nil
	}
	e := a.elems[0]
	a.elems = a.elems[1:]
	a.n++
	return true, dst.Deserialize(contentDeserializer{c: e})
}

func (a *contentSeqAccess) SizeHint() int { return len(a.elems) }

type contentMapAccess struct {
	entries []ContentEntry
	value   *Content
	n       int
}

func (a *contentMapAccess) NextKey(dst Deserializable) (bool, error) {
	if len(a.entries) == 0 {
		return false, nil
	}
	e := a.entries[0]
	a.entries = a.entries[1:]
	a.value = &e.Value
	a.n++
	return true, dst.Deserialize(contentDeserializer{c: e.Key})
}

func (a *contentMapAccess) NextValue(dst Deserializable) error {
	if a.value == nil {
		return fmt.Errorf("map value requested before its key")
	}
	v := *a.value
	a.value = nil
	return dst.Deserialize(contentDeserializer{c: v})
}

func (a *contentMapAccess) SizeHint() int { return len(a.entries) }

type contentEnumAccess struct {
	c Content
}

func (a contentEnumAccess) Variant() (string, VariantAccess, error) {
	c := a.c
	va := contentVariantAccess{variant: c.str}
	switch c.kind {
	case KindNewtypeVariant:
		va.payload = &c.elems[0]
	case KindTupleVariant:
		p := SeqContent(c.elems)
		va.payload = &p
	case KindStructVariant:
		p := MapContent(c.entries)
		va.payload = &p
	}
	return c.str, va, nil
}

// contentVariantAccess reads a variant's payload. A nil payload is a unit
// variant. Newtype payloads holding a sequence or map satisfy tuple and
// struct reads, which is how an externally tagged capture replays.
type contentVariantAccess struct {
	variant string
	payload *Content
}

func (a contentVariantAccess) UnitVariant() error {
	if a.payload == nil || a.payload.Kind() == KindUnit {
		return nil
	}
	return &ErrTypeMismatch{Got: a.payload.Kind().String(), Expected: "unit variant " + a.variant}
}

func (a contentVariantAccess) NewtypeVariant(dst Deserializable) error {
	if a.payload == nil {
		return dst.Deserialize(contentDeserializer{c: UnitContent()})
	}
	return dst.Deserialize(contentDeserializer{c: *a.payload})
}

func (a contentVariantAccess) TupleVariant(length int, v Visitor) error {
	if a.payload == nil || a.payload.Kind() != KindSeq {
		return &ErrTypeMismatch{Got: a.shape(), Expected: "tuple variant " + a.variant}
	}
	return visitContentSeq(v, a.payload.elems)
}

func (a contentVariantAccess) StructVariant(_ []string, v Visitor) error {
	if a.payload == nil {
		return &ErrTypeMismatch{Got: a.shape(), Expected: "struct variant " + a.variant}
	}
	switch a.payload.Kind() {
	case KindMap:
		return visitContentMap(v, a.payload.entries)
	case KindSeq:
		return visitContentSeq(v, a.payload.elems)
	}
	return &ErrTypeMismatch{Got: a.shape(), Expected: "struct variant " + a.variant}
}

func (a contentVariantAccess) shape() string {
	if a.payload == nil {
		return "unit variant"
	}
	return a.payload.Kind().String()
}
