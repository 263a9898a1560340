package shapeshift

import "fmt"

// Capture pulls one value of any shape from d and returns it as Content.
// Nested sequences and maps are drained eagerly since d is single-pass.
func Capture(d Deserializer) (Content, error) {
	var c Content
	err := c.Deserialize(d)
	return c, err
}

// Deserialize captures the next value from d into c.
func (c *Content) Deserialize(d Deserializer) error {
	return d.DeserializeAny(&contentVisitor{dst: c})
}

type contentVisitor struct {
	dst *Content
}

var _ Visitor = (*contentVisitor)(nil)

func (v *contentVisitor) VisitBool(b bool) error {
	*v.dst = BoolContent(b)
	return nil
}

func (v *contentVisitor) VisitInt(k Kind, i int64) error {
	if !k.isSigned() {
		k = KindI64
	}
	*v.dst = IntContent(k, i)
	return nil
}

func (v *contentVisitor) VisitUint(k Kind, u uint64) error {
	if !k.isUnsigned() {
		k = KindU64
	}
	*v.dst = UintContent(k, u)
	return nil
}

func (v *contentVisitor) VisitInt128(i Int128) error {
	*v.dst = Int128Content(i)
	return nil
}

func (v *contentVisitor) VisitUint128(u Uint128) error {
	*v.dst = Uint128Content(u)
	return nil
}

func (v *contentVisitor) VisitFloat(k Kind, f float64) error {
	if !k.isFloat() {
		k = KindF64
	}
	*v.dst = FloatContent(k, f)
	return nil
}

func (v *contentVisitor) VisitChar(r rune) error {
	*v.dst = CharContent(r)
	return nil
}

func (v *contentVisitor) VisitStr(s string) error {
	*v.dst = StringContent(s)
	return nil
}

func (v *contentVisitor) VisitBytes(b []byte, borrowed bool) error {
	*v.dst = BytesContent(b, borrowed)
	return nil
}

func (v *contentVisitor) VisitUnit() error {
	*v.dst = UnitContent()
	return nil
}

func (v *contentVisitor) VisitNone() error {
	*v.dst = NoneContent()
	return nil
}

func (v *contentVisitor) VisitSome(d Deserializer) error {
	inner, err := Capture(d)
	if err != nil {
		return err
	}
	*v.dst = SomeContent(inner)
	return nil
}

func (v *contentVisitor) VisitSeq(a SeqAccess) error {
	elems := make([]Content, 0, max(a.SizeHint(), 0))
	for {
		var e Content
		ok, err := a.NextElement(&e)
		if err != nil {
			return withPath(err, fmt.Sprint(len(elems)))
		}
		if !ok {
			break
		}
		elems = append(elems, e)
	}
	*v.dst = SeqContent(elems)
	return nil
}

func (v *contentVisitor) VisitMap(a MapAccess) error {
	entries := make([]ContentEntry, 0, max(a.SizeHint(), 0))
	for {
		var e ContentEntry
		ok, err := a.NextKey(&e.Key)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := a.NextValue(&e.Value); err != nil {
			return withPath(err, keySegment(e.Key))
		}
		entries = append(entries, e)
	}
	*v.dst = MapContent(entries)
	return nil
}

// VisitEnum reads the discriminant, then drains the payload through the
// newtype entry point. A unit payload is recorded as a unit variant.
// Tuple and struct payloads are indistinguishable from a newtype carrying a
// sequence or map at this point; replay accepts either reading.
func (v *contentVisitor) VisitEnum(a EnumAccess) error {
	variant, va, err := a.Variant()
	if err != nil {
		return err
	}
	var payload Content
	if err := va.NewtypeVariant(&payload); err != nil {
		return withPath(err, variant)
	}
	if payload.Kind() == KindUnit {
		*v.dst = UnitVariantContent("", 0, variant)
		return nil
	}
	*v.dst = NewtypeVariantContent("", 0, variant, payload)
	return nil
}

func keySegment(k Content) string {
	if k.Kind() == KindStr {
		return k.Str()
	}
	return k.String()
}

// ToContent captures v from the producer side: v is serialized into a
// Serializer that builds Content instead of writing a wire format. Unlike
// Capture, every shape (including tuple and struct variants) is recorded
// exactly.
func ToContent(v Serializable) (Content, error) {
	var c Content
	if err := v.Serialize(&contentSerializer{dst: &c}); err != nil {
		return Content{}, err
	}
	return c, nil
}

type contentSerializer struct {
	dst *Content
}

var _ Serializer = (*contentSerializer)(nil)

func (s *contentSerializer) set(c Content) error {
	*s.dst = c
	return nil
}

func (s *contentSerializer) SerializeBool(v bool) error { return s.set(BoolContent(v)) }

func (s *contentSerializer) SerializeInt(k Kind, v int64) error {
	if !k.isSigned() {
		return &ErrTypeMismatch{Got: k.String(), Expected: "a signed integer kind"}
	}
	return s.set(IntContent(k, v))
}

func (s *contentSerializer) SerializeUint(k Kind, v uint64) error {
	if !k.isUnsigned() {
		return &ErrTypeMismatch{Got: k.String(), Expected: "an unsigned integer kind"}
	}
	return s.set(UintContent(k, v))
}

func (s *contentSerializer) SerializeInt128(v Int128) error   { return s.set(Int128Content(v)) }
func (s *contentSerializer) SerializeUint128(v Uint128) error { return s.set(Uint128Content(v)) }

func (s *contentSerializer) SerializeFloat(k Kind, v float64) error {
	if !k.isFloat() {
		return &ErrTypeMismatch{Got: k.String(), Expected: "a float kind"}
	}
	return s.set(FloatContent(k, v))
}

func (s *contentSerializer) SerializeChar(v rune) error    { return s.set(CharContent(v)) }
func (s *contentSerializer) SerializeStr(v string) error   { return s.set(StringContent(v)) }
func (s *contentSerializer) SerializeBytes(v []byte) error { return s.set(BytesContent(v, false)) }
func (s *contentSerializer) SerializeUnit() error          { return s.set(UnitContent()) }
func (s *contentSerializer) SerializeNone() error          { return s.set(NoneContent()) }

func (s *contentSerializer) SerializeSome(v Serializable) error {
	inner, err := ToContent(v)
	if err != nil {
		return err
	}
	return s.set(SomeContent(inner))
}

func (s *contentSerializer) SerializeSeq(length int) (SeqSerializer, error) {
	return &contentSeqBuilder{
		elems:  make([]Content, 0, max(length, 0)),
		finish: func(elems []Content) Content { return SeqContent(elems) },
		dst:    s.dst,
	}, nil
}

func (s *contentSerializer) SerializeMap(length int) (MapSerializer, error) {
	return &contentMapBuilder{entries: make([]ContentEntry, 0, max(length, 0)), dst: s.dst}, nil
}

func (s *contentSerializer) SerializeStruct(_ string, length int) (StructSerializer, error) {
	return &contentStructBuilder{
		entries: make([]ContentEntry, 0, max(length, 0)),
		finish:  MapContent,
		dst:     s.dst,
	}, nil
}

func (s *contentSerializer) SerializeUnitVariant(name string, index uint32, variant string) error {
	return s.set(UnitVariantContent(name, index, variant))
}

func (s *contentSerializer) SerializeNewtypeVariant(name string, index uint32, variant string, v Serializable) error {
	inner, err := ToContent(v)
	if err != nil {
		return withPath(err, variant)
	}
	return s.set(NewtypeVariantContent(name, index, variant, inner))
}

func (s *contentSerializer) SerializeTupleVariant(name string, index uint32, variant string, length int) (SeqSerializer, error) {
	return &contentSeqBuilder{
		elems: make([]Content, 0, max(length, 0)),
		finish: func(elems []Content) Content {
			return TupleVariantContent(name, index, variant, elems)
		},
		dst: s.dst,
	}, nil
}

func (s *contentSerializer) SerializeStructVariant(name string, index uint32, variant string, length int) (StructSerializer, error) {
	return &contentStructBuilder{
		entries: make([]ContentEntry, 0, max(length, 0)),
		finish: func(fields []ContentEntry) Content {
			return StructVariantContent(name, index, variant, fields)
		},
		dst: s.dst,
	}, nil
}

type contentSeqBuilder struct {
	elems  []Content
	finish func([]Content) Content
	dst    *Content
}

func (b *contentSeqBuilder) SerializeElement(v Serializable) error {
	c, err := ToContent(v)
	if err != nil {
		return withPath(err, fmt.Sprint(len(b.elems)))
	}
	b.elems = append(b.elems, c)
	return nil
}

func (b *contentSeqBuilder) End() error {
	*b.dst = b.finish(b.elems)
	return nil
}

type contentMapBuilder struct {
	entries []ContentEntry
	key     *Content
	dst     *Content
}

func (b *contentMapBuilder) SerializeKey(k Serializable) error {
	if b.key != nil {
		return fmt.Errorf("map key serialized twice without a value")
	}
	c, err := ToContent(k)
	if err != nil {
		return err
	}
	b.key = &c
	return nil
}

func (b *contentMapBuilder) SerializeValue(v Serializable) error {
	if b.key == nil {
		return fmt.Errorf("map value serialized without a key")
	}
	c, err := ToContent(v)
	if err != nil {
		return withPath(err, keySegment(*b.key))
	}
	b.entries = append(b.entries, ContentEntry{Key: *b.key, Value: c})
	b.key = nil
	return nil
}

func (b *contentMapBuilder) End() error {
	if b.key != nil {
		return fmt.Errorf("map ended with a dangling key")
	}
	*b.dst = MapContent(b.entries)
	return nil
}

type contentStructBuilder struct {
	entries []ContentEntry
	finish  func([]ContentEntry) Content
	dst     *Content
}

func (b *contentStructBuilder) SerializeField(name string, v Serializable) error {
	c, err := ToContent(v)
	if err != nil {
		return withPath(err, name)
	}
	b.entries = append(b.entries, ContentEntry{Key: StringContent(name), Value: c})
	return nil
}

func (b *contentStructBuilder) End() error {
	*b.dst = b.finish(b.entries)
	return nil
}
