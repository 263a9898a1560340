package shapeshift

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// EnumMap adapts a slice of enum values as a map from variant name to
// payload:
//
//	[Unit, Tuple(1, "Middle", false)]  <->  {"Unit": null, "Tuple": [1, "Middle", false]}
//
// Every element must serialize as one of the four variant shapes. Entries
// keep the slice order and repeated variant names are written once per
// element; whether the wire format accepts the repeated keys is up to the
// format.
type EnumMap[T any, A Adapter[T]] struct{}

func (EnumMap[T, A]) SerializeAs(v *[]T, s Serializer) error {
	return NewSerializeAsWrap[[]T, SliceOf[T, A]](v).Serialize(&seqAsMap{
		SerializerBase: SerializerBase{Expected: "a sequence"},
		s:              s,
	})
}

func (EnumMap[T, A]) DeserializeAs(d Deserializer) ([]T, error) {
	var out []T
	err := d.DeserializeAny(&mapAsSeq{
		VisitorBase: VisitorBase{Expected: "a map of enum variants"},
		inner: &sliceVisitor[T, A]{
			VisitorBase: VisitorBase{Expected: "a sequence"},
			dst:         &out,
		},
	})
	return out, err
}

// EnumMapArray is EnumMap for the fixed-size array type Arr of T. Reading
// fails with *ErrLengthMismatch unless the map has exactly len(Arr)
// entries.
type EnumMapArray[Arr any, T any, A Adapter[T]] struct{}

func (EnumMapArray[Arr, T, A]) SerializeAs(v *Arr, s Serializer) error {
	return NewSerializeAsWrap[Arr, ArrayOf[Arr, T, A]](v).Serialize(&seqAsMap{
		SerializerBase: SerializerBase{Expected: "a sequence"},
		s:              s,
	})
}

func (EnumMapArray[Arr, T, A]) DeserializeAs(d Deserializer) (Arr, error) {
	var out Arr
	n, err := arrayLen[Arr, T]()
	if err != nil {
		return out, err
	}
	err = d.DeserializeAny(&mapAsSeq{
		VisitorBase: VisitorBase{Expected: fmt.Sprintf("a map of %d enum variants", n)},
		inner: &arrayVisitor[Arr, T, A]{
			VisitorBase: VisitorBase{Expected: "a sequence"},
			n:           n,
			dst:         &out,
		},
	})
	return out, err
}

// seqAsMap accepts only a sequence and writes it to s as a map of the same
// length.
type seqAsMap struct {
	SerializerBase
	s Serializer
}

func (w *seqAsMap) SerializeSeq(length int) (SeqSerializer, error) {
	m, err := w.s.SerializeMap(length)
	if err != nil {
		return nil, err
	}
	return &enumEntries{m: m}, nil
}

type enumEntries struct {
	m MapSerializer
}

func (e *enumEntries) SerializeElement(v Serializable) error {
	return v.Serialize(&enumAsEntry{
		SerializerBase: SerializerBase{Expected: "an enum variant"},
		m:              e.m,
	})
}

func (e *enumEntries) End() error { return e.m.End() }

// enumAsEntry accepts only enum variants and writes each as one map entry
// keyed by the variant name.
type enumAsEntry struct {
	SerializerBase
	m MapSerializer
}

func (w *enumAsEntry) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return w.entry(variant, UnitContent())
}

func (w *enumAsEntry) SerializeNewtypeVariant(_ string, _ uint32, variant string, v Serializable) error {
	return w.entry(variant, v)
}

// Tuple and struct payloads arrive field by field but must be written as a
// single map value, so they are collected as Content and written on End.

func (w *enumAsEntry) SerializeTupleVariant(_ string, _ uint32, variant string, length int) (SeqSerializer, error) {
	b := &bufferedEntry{w: w, variant: variant}
	b.seq = &contentSeqBuilder{
		elems:  make([]Content, 0, max(length, 0)),
		finish: SeqContent,
		dst:    &b.payload,
	}
	return b, nil
}

func (w *enumAsEntry) SerializeStructVariant(_ string, _ uint32, variant string, length int) (StructSerializer, error) {
	b := &bufferedEntry{w: w, variant: variant}
	b.fields = &contentStructBuilder{
		entries: make([]ContentEntry, 0, max(length, 0)),
		finish:  MapContent,
		dst:     &b.payload,
	}
	return b, nil
}

func (w *enumAsEntry) entry(variant string, v Serializable) error {
	if err := SerializeEntry(w.m, StringContent(variant), v); err != nil {
		return withPath(err, variant)
	}
	return nil
}

type bufferedEntry struct {
	w       *enumAsEntry
	variant string
	seq     *contentSeqBuilder
	fields  *contentStructBuilder
	payload Content
}

func (b *bufferedEntry) SerializeElement(v Serializable) error {
	return b.seq.SerializeElement(v)
}

func (b *bufferedEntry) SerializeField(name string, v Serializable) error {
	return b.fields.SerializeField(name, v)
}

func (b *bufferedEntry) End() error {
	var err error
	if b.seq != nil {
		err = b.seq.End()
	} else {
		err = b.fields.End()
	}
	if err != nil {
		return err
	}
	Logger().Debug("flushing buffered enum entry",
		zap.String("variant", b.variant),
		zap.Stringer("payload", b.payload),
	)
	return b.w.entry(b.variant, b.payload)
}

// mapAsSeq reads a map and presents its entries to inner as a sequence,
// one enum value per entry.
type mapAsSeq struct {
	VisitorBase
	inner Visitor
}

func (v *mapAsSeq) VisitMap(a MapAccess) error {
	return v.inner.VisitSeq(&entrySeq{m: a})
}

// entrySeq pulls one map entry per element. The sequence ends when the map
// has no key left.
type entrySeq struct {
	m MapAccess
}

func (s *entrySeq) NextElement(dst Deserializable) (bool, error) {
	var variant string
	ok, err := s.m.NextKey(Into(&variant))
	if err != nil || !ok {
		return false, err
	}
	if err := dst.Deserialize(&entryDeserializer{variant: variant, m: s.m}); err != nil {
		return true, withPath(err, variant)
	}
	return true, nil
}

func (s *entrySeq) SizeHint() int { return s.m.SizeHint() }

// entryDeserializer is positioned on one map entry whose key has been read.
// Whatever it is asked for, it presents the entry as an enum value.
type entryDeserializer struct {
	variant string
	m       MapAccess
}

func (d *entryDeserializer) DeserializeAny(v Visitor) error {
	return v.VisitEnum(d)
}

func (d *entryDeserializer) DeserializeOption(v Visitor) error {
	return v.VisitSome(d)
}

func (d *entryDeserializer) DeserializeEnum(_ string, variants []string, v Visitor) error {
	if len(variants) > 0 && !slices.Contains(variants, d.variant) {
		return &ErrUnknownVariant{Variant: d.variant, Expected: variants}
	}
	return v.VisitEnum(d)
}

func (d *entryDeserializer) Variant() (string, VariantAccess, error) {
	return d.variant, entryVariant{m: d.m}, nil
}

// entryVariant reads the variant payload from the map value slot.
type entryVariant struct {
	m MapAccess
}

func (a entryVariant) UnitVariant() error {
	return a.m.NextValue(DeserializeFunc(func(d Deserializer) error {
		return d.DeserializeAny(unitVisitor{VisitorBase{Expected: "a unit value"}})
	}))
}

func (a entryVariant) NewtypeVariant(dst Deserializable) error {
	return a.m.NextValue(dst)
}

func (a entryVariant) TupleVariant(_ int, v Visitor) error {
	return a.m.NextValue(DeserializeFunc(func(d Deserializer) error {
		return d.DeserializeAny(v)
	}))
}

func (a entryVariant) StructVariant(_ []string, v Visitor) error {
	return a.m.NextValue(DeserializeFunc(func(d Deserializer) error {
		return d.DeserializeAny(v)
	}))
}

type unitVisitor struct {
	VisitorBase
}

func (unitVisitor) VisitUnit() error { return nil }
func (unitVisitor) VisitNone() error { return nil }
