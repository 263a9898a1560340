package shapeshift

import "fmt"

// SerializeAs is the serialize half of an adapter: it writes a T using an
// encoding chosen by the adapter rather than by T itself.
//
// Adapters are zero-size strategy types. They are selected through type
// parameters and never hold data, so the zero value is always ready to use.
type SerializeAs[T any] interface {
	SerializeAs(v *T, s Serializer) error
}

// DeserializeAs is the deserialize half of an adapter.
type DeserializeAs[T any] interface {
	DeserializeAs(d Deserializer) (T, error)
}

// Adapter is implemented by adapters that support both directions. An
// adapter is free to implement only one of SerializeAs and DeserializeAs.
type Adapter[T any] interface {
	SerializeAs[T]
	DeserializeAs[T]
}

// SerializeAsWrap pairs a borrowed T with adapter A so that it can be passed
// anywhere a Serializable is expected. It must not outlive the value it
// borrows.
type SerializeAsWrap[T any, A SerializeAs[T]] struct {
	value *T
}

// NewSerializeAsWrap wraps v for serialization through A.
func NewSerializeAsWrap[T any, A SerializeAs[T]](v *T) SerializeAsWrap[T, A] {
	return SerializeAsWrap[T, A]{value: v}
}

// SerializeWith is NewSerializeAsWrap with T inferred:
//
//	shapeshift.SerializeWith[shapeshift.DisplayFromStr[int]](&n)
func SerializeWith[A SerializeAs[T], T any](v *T) SerializeAsWrap[T, A] {
	return SerializeAsWrap[T, A]{value: v}
}

func (w SerializeAsWrap[T, A]) Serialize(s Serializer) error {
	var a A
	return a.SerializeAs(w.value, s)
}

// DeserializeAsWrap is the deserialize-side counterpart of SerializeAsWrap:
// once Deserialize succeeds, Into returns the value recovered through A.
type DeserializeAsWrap[T any, A DeserializeAs[T]] struct {
	value T
}

func (w *DeserializeAsWrap[T, A]) Deserialize(d Deserializer) error {
	var a A
	v, err := a.DeserializeAs(d)
	if err != nil {
		return err
	}
	w.value = v
	return nil
}

// Into returns the deserialized value.
func (w DeserializeAsWrap[T, A]) Into() T { return w.value }

// DeserializeInto returns a Deserializable that stores the value recovered
// through A in dst. dst is left untouched on failure.
func DeserializeInto[A DeserializeAs[T], T any](dst *T) Deserializable {
	return DeserializeFunc(func(d Deserializer) error {
		var w DeserializeAsWrap[T, A]
		if err := w.Deserialize(d); err != nil {
			return err
		}
		*dst = w.Into()
		return nil
	})
}

// Option adapts *T, encoding nil as none and non-nil through A.
type Option[T any, A Adapter[T]] struct{}

func (Option[T, A]) SerializeAs(v **T, s Serializer) error {
	if *v == nil {
		return s.SerializeNone()
	}
	return s.SerializeSome(NewSerializeAsWrap[T, A](*v))
}

func (Option[T, A]) DeserializeAs(d Deserializer) (*T, error) {
	var out *T
	err := d.DeserializeOption(&optionVisitor[T, A]{
		VisitorBase: VisitorBase{Expected: "an option"},
		dst:         &out,
	})
	return out, err
}

type optionVisitor[T any, A Adapter[T]] struct {
	VisitorBase
	dst **T
}

func (v *optionVisitor[T, A]) VisitNone() error {
	*v.dst = nil
	return nil
}

func (v *optionVisitor[T, A]) VisitUnit() error { return v.VisitNone() }

func (v *optionVisitor[T, A]) VisitSome(d Deserializer) error {
	var w DeserializeAsWrap[T, A]
	if err := w.Deserialize(d); err != nil {
		return err
	}
	x := w.Into()
	*v.dst = &x
	return nil
}

// SliceOf adapts []T as a sequence whose elements go through A.
type SliceOf[T any, A Adapter[T]] struct{}

func (SliceOf[T, A]) SerializeAs(v *[]T, s Serializer) error {
	seq, err := s.SerializeSeq(len(*v))
	if err != nil {
		return err
	}
	for i := range *v {
		if err := seq.SerializeElement(NewSerializeAsWrap[T, A](&(*v)[i])); err != nil {
			return withPath(err, fmt.Sprint(i))
		}
	}
	return seq.End()
}

func (SliceOf[T, A]) DeserializeAs(d Deserializer) ([]T, error) {
	var out []T
	err := d.DeserializeAny(&sliceVisitor[T, A]{
		VisitorBase: VisitorBase{Expected: "a sequence"},
		dst:         &out,
	})
	return out, err
}

type sliceVisitor[T any, A DeserializeAs[T]] struct {
	VisitorBase
	dst *[]T
}

func (v *sliceVisitor[T, A]) VisitSeq(a SeqAccess) error {
	out := make([]T, 0, max(a.SizeHint(), 0))
	for {
		var w DeserializeAsWrap[T, A]
		ok, err := a.NextElement(&w)
		if err != nil {
			return withPath(err, fmt.Sprint(len(out)))
		}
		if !ok {
			break
		}
		out = append(out, w.Into())
	}
	*v.dst = out
	return nil
}
