package shapeshift

import (
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
)

// BuildArray pulls exactly n elements from next and returns them in order.
//
// next reports (element, true, nil) for each element and (_, false, nil)
// once the source is exhausted. If the source fails or runs dry before n
// elements arrive, every element already pulled is released exactly once,
// in pull order, and BuildArray returns the source error unchanged or an
// *ErrLengthMismatch carrying the number of elements received. Elements are
// released by calling Close on the element or its address when either
// implements io.Closer. On success nothing is released and ownership passes
// to the caller.
func BuildArray[T any](n int, next func() (T, bool, error)) ([]T, error) {
	return buildArray(n, next, releasePtr[T])
}

func buildArray[T any](n int, next func() (T, bool, error), release func(*T)) ([]T, error) {
	buf := make([]T, 0, n)
	for len(buf) < n {
		v, ok, err := next()
		if err == nil && !ok {
			err = &ErrLengthMismatch{Expected: n, Actual: len(buf)}
		}
		if err != nil {
			rollback(buf, n, release)
			return nil, err
		}
		buf = append(buf, v)
	}
	return buf, nil
}

// buildArrayFromSeq is buildArray followed by a check that a has no
// elements left. Trailing elements are drained and counted so the
// resulting *ErrLengthMismatch reports the real length.
func buildArrayFromSeq[T any](n int, a SeqAccess, next func() (T, bool, error), release func(*T)) ([]T, error) {
	items, err := buildArray(n, next, release)
	if err != nil {
		return nil, err
	}
	extra := 0
	for {
		var ignored IgnoredAny
		ok, err := a.NextElement(&ignored)
		if err != nil {
			rollback(items, n, release)
			return nil, withPath(err, fmt.Sprint(n+extra))
		}
		if !ok {
			break
		}
		extra++
	}
	if extra > 0 {
		rollback(items, n, release)
		return nil, &ErrLengthMismatch{Expected: n, Actual: n + extra}
	}
	return items, nil
}

func rollback[T any](buf []T, n int, release func(*T)) {
	Logger().Debug("releasing partially built array",
		zap.Int("initialized", len(buf)),
		zap.Int("expected", n),
	)
	defer clear(buf)
	releaseAll(buf, release)
}

// releaseAll releases buf[0] first and then the rest. The deferred call
// keeps releasing even if one release panics; the panic resumes once every
// element has been visited.
func releaseAll[T any](buf []T, release func(*T)) {
	if len(buf) == 0 {
		return
	}
	defer releaseAll(buf[1:], release)
	release(&buf[0])
}

func releasePtr[T any](v *T) { releaseElement(v) }

// releaseElement closes x when it is an io.Closer, or when it points to one.
func releaseElement(x any) {
	c, ok := x.(io.Closer)
	if !ok {
		rv := reflect.ValueOf(x)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return
		}
		elem := rv.Elem()
		if (elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface) && elem.IsNil() {
			return
		}
		if c, ok = elem.Interface().(io.Closer); !ok {
			return
		}
	}
	if err := c.Close(); err != nil {
		Logger().Warn("failed to release array element", zap.Error(err))
	}
}

// ArrayOf adapts the fixed-size array type Arr, whose elements are T, as a
// sequence of exactly len(Arr) elements encoded through A.
type ArrayOf[Arr any, T any, A Adapter[T]] struct{}

func arrayLen[Arr, T any]() (int, error) {
	t := reflect.TypeFor[Arr]()
	if t.Kind() != reflect.Array || t.Elem() != reflect.TypeFor[T]() {
		return 0, fmt.Errorf("%s is not an array of %s", t, reflect.TypeFor[T]())
	}
	return t.Len(), nil
}

func (ArrayOf[Arr, T, A]) SerializeAs(v *Arr, s Serializer) error {
	n, err := arrayLen[Arr, T]()
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v).Elem()
	seq, err := s.SerializeSeq(n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		elem := rv.Index(i).Addr().Interface().(*T)
		if err := seq.SerializeElement(NewSerializeAsWrap[T, A](elem)); err != nil {
			return withPath(err, fmt.Sprint(i))
		}
	}
	return seq.End()
}

func (ArrayOf[Arr, T, A]) DeserializeAs(d Deserializer) (Arr, error) {
	var out Arr
	n, err := arrayLen[Arr, T]()
	if err != nil {
		return out, err
	}
	err = d.DeserializeAny(&arrayVisitor[Arr, T, A]{
		VisitorBase: VisitorBase{Expected: fmt.Sprintf("an array of length %d", n)},
		n:           n,
		dst:         &out,
	})
	return out, err
}

type arrayVisitor[Arr any, T any, A DeserializeAs[T]] struct {
	VisitorBase
	n   int
	dst *Arr
}

func (v *arrayVisitor[Arr, T, A]) VisitSeq(a SeqAccess) error {
	items, err := buildArrayFromSeq(v.n, a, seqPuller[T, A](a), releasePtr[T])
	if err != nil {
		return err
	}
	reflect.Copy(reflect.ValueOf(v.dst).Elem(), reflect.ValueOf(items))
	return nil
}

// seqPuller adapts a SeqAccess into a BuildArray source whose elements go
// through A. Element errors carry the element index.
func seqPuller[T any, A DeserializeAs[T]](a SeqAccess) func() (T, bool, error) {
	i := 0
	return func() (T, bool, error) {
		var w DeserializeAsWrap[T, A]
		ok, err := a.NextElement(&w)
		if err != nil {
			return w.Into(), false, withPath(err, fmt.Sprint(i))
		}
		i++
		return w.Into(), ok, nil
	}
}
