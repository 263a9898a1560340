package shapeshift

import "go.uber.org/zap"

// FlattenedMaybe reads a map in which the value of field is either nested
// under the key field or flattened into the map itself:
//
//	{"t": {"i": 1}}   // explicit
//	{"i": 1}          // flattened
//
// The remaining entries are decoded through A as the flattened candidate;
// if that fails the candidate is treated as absent. Exactly one candidate
// must be present: otherwise FlattenedMaybe fails with *ErrMissingField or
// *ErrAmbiguousField. A repeated explicit key fails with
// *ErrDuplicateField.
func FlattenedMaybe[T any, A DeserializeAs[T]](d Deserializer, field string) (T, error) {
	v := &flattenVisitor[T, A]{
		VisitorBase: VisitorBase{Expected: "a map"},
		field:       field,
	}
	if err := d.DeserializeAny(v); err != nil {
		var zero T
		return zero, err
	}
	return v.out, nil
}

type flattenVisitor[T any, A DeserializeAs[T]] struct {
	VisitorBase
	field string
	out   T
}

func (v *flattenVisitor[T, A]) VisitMap(m MapAccess) error {
	var explicit *T
	rest := make([]ContentEntry, 0, max(m.SizeHint(), 0))
	for {
		var key Content
		ok, err := m.NextKey(&key)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if key.Kind() == KindStr && key.Str() == v.field {
			if explicit != nil {
				return &ErrDuplicateField{Field: v.field}
			}
			var w DeserializeAsWrap[T, A]
			if err := m.NextValue(&w); err != nil {
				return withPath(err, v.field)
			}
			x := w.Into()
			explicit = &x
			continue
		}
		var value Content
		if err := m.NextValue(&value); err != nil {
			return withPath(err, keySegment(key))
		}
		rest = append(rest, ContentEntry{Key: key, Value: value})
	}

	var a A
	flattened, err := a.DeserializeAs(NewContentDeserializer(MapContent(rest)))
	hasFlattened := err == nil
	if err != nil {
		Logger().Debug("flattened candidate rejected",
			zap.String("field", v.field),
			zap.Error(err),
		)
	}

	switch {
	case explicit != nil && hasFlattened:
		return &ErrAmbiguousField{Field: v.field}
	case explicit != nil:
		v.out = *explicit
	case hasFlattened:
		v.out = flattened
	default:
		return &ErrMissingField{Field: v.field}
	}
	return nil
}
