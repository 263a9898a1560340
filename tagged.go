package shapeshift

import (
	"fmt"
	"slices"
)

const (
	// The default map key for variant names
	defaultDiscriminatorKey = "_type"

	// The default map key for nested payloads
	defaultNestedValueKey = "_value"
)

// TagConfig describes an internally tagged representation of enum values: a
// map holding the variant name under DiscriminatorKey and the payload under
// NestedValueKey.
//
//	{"_type": "Point", "_value": {"x": 1, "y": 2}}
//
// With InlineObjects set, map-shaped payloads are merged into the same map
// instead:
//
//	{"_type": "Point", "x": 1, "y": 2}
//
// Non-map payloads are always nested, and unit variants carry no payload.
type TagConfig struct {
	DiscriminatorKey string
	NestedValueKey   string
	InlineObjects    bool
}

func (c TagConfig) keys() (discriminator, nested string) {
	discriminator = defaultDiscriminatorKey
	if c.DiscriminatorKey != "" {
		discriminator = c.DiscriminatorKey
	}
	nested = defaultNestedValueKey
	if c.NestedValueKey != "" {
		nested = c.NestedValueKey
	}
	return discriminator, nested
}

// Wrap returns a Serializable writing the enum value v in the tagged
// representation.
func (c TagConfig) Wrap(v Serializable) Serializable {
	return SerializeFunc(func(s Serializer) error {
		return c.serialize(v, s)
	})
}

// Unwrap returns a Deserializable reading the tagged representation and
// passing the enum value it describes to dst.
func (c TagConfig) Unwrap(dst Deserializable) Deserializable {
	return DeserializeFunc(func(d Deserializer) error {
		return c.deserialize(d, dst)
	})
}

func (c TagConfig) serialize(v Serializable, s Serializer) error {
	discriminatorKey, nestedValueKey := c.keys()

	value, err := ToContent(v)
	if err != nil {
		return err
	}
	if !value.Kind().IsVariant() {
		return &ErrTypeMismatch{Got: value.Kind().String(), Expected: "an enum variant"}
	}
	_, _, variant := value.Variant()

	var payload *Content
	switch value.Kind() {
	case KindNewtypeVariant:
		p, _ := value.Payload()
		payload = &p
	case KindTupleVariant:
		p := SeqContent(value.Elems())
		payload = &p
	case KindStructVariant:
		p := MapContent(value.Entries())
		payload = &p
	}

	entries := []ContentEntry{{Key: StringContent(discriminatorKey), Value: StringContent(variant)}}
	switch {
	case payload == nil:
		// unit variants carry no payload
	case c.InlineObjects && payload.Kind() == KindMap:
		for _, e := range payload.Entries() {
			if e.Key.Kind() != KindStr {
				return &ErrTypeMismatch{Got: e.Key.Kind().String(), Expected: "a string key to inline"}
			}
			if e.Key.Str() == discriminatorKey {
				return fmt.Errorf("inline key %q collides with the discriminator key", discriminatorKey)
			}
			entries = append(entries, e)
		}
	default:
		entries = append(entries, ContentEntry{Key: StringContent(nestedValueKey), Value: *payload})
	}
	return MapContent(entries).Serialize(s)
}

func (c TagConfig) deserialize(d Deserializer, dst Deserializable) error {
	discriminatorKey, nestedValueKey := c.keys()

	//  1. Capture the whole map
	//  2. Extract the discriminator
	//  3. Take the payload from the nested value key, or
	//     from the remaining entries when inlined
	//  4. Replay the result as an externally tagged enum
	m, err := Capture(d)
	if err != nil {
		return err
	}
	if m.Kind() != KindMap {
		return &ErrTypeMismatch{Got: m.Kind().String(), Expected: "a tagged map"}
	}

	var (
		variant *string
		nested  *Content
		rest    []ContentEntry
	)
	for _, e := range m.Entries() {
		switch {
		case e.Key.Kind() == KindStr && e.Key.Str() == discriminatorKey:
			if variant != nil {
				return &ErrDuplicateField{Field: discriminatorKey}
			}
			if e.Value.Kind() != KindStr {
				return Errorf("value for discriminator key %q must be a string (got %s)", discriminatorKey, e.Value.Kind())
			}
			s := e.Value.Str()
			variant = &s
		case e.Key.Kind() == KindStr && e.Key.Str() == nestedValueKey:
			if nested != nil {
				return &ErrDuplicateField{Field: nestedValueKey}
			}
			v := e.Value
			nested = &v
		default:
			rest = append(rest, e)
		}
	}
	if variant == nil {
		return &ErrMissingField{Field: discriminatorKey}
	}

	var value Content
	switch {
	case nested != nil && len(rest) > 0:
		return Errorf("found both inline and nested values for variant %q", *variant)
	case nested != nil:
		value = NewtypeVariantContent("", 0, *variant, *nested)
	case len(rest) > 0:
		value = NewtypeVariantContent("", 0, *variant, MapContent(slices.Clip(rest)))
	default:
		value = UnitVariantContent("", 0, *variant)
	}
	return dst.Deserialize(NewContentDeserializer(value))
}

// Tagged adapts enum values of T, encoded through A, to the nested tagged
// representation with the default keys.
type Tagged[T any, A Adapter[T]] struct{}

func (Tagged[T, A]) SerializeAs(v *T, s Serializer) error {
	return TagConfig{}.serialize(NewSerializeAsWrap[T, A](v), s)
}

func (Tagged[T, A]) DeserializeAs(d Deserializer) (T, error) {
	var w DeserializeAsWrap[T, A]
	err := TagConfig{}.deserialize(d, &w)
	return w.Into(), err
}

// TaggedInline is Tagged with map-shaped payloads inlined.
type TaggedInline[T any, A Adapter[T]] struct{}

func (TaggedInline[T, A]) SerializeAs(v *T, s Serializer) error {
	return TagConfig{InlineObjects: true}.serialize(NewSerializeAsWrap[T, A](v), s)
}

func (TaggedInline[T, A]) DeserializeAs(d Deserializer) (T, error) {
	var w DeserializeAsWrap[T, A]
	err := TagConfig{InlineObjects: true}.deserialize(d, &w)
	return w.Into(), err
}
