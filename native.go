package shapeshift

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Native adapts T using its own default encoding: Serializable and
// Deserializable implementations first, then the reflected Go kind.
//
// Supported kinds are bool, all integer and float widths, string, []byte,
// slices, arrays, maps, pointers (as options), Int128, Uint128, and empty
// interfaces (decoded as a generic tree of bool, int64, uint64, float64,
// string, []byte, []any and map[string]any).
type Native[T any] struct{}

func (Native[T]) SerializeAs(v *T, s Serializer) error {
	return serializeValue(reflect.ValueOf(v).Elem(), s)
}

func (Native[T]) DeserializeAs(d Deserializer) (T, error) {
	var out T
	err := deserializeValue(reflect.ValueOf(&out).Elem(), d)
	return out, err
}

// Value returns a Serializable that writes v with its default encoding.
func Value(v any) Serializable {
	return SerializeFunc(func(s Serializer) error {
		return serializeValue(reflect.ValueOf(v), s)
	})
}

// Into returns a Deserializable that reads into the value ptr points to
// using its default encoding.
func Into(ptr any) Deserializable {
	return DeserializeFunc(func(d Deserializer) error {
		rv := reflect.ValueOf(ptr)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("deserialize target must be a non-nil pointer, got %T", ptr)
		}
		return deserializeValue(rv.Elem(), d)
	})
}

var (
	serializableType   = reflect.TypeFor[Serializable]()
	deserializableType = reflect.TypeFor[Deserializable]()
	int128Type         = reflect.TypeFor[Int128]()
	uint128Type        = reflect.TypeFor[Uint128]()
)

func serializeValue(rv reflect.Value, s Serializer) error {
	if !rv.IsValid() {
		return s.SerializeUnit()
	}
	if rv.Type().Implements(serializableType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return s.SerializeNone()
		}
		return rv.Interface().(Serializable).Serialize(s)
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(serializableType) {
		return rv.Addr().Interface().(Serializable).Serialize(s)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return s.SerializeBool(rv.Bool())
	case reflect.Int8:
		return s.SerializeInt(KindI8, rv.Int())
	case reflect.Int16:
		return s.SerializeInt(KindI16, rv.Int())
	case reflect.Int32:
		return s.SerializeInt(KindI32, rv.Int())
	case reflect.Int, reflect.Int64:
		return s.SerializeInt(KindI64, rv.Int())
	case reflect.Uint8:
		return s.SerializeUint(KindU8, rv.Uint())
	case reflect.Uint16:
		return s.SerializeUint(KindU16, rv.Uint())
	case reflect.Uint32:
		return s.SerializeUint(KindU32, rv.Uint())
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return s.SerializeUint(KindU64, rv.Uint())
	case reflect.Float32:
		return s.SerializeFloat(KindF32, rv.Float())
	case reflect.Float64:
		return s.SerializeFloat(KindF64, rv.Float())
	case reflect.String:
		return s.SerializeStr(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return s.SerializeBytes(rv.Bytes())
		}
		return serializeList(rv, s)
	case reflect.Array:
		return serializeList(rv, s)
	case reflect.Map:
		return serializeMap(rv, s)
	case reflect.Pointer:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return s.SerializeSome(SerializeFunc(func(s Serializer) error {
			return serializeValue(rv.Elem(), s)
		}))
	case reflect.Interface:
		if rv.IsNil() {
			return s.SerializeUnit()
		}
		return serializeValue(rv.Elem(), s)
	case reflect.Struct:
		switch rv.Type() {
		case int128Type:
			return s.SerializeInt128(rv.Interface().(Int128))
		case uint128Type:
			return s.SerializeUint128(rv.Interface().(Uint128))
		}
	}
	return &ErrTypeMismatch{Got: rv.Type().String(), Expected: "a type implementing Serializable"}
}

func serializeList(rv reflect.Value, s Serializer) error {
	seq, err := s.SerializeSeq(rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		err := seq.SerializeElement(SerializeFunc(func(s Serializer) error {
			return serializeValue(elem, s)
		}))
		if err != nil {
			return withPath(err, fmt.Sprint(i))
		}
	}
	return seq.End()
}

// serializeMap writes map entries sorted by key so output is deterministic.
func serializeMap(rv reflect.Value, s Serializer) error {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	m, err := s.SerializeMap(len(keys))
	if err != nil {
		return err
	}
	for _, k := range keys {
		v := rv.MapIndex(k)
		err := SerializeEntry(m,
			SerializeFunc(func(s Serializer) error { return serializeValue(k, s) }),
			SerializeFunc(func(s Serializer) error { return serializeValue(v, s) }),
		)
		if err != nil {
			return withPath(err, fmt.Sprint(k.Interface()))
		}
	}
	return m.End()
}

func deserializeValue(rv reflect.Value, d Deserializer) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(deserializableType) {
		return rv.Addr().Interface().(Deserializable).Deserialize(d)
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return d.DeserializeOption(&pointerVisitor{VisitorBase{Expected: "an option"}, rv})
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			break
		}
		c, err := Capture(d)
		if err != nil {
			return err
		}
		if x := contentToAny(c); x != nil {
			rv.Set(reflect.ValueOf(x))
		} else {
			rv.SetZero()
		}
		return nil
	case reflect.Struct:
		if rv.Type() != int128Type && rv.Type() != uint128Type {
			break
		}
		fallthrough
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return d.DeserializeAny(&scalarVisitor{VisitorBase{Expected: describe(rv.Type())}, rv})
	case reflect.Slice, reflect.Array, reflect.Map:
		return d.DeserializeAny(&containerVisitor{VisitorBase{Expected: describe(rv.Type())}, rv})
	}
	return &ErrTypeMismatch{Got: rv.Type().String(), Expected: "a type implementing Deserializable"}
}

func describe(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "a byte string"
		}
		return "a sequence"
	case reflect.Array:
		return fmt.Sprintf("a sequence of %d elements", t.Len())
	case reflect.Map:
		return "a map"
	}
	return "a value of type " + t.String()
}

type pointerVisitor struct {
	VisitorBase
	rv reflect.Value
}

func (v *pointerVisitor) VisitNone() error {
	v.rv.SetZero()
	return nil
}

func (v *pointerVisitor) VisitUnit() error { return v.VisitNone() }

func (v *pointerVisitor) VisitSome(d Deserializer) error {
	elem := reflect.New(v.rv.Type().Elem())
	if err := deserializeValue(elem.Elem(), d); err != nil {
		return err
	}
	v.rv.Set(elem)
	return nil
}

// scalarVisitor decodes into booleans, numbers, strings and 128-bit
// integers, converting between numeric widths only when no precision is
// lost.
type scalarVisitor struct {
	VisitorBase
	rv reflect.Value
}

func (v *scalarVisitor) VisitBool(b bool) error {
	if v.rv.Kind() != reflect.Bool {
		return v.VisitorBase.VisitBool(b)
	}
	v.rv.SetBool(b)
	return nil
}

func (v *scalarVisitor) VisitInt(k Kind, i int64) error {
	rv := v.rv
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(i) {
			return Errorf("invalid value: integer %d does not fit in %s", i, rv.Type())
		}
		rv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return Errorf("invalid value: integer %d does not fit in %s", i, rv.Type())
		}
		rv.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(i))
	case reflect.Struct:
		if rv.Type() == int128Type {
			hi := int64(0)
			if i < 0 {
				hi = -1
			}
			rv.Set(reflect.ValueOf(Int128{Hi: hi, Lo: uint64(i)}))
			return nil
		}
		if i < 0 {
			return Errorf("invalid value: integer %d does not fit in %s", i, rv.Type())
		}
		rv.Set(reflect.ValueOf(Uint128{Lo: uint64(i)}))
	default:
		return v.VisitorBase.VisitInt(k, i)
	}
	return nil
}

func (v *scalarVisitor) VisitUint(k Kind, u uint64) error {
	rv := v.rv
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if u > math.MaxInt64 || rv.OverflowInt(int64(u)) {
			return Errorf("invalid value: integer %d does not fit in %s", u, rv.Type())
		}
		rv.SetInt(int64(u))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.OverflowUint(u) {
			return Errorf("invalid value: integer %d does not fit in %s", u, rv.Type())
		}
		rv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(u))
	case reflect.Struct:
		if rv.Type() == int128Type {
			rv.Set(reflect.ValueOf(Int128{Lo: u}))
			return nil
		}
		rv.Set(reflect.ValueOf(Uint128{Lo: u}))
	default:
		return v.VisitorBase.VisitUint(k, u)
	}
	return nil
}

func (v *scalarVisitor) VisitInt128(i Int128) error {
	switch {
	case v.rv.Type() == int128Type:
		v.rv.Set(reflect.ValueOf(i))
		return nil
	case (i.Hi == 0 && i.Lo <= math.MaxInt64) || (i.Hi == -1 && i.Lo > math.MaxInt64):
		return v.VisitInt(KindI64, int64(i.Lo))
	case i.Hi == 0:
		return v.VisitUint(KindU64, i.Lo)
	case v.rv.Type() == uint128Type && i.Hi > 0:
		v.rv.Set(reflect.ValueOf(Uint128{Hi: uint64(i.Hi), Lo: i.Lo}))
		return nil
	}
	if v.rv.Kind() == reflect.Float32 || v.rv.Kind() == reflect.Float64 {
		f, _ := i.Big().Float64()
		v.rv.SetFloat(f)
		return nil
	}
	return Errorf("invalid value: integer %s does not fit in %s", i, v.rv.Type())
}

func (v *scalarVisitor) VisitUint128(u Uint128) error {
	switch {
	case v.rv.Type() == uint128Type:
		v.rv.Set(reflect.ValueOf(u))
		return nil
	case u.Hi == 0:
		return v.VisitUint(KindU64, u.Lo)
	case v.rv.Type() == int128Type && u.Hi <= math.MaxInt64:
		v.rv.Set(reflect.ValueOf(Int128{Hi: int64(u.Hi), Lo: u.Lo}))
		return nil
	}
	if v.rv.Kind() == reflect.Float32 || v.rv.Kind() == reflect.Float64 {
		f, _ := u.Big().Float64()
		v.rv.SetFloat(f)
		return nil
	}
	return Errorf("invalid value: integer %s does not fit in %s", u, v.rv.Type())
}

func (v *scalarVisitor) VisitFloat(k Kind, f float64) error {
	if v.rv.Kind() != reflect.Float32 && v.rv.Kind() != reflect.Float64 {
		return v.VisitorBase.VisitFloat(k, f)
	}
	v.rv.SetFloat(f)
	return nil
}

func (v *scalarVisitor) VisitChar(r rune) error {
	if v.rv.Kind() != reflect.String {
		return v.VisitorBase.VisitChar(r)
	}
	v.rv.SetString(string(r))
	return nil
}

func (v *scalarVisitor) VisitStr(s string) error {
	if v.rv.Kind() != reflect.String {
		return v.VisitorBase.VisitStr(s)
	}
	v.rv.SetString(s)
	return nil
}

// containerVisitor decodes slices, arrays and maps.
type containerVisitor struct {
	VisitorBase
	rv reflect.Value
}

func (v *containerVisitor) isBytes() bool {
	return v.rv.Kind() == reflect.Slice && v.rv.Type().Elem().Kind() == reflect.Uint8
}

func (v *containerVisitor) VisitBytes(b []byte, borrowed bool) error {
	if !v.isBytes() {
		return v.VisitorBase.VisitBytes(b, borrowed)
	}
	v.rv.SetBytes(bytes.Clone(b))
	return nil
}

func (v *containerVisitor) VisitStr(s string) error {
	if !v.isBytes() {
		return v.VisitorBase.VisitStr(s)
	}
	v.rv.SetBytes([]byte(s))
	return nil
}

func (v *containerVisitor) VisitSeq(a SeqAccess) error {
	rv := v.rv
	switch rv.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(rv.Type(), 0, max(a.SizeHint(), 0))
		for {
			elem := reflect.New(rv.Type().Elem()).Elem()
			ok, err := a.NextElement(DeserializeFunc(func(d Deserializer) error {
				return deserializeValue(elem, d)
			}))
			if err != nil {
				return withPath(err, fmt.Sprint(out.Len()))
			}
			if !ok {
				break
			}
			out = reflect.Append(out, elem)
		}
		rv.Set(out)
		return nil
	case reflect.Array:
		i := 0
		items, err := buildArrayFromSeq(rv.Len(), a, func() (reflect.Value, bool, error) {
			elem := reflect.New(rv.Type().Elem()).Elem()
			ok, err := a.NextElement(DeserializeFunc(func(d Deserializer) error {
				return deserializeValue(elem, d)
			}))
			if err != nil {
				return elem, false, withPath(err, fmt.Sprint(i))
			}
			i++
			return elem, ok, nil
		}, releaseReflected)
		if err != nil {
			return err
		}
		for i, item := range items {
			rv.Index(i).Set(item)
		}
		return nil
	}
	return v.VisitorBase.VisitSeq(a)
}

func releaseReflected(v *reflect.Value) {
	if v.CanAddr() {
		releaseElement(v.Addr().Interface())
		return
	}
	releaseElement(v.Interface())
}

func (v *containerVisitor) VisitMap(a MapAccess) error {
	rv := v.rv
	if rv.Kind() != reflect.Map {
		return v.VisitorBase.VisitMap(a)
	}
	out := reflect.MakeMapWithSize(rv.Type(), max(a.SizeHint(), 0))
	for {
		key := reflect.New(rv.Type().Key()).Elem()
		ok, err := a.NextKey(DeserializeFunc(func(d Deserializer) error {
			return deserializeValue(key, d)
		}))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		val := reflect.New(rv.Type().Elem()).Elem()
		if err := a.NextValue(DeserializeFunc(func(d Deserializer) error {
			return deserializeValue(val, d)
		})); err != nil {
			return withPath(err, fmt.Sprint(key.Interface()))
		}
		out.SetMapIndex(key, val)
	}
	rv.Set(out)
	return nil
}

// contentToAny converts captured content into a generic Go value tree.
func contentToAny(c Content) any {
	switch c.Kind() {
	case KindBool:
		return c.Bool()
	case KindI8, KindI16, KindI32, KindI64:
		return c.Int()
	case KindU8, KindU16, KindU32, KindU64:
		return c.Uint()
	case KindI128:
		return c.Int128()
	case KindU128:
		return c.Uint128()
	case KindF32, KindF64:
		return c.Float()
	case KindChar:
		return string(c.Char())
	case KindStr:
		return c.Str()
	case KindBytes:
		return bytes.Clone(c.Bytes())
	case KindSome, KindNewtypeVariant:
		p, _ := c.Payload()
		if c.Kind() == KindNewtypeVariant {
			return map[string]any{c.Str(): contentToAny(p)}
		}
		return contentToAny(p)
	case KindSeq:
		out := make([]any, len(c.Elems()))
		for i, e := range c.Elems() {
			out[i] = contentToAny(e)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(c.Entries()))
		for _, e := range c.Entries() {
			out[keySegment(e.Key)] = contentToAny(e.Value)
		}
		return out
	case KindUnitVariant:
		return c.Str()
	case KindTupleVariant:
		return map[string]any{c.Str(): contentToAny(SeqContent(c.Elems()))}
	case KindStructVariant:
		return map[string]any{c.Str(): contentToAny(MapContent(c.Entries()))}
	}
	return nil
}
