package shapeshift

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// DisplayFromStr adapts T through its textual form. Types implementing
// encoding.TextMarshaler and encoding.TextUnmarshaler use those methods.
// Booleans, integers and floats use strconv. Other types serialize through
// fmt and cannot be deserialized.
type DisplayFromStr[T any] struct{}

func (DisplayFromStr[T]) SerializeAs(v *T, s Serializer) error {
	if m, ok := any(v).(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return Errorf("failed to marshal %T as text: %w", *v, err)
		}
		return s.SerializeStr(string(text))
	}
	rv := reflect.ValueOf(v).Elem()
	switch rv.Kind() {
	case reflect.Bool:
		return s.SerializeStr(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.SerializeStr(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.SerializeStr(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return s.SerializeStr(strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()))
	case reflect.String:
		return s.SerializeStr(rv.String())
	}
	return s.SerializeStr(fmt.Sprint(*v))
}

func (DisplayFromStr[T]) DeserializeAs(d Deserializer) (T, error) {
	var out T
	var text string
	if err := d.DeserializeAny(&stringVisitor{VisitorBase{Expected: "a string"}, &text}); err != nil {
		return out, err
	}
	if u, ok := any(&out).(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(text)); err != nil {
			return out, Errorf("invalid value: %q for %T: %w", text, out, err)
		}
		return out, nil
	}
	if err := parseInto(reflect.ValueOf(&out).Elem(), text); err != nil {
		return out, err
	}
	return out, nil
}

func parseInto(rv reflect.Value, text string) error {
	var err error
	switch rv.Kind() {
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(text); err == nil {
			rv.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		if i, err = strconv.ParseInt(text, 10, rv.Type().Bits()); err == nil {
			rv.SetInt(i)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		if u, err = strconv.ParseUint(text, 10, rv.Type().Bits()); err == nil {
			rv.SetUint(u)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(text, rv.Type().Bits()); err == nil {
			rv.SetFloat(f)
		}
	case reflect.String:
		rv.SetString(text)
	default:
		return Errorf("%s cannot be parsed from a string", rv.Type())
	}
	if err != nil {
		return Errorf("invalid value: %q for %s: %w", text, rv.Type(), err)
	}
	return nil
}

type stringVisitor struct {
	VisitorBase
	dst *string
}

func (v *stringVisitor) VisitStr(s string) error {
	*v.dst = s
	return nil
}

func (v *stringVisitor) VisitChar(r rune) error {
	*v.dst = string(r)
	return nil
}
