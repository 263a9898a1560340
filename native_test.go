package shapeshift_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/jsonfmt"
)

func Test_NativeRoundTrip(t *testing.T) {
	type config struct {
		Ports   map[string][]uint16
		Weights [2]float64
		Limit   *int8
		Missing *string
		Blob    []byte
	}
	limit := int8(-5)
	in := config{
		Ports:   map[string][]uint16{"http": {80, 8080}, "https": {443}},
		Weights: [2]float64{0.25, 0.75},
		Limit:   &limit,
		Blob:    []byte("raw"),
	}

	for _, v := range []any{in.Ports, in.Weights, in.Limit, in.Missing, in.Blob} {
		c, err := shapeshift.ToContent(shapeshift.Value(v))
		if err != nil {
			t.Fatalf("ToContent(%v) error = %v", v, err)
		}
		out := reflect.New(reflect.TypeOf(v))
		if err := shapeshift.Into(out.Interface()).Deserialize(shapeshift.NewContentDeserializer(c)); err != nil {
			t.Fatalf("Deserialize(%s) error = %v", c, err)
		}
		if got := out.Elem().Interface(); !reflect.DeepEqual(got, v) {
			t.Errorf("round trip of %#v = %#v", v, got)
		}
	}
}

func Test_NativeMapOrder(t *testing.T) {
	c, err := shapeshift.ToContent(shapeshift.Value(map[string]int{"b": 2, "a": 1, "c": 3}))
	if err != nil {
		t.Fatalf("ToContent() error = %v", err)
	}
	var keys []string
	for _, e := range c.Entries() {
		keys = append(keys, e.Key.Str())
	}
	if got := strings.Join(keys, ","); got != "a,b,c" {
		t.Errorf("keys = %s, want a,b,c", got)
	}
}

func Test_NativeAny(t *testing.T) {
	var got any
	in := `{"n":1,"neg":-2,"f":1.5,"s":"x","l":[true,null],"big":340282366920938463463374607431768211455}`
	if err := jsonfmt.Unmarshal([]byte(in), shapeshift.Into(&got), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"n":   uint64(1),
		"neg": int64(-2),
		"f":   1.5,
		"s":   "x",
		"l":   []any{true, nil},
		"big": shapeshift.Uint128{Hi: 1<<64 - 1, Lo: 1<<64 - 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmarshal() = %#v, want %#v", got, want)
	}
}

func Test_NativeIntegerRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		into    any
		wantErr string
	}{
		{"fits int8", `-128`, new(int8), ""},
		{"overflows int8", `300`, new(int8), "invalid value: integer 300 does not fit in int8"},
		{"negative into uint", `-1`, new(uint), "invalid value: integer -1 does not fit in uint"},
		{"u64 into int64", `18446744073709551615`, new(int64), "does not fit in int64"},
		{"u128 into Uint128", `18446744073709551616`, new(shapeshift.Uint128), ""},
		{"i128 into Int128", `-18446744073709551616`, new(shapeshift.Int128), ""},
		{"integer into float", `3`, new(float32), ""},
		{"float into integer", `3.5`, new(int), "invalid type: f64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := jsonfmt.Unmarshal([]byte(tt.in), shapeshift.Into(tt.into), nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unmarshal() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func Test_Native128BitValues(t *testing.T) {
	var u shapeshift.Uint128
	if err := jsonfmt.Unmarshal([]byte(`18446744073709551616`), shapeshift.Into(&u), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := (shapeshift.Uint128{Hi: 1}); u != want {
		t.Errorf("Unmarshal() = %v, want %v", u, want)
	}

	var i shapeshift.Int128
	if err := jsonfmt.Unmarshal([]byte(`-1`), shapeshift.Into(&i), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := (shapeshift.Int128{Hi: -1, Lo: 1<<64 - 1}); i != want {
		t.Errorf("Unmarshal() = %v, want %v", i, want)
	}

	b, err := jsonfmt.Marshal(shapeshift.Value(shapeshift.Int128{Hi: -2}), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := "-36893488147419103232"; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}

func Test_NativeUnsupported(t *testing.T) {
	type opaque struct{ X int }

	_, err := shapeshift.ToContent(shapeshift.Value(opaque{X: 1}))
	var mismatch *shapeshift.ErrTypeMismatch
	if !errors.As(err, &mismatch) {
		t.Errorf("ToContent() error = %v, want *ErrTypeMismatch", err)
	}

	var o opaque
	err = shapeshift.Into(&o).Deserialize(shapeshift.NewContentDeserializer(shapeshift.UnitContent()))
	if !errors.As(err, &mismatch) {
		t.Errorf("Deserialize() error = %v, want *ErrTypeMismatch", err)
	}

	err = shapeshift.Into(o).Deserialize(shapeshift.NewContentDeserializer(shapeshift.UnitContent()))
	if err == nil || !strings.Contains(err.Error(), "non-nil pointer") {
		t.Errorf("Deserialize() into a non-pointer: error = %v", err)
	}
}
