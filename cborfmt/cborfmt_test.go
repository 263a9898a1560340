package cborfmt_test

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/cborfmt"
	"github.com/dhoelle/shapeshift/internal/sample"
)

type valueMap = shapeshift.EnumMap[sample.Value, shapeshift.Native[sample.Value]]

func Test_EnumMapScenario(t *testing.T) {
	values := sample.Scenario()
	b, err := cborfmt.Marshal(shapeshift.SerializeWith[valueMap](&values))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	diag, err := cborfmt.Diagnose(b)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}
	if want := `{"Unit": null, "Tuple": [1, "Middle", false], "Struct": {"a": 666, "b": "BBB", "c": true}}`; diag != want {
		t.Errorf("Diagnose() = %s, want %s", diag, want)
	}

	var got []sample.Value
	if err := cborfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got)); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("Unmarshal() = %v, want %v", got, values)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d = %s, want %s", i, got[i], values[i])
		}
	}
}

func Test_RepeatedKeys(t *testing.T) {
	values := []sample.Value{sample.NewStruct(1, "a", true), sample.NewNewtype(4), sample.NewUnit(), sample.NewStruct(2, "b", false), sample.NewNewtype(5)}
	b, err := cborfmt.Marshal(shapeshift.SerializeWith[valueMap](&values))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	diag, err := cborfmt.Diagnose(b)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}
	if want := `{"Struct": {"a": 1, "b": "a", "c": true}, "Newtype": 4, "Unit": null, "Struct": {"a": 2, "b": "b", "c": false}, "Newtype": 5}`; diag != want {
		t.Errorf("Diagnose() = %s, want %s", diag, want)
	}

	var got []sample.Value
	if err := cborfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got)); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("Unmarshal() = %v, want %v", got, values)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d = %s, want %s", i, got[i], values[i])
		}
	}
}

func Test_ExternallyTaggedEnums(t *testing.T) {
	tests := []struct {
		value sample.Value
		diag  string
	}{
		{sample.NewUnit(), `"Unit"`},
		{sample.NewTuple(1, "x", true), `{"Tuple": [1, "x", true]}`},
		{sample.NewStruct(2, "y", false), `{"Struct": {"a": 2, "b": "y", "c": false}}`},
		{sample.NewNewtype(9), `{"Newtype": 9}`},
	}
	for _, tt := range tests {
		t.Run(tt.value.String(), func(t *testing.T) {
			b, err := cborfmt.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			diag, err := cborfmt.Diagnose(b)
			if err != nil {
				t.Fatalf("Diagnose() error = %v", err)
			}
			if diag != tt.diag {
				t.Errorf("Diagnose() = %s, want %s", diag, tt.diag)
			}

			var got sample.Value
			if err := cborfmt.Unmarshal(b, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Unmarshal() = %s, want %s", got, tt.value)
			}
		})
	}
}

func Test_Scalars(t *testing.T) {
	in := shapeshift.Value([]any{[]byte{1, 2}, 1.5, -3, "x", nil})
	b, err := cborfmt.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	diag, err := cborfmt.Diagnose(b)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}
	if want := `[h'0102', 1.5, -3, "x", null]`; diag != want {
		t.Errorf("Diagnose() = %s, want %s", diag, want)
	}

	var got shapeshift.Content
	if err := cborfmt.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := shapeshift.SeqContent([]shapeshift.Content{
		shapeshift.BytesContent([]byte{1, 2}, false),
		shapeshift.FloatContent(shapeshift.KindF64, 1.5),
		shapeshift.IntContent(shapeshift.KindI64, -3),
		shapeshift.StringContent("x"),
		shapeshift.UnitContent(),
	})
	if !got.Equal(want) {
		t.Errorf("Unmarshal() = %s, want %s", got, want)
	}
}

func Test_BigIntegers(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"uint128", shapeshift.Uint128{Hi: 1}},
		{"int128", shapeshift.Int128{Hi: -1}},
		{"int128 beyond 64 bits", shapeshift.Int128{Hi: -3, Lo: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := cborfmt.Marshal(shapeshift.Value(tt.in))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			dst := reflect.New(reflect.TypeOf(tt.in))
			if err := cborfmt.Unmarshal(b, shapeshift.Into(dst.Interface())); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got := dst.Elem().Interface(); got != tt.in {
				t.Errorf("Unmarshal() = %v, want %v", got, tt.in)
			}
		})
	}
}

func Test_UnmarshalErrors(t *testing.T) {
	var got shapeshift.Content

	err := cborfmt.Unmarshal([]byte{0x01, 0x02}, &got)
	var fe *shapeshift.FormatError
	if !errors.As(err, &fe) || fe.Offset != 1 || !strings.Contains(err.Error(), "trailing data") {
		t.Errorf("Unmarshal() with trailing data: error = %v", err)
	}

	err = cborfmt.Unmarshal([]byte{0x9f, 0x01, 0xff}, &got)
	if !errors.As(err, &fe) || !strings.Contains(err.Error(), "indefinite-length") {
		t.Errorf("Unmarshal() of an indefinite-length array: error = %v", err)
	}

	err = cborfmt.Unmarshal([]byte{0x83, 0x01}, &got)
	if !errors.As(err, &fe) {
		t.Errorf("Unmarshal() of a truncated array: error = %v, want *FormatError", err)
	}

	err = cborfmt.Unmarshal([]byte{0x82, 0x01, 0x02}, shapeshift.DeserializeInto[shapeshift.ArrayOf[[3]int, int, shapeshift.Native[int]]](new([3]int)))
	var mismatch *shapeshift.ErrLengthMismatch
	if !errors.As(err, &mismatch) || mismatch.Expected != 3 || mismatch.Actual != 2 {
		t.Errorf("Unmarshal() error = %v, want length mismatch", err)
	}

	var v sample.Value
	err = cborfmt.Unmarshal([]byte{0x66, 'C', 'i', 'r', 'c', 'l', 'e'}, &v)
	var unknown *shapeshift.ErrUnknownVariant
	if !errors.As(err, &unknown) || unknown.Variant != "Circle" {
		t.Errorf("Unmarshal() error = %v, want *ErrUnknownVariant", err)
	}
}

func Test_MarshalWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := cborfmt.MarshalWrite(&buf, shapeshift.Value(map[string]int{"b": 2, "a": 1})); err != nil {
		t.Fatalf("MarshalWrite() error = %v", err)
	}

	var got map[string]int
	if err := cborfmt.UnmarshalRead(&buf, shapeshift.Into(&got)); err != nil {
		t.Fatalf("UnmarshalRead() error = %v", err)
	}
	if len(got) != 2 || got["a"] != 1 || got["b"] != 2 {
		t.Errorf("UnmarshalRead() = %v", got)
	}
}

func ExampleDiagnose() {
	values := []sample.Value{sample.NewUnit(), sample.NewTuple(7, "x", true)}
	b, err := cborfmt.Marshal(shapeshift.SerializeWith[valueMap](&values))
	if err != nil {
		panic(err)
	}
	fmt.Printf("%x\n", b)

	diag, err := cborfmt.Diagnose(b)
	if err != nil {
		panic(err)
	}
	fmt.Println(diag)

	// Output:
	// a264556e6974f6655475706c6583076178f5
	// {"Unit": null, "Tuple": [7, "x", true]}
}
