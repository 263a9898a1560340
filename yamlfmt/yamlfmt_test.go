package yamlfmt_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/internal/sample"
	"github.com/dhoelle/shapeshift/yamlfmt"
)

type valueMap = shapeshift.EnumMap[sample.Value, shapeshift.Native[sample.Value]]

const scenarioYAML = `Unit: null
Tuple:
  - 1
  - Middle
  - false
Struct:
  a: 666
  b: BBB
  c: true
`

func Test_EnumMapScenario(t *testing.T) {
	values := sample.Scenario()
	b, err := yamlfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != scenarioYAML {
		t.Errorf("Marshal() = %q, want %q", b, scenarioYAML)
	}

	var got []sample.Value
	if err := yamlfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), nil); err != nil {
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

func Test_DuplicateKeys(t *testing.T) {
	values := []sample.Value{sample.NewTuple(1, "a", true), sample.NewTuple(2, "b", false)}
	b, err := yamlfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if n := strings.Count(string(b), "Tuple:"); n != 2 {
		t.Errorf("Marshal() = %q, want two Tuple keys", b)
	}

	var got []sample.Value
	if err := yamlfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != 2 || got[0] != values[0] || got[1] != values[1] {
		t.Errorf("Unmarshal() = %v, want %v", got, values)
	}
}

func Test_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   shapeshift.Content
		out  string
	}{
		{"string that looks like a bool", shapeshift.StringContent("true"), "\"true\"\n"},
		{"string that looks like a number", shapeshift.StringContent("12"), "\"12\"\n"},
		{"whole float", shapeshift.FloatContent(shapeshift.KindF64, 2), "2.0\n"},
		{"negative int", shapeshift.IntContent(shapeshift.KindI32, -7), "-7\n"},
		{"none", shapeshift.NoneContent(), "null\n"},
		{"bytes", shapeshift.BytesContent([]byte{1, 2}, false), "!!binary AQI=\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := yamlfmt.Marshal(tt.in, nil)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(b) != tt.out {
				t.Errorf("Marshal() = %q, want %q", b, tt.out)
			}

			var got shapeshift.Content
			if err := yamlfmt.Unmarshal(b, &got, nil); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			var again shapeshift.Content
			b2, err := yamlfmt.Marshal(got, nil)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if err := yamlfmt.Unmarshal(b2, &again, nil); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !again.Equal(got) {
				t.Errorf("second round trip = %s, want %s", again, got)
			}
		})
	}
}

func Test_BigIntegers(t *testing.T) {
	b, err := yamlfmt.Marshal(shapeshift.Value(shapeshift.Uint128{Hi: 1}), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := "!!int 18446744073709551616\n"; string(b) != want {
		t.Errorf("Marshal() = %q, want %q", b, want)
	}

	var u shapeshift.Uint128
	if err := yamlfmt.Unmarshal(b, shapeshift.Into(&u), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := (shapeshift.Uint128{Hi: 1}); u != want {
		t.Errorf("Unmarshal() = %v, want %v", u, want)
	}

	var i shapeshift.Int128
	if err := yamlfmt.Unmarshal([]byte("!!int -18446744073709551616\n"), shapeshift.Into(&i), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := (shapeshift.Int128{Hi: -1}); i != want {
		t.Errorf("Unmarshal() = %v, want %v", i, want)
	}

	var n int64
	if err := yamlfmt.Unmarshal([]byte("-42\n"), shapeshift.Into(&n), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != -42 {
		t.Errorf("Unmarshal() = %d, want -42", n)
	}
}

func Test_Aliases(t *testing.T) {
	in := "base: &b [1, 2]\ncopy: *b\n"
	var got map[string][]int
	if err := yamlfmt.Unmarshal([]byte(in), shapeshift.Into(&got), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got["copy"]) != 2 || got["copy"][1] != 2 {
		t.Errorf("Unmarshal() = %v, want copy to follow the alias", got)
	}
}

func Test_Errors(t *testing.T) {
	var got []sample.Value
	err := yamlfmt.Unmarshal([]byte("Unit: null\nCircle: 1\n"), shapeshift.DeserializeInto[valueMap](&got), nil)
	var unknown *shapeshift.ErrUnknownVariant
	if !errors.As(err, &unknown) || unknown.Variant != "Circle" {
		t.Errorf("Unmarshal() error = %v, want *ErrUnknownVariant for Circle", err)
	}

	var n int
	err = yamlfmt.Unmarshal([]byte("a: [1\n"), shapeshift.Into(&n), nil)
	var fe *shapeshift.FormatError
	if !errors.As(err, &fe) || fe.Format != "yaml" {
		t.Errorf("Unmarshal() error = %v, want *FormatError", err)
	}

	fe = nil
	err = yamlfmt.Unmarshal([]byte("\n\nx: !!binary '%%%'\n"), shapeshift.Into(&map[string][]byte{}), nil)
	if !errors.As(err, &fe) || fe.Line != 3 {
		t.Errorf("Unmarshal() error = %v, want a position on line 3", err)
	}
}

func Test_Indent(t *testing.T) {
	v := shapeshift.MapContent([]shapeshift.ContentEntry{{
		Key: shapeshift.StringContent("a"),
		Value: shapeshift.MapContent([]shapeshift.ContentEntry{{
			Key:   shapeshift.StringContent("b"),
			Value: shapeshift.BoolContent(true),
		}}),
	}})
	b, err := yamlfmt.Marshal(v, &yamlfmt.Config{Indent: 4})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := "a:\n    b: true\n"; string(b) != want {
		t.Errorf("Marshal() = %q, want %q", b, want)
	}
}

func Example() {
	values := sample.Scenario()
	b, err := yamlfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err != nil {
		panic(err)
	}
	fmt.Print(string(b))

	// Output:
	// Unit: null
	// Tuple:
	//   - 1
	//   - Middle
	//   - false
	// Struct:
	//   a: 666
	//   b: BBB
	//   c: true
}
