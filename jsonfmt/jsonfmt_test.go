package jsonfmt_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/internal/sample"
	"github.com/dhoelle/shapeshift/jsonfmt"
	"github.com/go-json-experiment/json"
)

type valueMap = shapeshift.EnumMap[sample.Value, shapeshift.Native[sample.Value]]

const scenarioJSON = `{"Unit":null,"Tuple":[1,"Middle",false],"Struct":{"a":666,"b":"BBB","c":true}}`

func Test_EnumMapScenario(t *testing.T) {
	values := sample.Scenario()
	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != scenarioJSON {
		t.Errorf("Marshal() = %s, want %s", b, scenarioJSON)
	}

	var got []sample.Value
	if err := jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), nil); err != nil {
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

func Test_DuplicateNames(t *testing.T) {
	values := []sample.Value{sample.NewUnit(), sample.NewUnit()}

	_, err := jsonfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate object member name") {
		t.Errorf("Marshal() error = %v, want duplicate name error", err)
	}

	cfg := &jsonfmt.Config{AllowDuplicateNames: true}
	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"Unit":null,"Unit":null}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var got []sample.Value
	err = jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate object member name") {
		t.Errorf("Unmarshal() error = %v, want duplicate name error", err)
	}
	if err := jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != 2 || got[0] != values[0] || got[1] != values[1] {
		t.Errorf("Unmarshal() = %v, want %v", got, values)
	}
}

func Test_EnumMapNewtypeVariants(t *testing.T) {
	values := []sample.Value{
		sample.NewUnit(),
		sample.NewNewtype(7),
		sample.NewTuple(1, "x", true),
		sample.NewStruct(2, "y", false),
		sample.NewNewtype(3),
	}
	cfg := &jsonfmt.Config{AllowDuplicateNames: true}

	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Unit":null,"Newtype":7,"Tuple":[1,"x",true],"Struct":{"a":2,"b":"y","c":false},"Newtype":3}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var got []sample.Value
	if err := jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&got), cfg); err != nil {
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
	for _, v := range sample.Scenario() {
		b, err := jsonfmt.Marshal(v, nil)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", v, err)
		}
		var got sample.Value
		if err := jsonfmt.Unmarshal(b, &got, nil); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", b, err)
		}
		if got != v {
			t.Errorf("round trip of %s through %s = %s", v, b, got)
		}
	}

	b, err := jsonfmt.Marshal(sample.NewTuple(1, "x", true), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"Tuple":[1,"x",true]}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var got sample.Value
	err = jsonfmt.Unmarshal([]byte(`{"Unit":null,"Tuple":[1,"x",true]}`), &got, nil)
	var mismatch *shapeshift.ErrTypeMismatch
	if !errors.As(err, &mismatch) {
		t.Errorf("Unmarshal() of two variants: error = %v, want *ErrTypeMismatch", err)
	}
}

func Test_Config(t *testing.T) {
	v := shapeshift.MapContent([]shapeshift.ContentEntry{
		{Key: shapeshift.StringContent("a"), Value: shapeshift.SeqContent([]shapeshift.Content{
			shapeshift.IntContent(shapeshift.KindI64, 1),
		})},
	})
	b, err := jsonfmt.Marshal(v, &jsonfmt.Config{Indent: "  "})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := "{\n  \"a\": [\n    1\n  ]\n}"; string(b) != want {
		t.Errorf("Marshal() = %q, want %q", b, want)
	}

	in := []byte("{\n  // the answer\n  \"a\": [1,], /* trailing */\n}")
	var got shapeshift.Content
	if err := jsonfmt.Unmarshal(in, &got, nil); err == nil {
		t.Errorf("Unmarshal() of JSONC without AllowComments succeeded")
	}
	if err := jsonfmt.Unmarshal(in, &got, &jsonfmt.Config{AllowComments: true}); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := shapeshift.MapContent([]shapeshift.ContentEntry{
		{Key: shapeshift.StringContent("a"), Value: shapeshift.SeqContent([]shapeshift.Content{
			shapeshift.UintContent(shapeshift.KindU64, 1),
		})},
	})
	if !got.Equal(want) {
		t.Errorf("Unmarshal() = %s, want %s", got, want)
	}
}

func Test_UnmarshalErrors(t *testing.T) {
	var got shapeshift.Content

	err := jsonfmt.Unmarshal([]byte(`{"a":}`), &got, nil)
	var fe *shapeshift.FormatError
	if !errors.As(err, &fe) || fe.Format != "json" {
		t.Errorf("Unmarshal() error = %v, want *FormatError", err)
	}

	err = jsonfmt.Unmarshal([]byte(`1 2`), &got, nil)
	if err == nil {
		t.Errorf("Unmarshal() with trailing data succeeded")
	}

	err = jsonfmt.Unmarshal([]byte(`[1,2]`), shapeshift.DeserializeInto[shapeshift.ArrayOf[[3]int, int, shapeshift.Native[int]]](new([3]int)), nil)
	var mismatch *shapeshift.ErrLengthMismatch
	if !errors.As(err, &mismatch) || mismatch.Expected != 3 || mismatch.Actual != 2 {
		t.Errorf("Unmarshal() error = %v, want length mismatch", err)
	}

	err = jsonfmt.Unmarshal([]byte(`{"x":[true]}`), shapeshift.Into(&map[string][]int{}), nil)
	var pe *shapeshift.PathError
	if !errors.As(err, &pe) || strings.Join(pe.Path, ".") != "x.0" {
		t.Errorf("Unmarshal() error = %v, want an error at x.0", err)
	}
}

func Test_FloatsAndBytes(t *testing.T) {
	b, err := jsonfmt.Marshal(shapeshift.Value([]any{float32(0.1), 2.5, []byte{1, 2}}), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `[0.1,2.5,[1,2]]`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	_, err = jsonfmt.Marshal(shapeshift.FloatContent(shapeshift.KindF64, math.Inf(1)), nil)
	var custom *shapeshift.CustomError
	if !errors.As(err, &custom) {
		t.Errorf("Marshal() of +Inf: error = %v, want *CustomError", err)
	}
}

type settings struct {
	Name   string         `json:"name"`
	Values []sample.Value `json:"values"`
}

func Test_JSONOptions(t *testing.T) {
	in := settings{Name: "demo", Values: sample.Scenario()}
	opts := jsonfmt.JSONOptions[[]sample.Value, valueMap]()

	b, err := json.Marshal(in, opts)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"name":"demo","values":` + scenarioJSON + `}`
	if string(b) != want {
		t.Errorf("json.Marshal() = %s, want %s", b, want)
	}

	var out settings
	if err := json.Unmarshal(b, &out, opts); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out.Name != in.Name || len(out.Values) != len(in.Values) {
		t.Fatalf("json.Unmarshal() = %+v, want %+v", out, in)
	}
	for i := range in.Values {
		if out.Values[i] != in.Values[i] {
			t.Errorf("value %d = %s, want %s", i, out.Values[i], in.Values[i])
		}
	}
}

func Test_MarshalWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := jsonfmt.MarshalWrite(&buf, shapeshift.Value("x"), nil); err != nil {
		t.Fatalf("MarshalWrite() error = %v", err)
	}
	if got := buf.String(); got != "\"x\"\n" {
		t.Errorf("MarshalWrite() = %q, want %q", got, "\"x\"\n")
	}

	var got string
	if err := jsonfmt.UnmarshalRead(strings.NewReader(`"y"`), shapeshift.Into(&got), nil); err != nil {
		t.Fatalf("UnmarshalRead() error = %v", err)
	}
	if got != "y" {
		t.Errorf("UnmarshalRead() = %q, want %q", got, "y")
	}
}

func Example() {
	values := sample.Scenario()

	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[valueMap](&values), nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(b))

	var back []sample.Value
	if err := jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[valueMap](&back), nil); err != nil {
		panic(err)
	}
	fmt.Println(back)

	// Output:
	// {"Unit":null,"Tuple":[1,"Middle",false],"Struct":{"a":666,"b":"BBB","c":true}}
	// [Unit Tuple(1, "Middle", false) Struct{a: 666, b: "BBB", c: true}]
}
