package shapeshift_test

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"testing"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/jsonfmt"
)

func Test_DisplayFromStr(t *testing.T) {
	n := 42
	c, err := shapeshift.ToContent(shapeshift.SerializeWith[shapeshift.DisplayFromStr[int]](&n))
	if err != nil {
		t.Fatalf("ToContent() error = %v", err)
	}
	if want := shapeshift.StringContent("42"); !c.Equal(want) {
		t.Errorf("ToContent() = %s, want %s", c, want)
	}

	var got int
	if err := shapeshift.DeserializeInto[shapeshift.DisplayFromStr[int]](&got).Deserialize(shapeshift.NewContentDeserializer(c)); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if got != n {
		t.Errorf("Deserialize() = %d, want %d", got, n)
	}
}

func Test_DisplayFromStrTextMarshaler(t *testing.T) {
	addr := netip.MustParseAddr("192.0.2.1")
	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[shapeshift.DisplayFromStr[netip.Addr]](&addr), nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `"192.0.2.1"`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var got netip.Addr
	if err := jsonfmt.Unmarshal(b, shapeshift.DeserializeInto[shapeshift.DisplayFromStr[netip.Addr]](&got), nil); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != addr {
		t.Errorf("Unmarshal() = %s, want %s", got, addr)
	}

	err = jsonfmt.Unmarshal([]byte(`"not an address"`), shapeshift.DeserializeInto[shapeshift.DisplayFromStr[netip.Addr]](&got), nil)
	var custom *shapeshift.CustomError
	if !errors.As(err, &custom) {
		t.Errorf("Unmarshal() error = %v, want *CustomError", err)
	}
}

func Test_DisplayFromStrErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		check func(error) bool
	}{
		{
			name: "not a number",
			in:   `"forty-two"`,
			check: func(err error) bool {
				return errors.Is(err, strconv.ErrSyntax)
			},
		},
		{
			name: "out of range",
			in:   `"300"`,
			check: func(err error) bool {
				return errors.Is(err, strconv.ErrRange)
			},
		},
		{
			name: "not a string",
			in:   `42`,
			check: func(err error) bool {
				var mismatch *shapeshift.ErrTypeMismatch
				return errors.As(err, &mismatch) && mismatch.Got == "u64"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int8
			err := jsonfmt.Unmarshal([]byte(tt.in), shapeshift.DeserializeInto[shapeshift.DisplayFromStr[int8]](&got), nil)
			if err == nil || !tt.check(err) {
				t.Errorf("Unmarshal() error = %v", err)
			}
		})
	}
}

func ExampleDisplayFromStr() {
	type ports = shapeshift.SliceOf[uint16, shapeshift.DisplayFromStr[uint16]]

	in := []uint16{80, 443}
	b, err := jsonfmt.Marshal(shapeshift.SerializeWith[ports](&in), nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(b))

	var out []uint16
	if err := jsonfmt.Unmarshal([]byte(`["8080","8443"]`), shapeshift.DeserializeInto[ports](&out), nil); err != nil {
		panic(err)
	}
	fmt.Println(out)

	// Output:
	// ["80","443"]
	// [8080 8443]
}
