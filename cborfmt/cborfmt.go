// Package cborfmt reads and writes shapeshift values as CBOR (RFC 8949).
//
// Scalars are encoded with Core Deterministic Encoding: smallest integer
// and float encodings, no indefinite-length items. Arrays and maps are
// written with definite lengths and keep their element order, so map
// keys are not sorted and may repeat.
package cborfmt

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/dhoelle/shapeshift"
	"github.com/fxamacker/cbor/v2"
)

// encMode encodes scalars with Core Deterministic Encoding (RFC 8949 §4.2).
var encMode cbor.EncMode

// decMode decodes scalars. Tagged values decoded into any produce
// map[string]any rather than map[any]any for nested maps.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborfmt: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cborfmt: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal returns the CBOR encoding of v.
func Marshal(v shapeshift.Serializable) ([]byte, error) {
	s := NewSerializer()
	if err := v.Serialize(s); err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return s.Bytes(), nil
}

// MarshalWrite writes the CBOR encoding of v to w.
func MarshalWrite(w io.Writer, v shapeshift.Serializable) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write CBOR: %w", err)
	}
	return nil
}

// Unmarshal decodes exactly one CBOR data item from data into dst.
func Unmarshal(data []byte, dst shapeshift.Deserializable) error {
	d := NewDeserializer(data)
	if err := dst.Deserialize(d); err != nil {
		return fmt.Errorf("failed to decode CBOR: %w", err)
	}
	if rest := d.Rest(); len(rest) > 0 {
		return fmt.Errorf("failed to decode CBOR: %w",
			d.fail(fmt.Errorf("%d bytes of trailing data", len(rest))))
	}
	return nil
}

// UnmarshalRead decodes exactly one CBOR data item read from r into dst.
func UnmarshalRead(r io.Reader, dst shapeshift.Deserializable) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return fmt.Errorf("failed to read CBOR: %w", err)
	}
	return Unmarshal(buf.Bytes(), dst)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
