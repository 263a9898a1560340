// Package yamlfmt reads and writes shapeshift values as YAML documents,
// going through [gopkg.in/yaml.v3] node trees.
//
// Mappings keep their order and repeated keys are accepted in both
// directions.
package yamlfmt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dhoelle/shapeshift"
	"gopkg.in/yaml.v3"
)

const defaultIndent = 2

type Config struct {
	// Indent is the number of spaces used per nesting level. Defaults
	// to 2.
	Indent int
}

func (c *Config) indent() int {
	if c == nil || c.Indent <= 0 {
		return defaultIndent
	}
	return c.Indent
}

// Marshal returns the YAML encoding of v.
func Marshal(v shapeshift.Serializable, cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := MarshalWrite(&buf, v, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalWrite writes the YAML encoding of v to w as a single document.
func MarshalWrite(w io.Writer, v shapeshift.Serializable, cfg *Config) error {
	var n yaml.Node
	if err := v.Serialize(NewSerializer(&n)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(cfg.indent())
	if err := enc.Encode(&n); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Unmarshal decodes the first YAML document in data into dst. An empty
// document reads as null.
func Unmarshal(data []byte, dst shapeshift.Deserializable, _ *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode YAML: %w", &shapeshift.FormatError{Format: "yaml", Offset: -1, Err: err})
	}
	if err := dst.Deserialize(NewDeserializer(&doc)); err != nil {
		return fmt.Errorf("failed to decode YAML: %w", err)
	}
	return nil
}

// UnmarshalRead decodes the first YAML document read from r into dst.
func UnmarshalRead(r io.Reader, dst shapeshift.Deserializable, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read YAML: %w", err)
	}
	return Unmarshal(data, dst, cfg)
}
