// Package jsonfmt reads and writes shapeshift values as JSON, using the
// token-level API of [github.com/go-json-experiment/json/jsontext].
//
// [github.com/go-json-experiment/json/jsontext]: https://pkg.go.dev/github.com/go-json-experiment/json/jsontext
package jsonfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dhoelle/shapeshift"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/jsonc"
)

type Config struct {
	// Indent, if set, expands the output over multiple lines, indenting
	// nested values with Indent.
	Indent string

	// By default, objects with repeated member names are rejected, both
	// when reading and when writing. This matters for shapeshift.EnumMap
	// values holding the same variant twice.
	AllowDuplicateNames bool

	// AllowComments accepts JSON with comments and trailing commas (JSONC)
	// when reading.
	AllowComments bool

	// Options are passed to the underlying jsontext.Encoder and
	// jsontext.Decoder after the options derived from the fields above.
	Options []jsontext.Options
}

func (c *Config) options() []jsontext.Options {
	if c == nil {
		c = &Config{}
	}
	opts := []jsontext.Options{jsontext.AllowDuplicateNames(c.AllowDuplicateNames)}
	if c.Indent != "" {
		opts = append(opts, jsontext.WithIndent(c.Indent))
	}
	return append(opts, c.Options...)
}

// Marshal returns the JSON encoding of v.
func Marshal(v shapeshift.Serializable, cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := MarshalWrite(&buf, v, cfg); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalWrite writes the JSON encoding of v to w, followed by a newline.
func MarshalWrite(w io.Writer, v shapeshift.Serializable, cfg *Config) error {
	enc := jsontext.NewEncoder(w, cfg.options()...)
	if err := v.Serialize(NewSerializer(enc)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Unmarshal decodes exactly one JSON value from data into dst.
func Unmarshal(data []byte, dst shapeshift.Deserializable, cfg *Config) error {
	if cfg != nil && cfg.AllowComments {
		data = jsonc.ToJSON(data)
	}
	return decode(bytes.NewReader(data), dst, cfg)
}

// UnmarshalRead decodes exactly one JSON value from r into dst.
func UnmarshalRead(r io.Reader, dst shapeshift.Deserializable, cfg *Config) error {
	if cfg != nil && cfg.AllowComments {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read JSON: %w", err)
		}
		return Unmarshal(data, dst, cfg)
	}
	return decode(r, dst, cfg)
}

func decode(r io.Reader, dst shapeshift.Deserializable, cfg *Config) error {
	dec := jsontext.NewDecoder(r, cfg.options()...)
	d := NewDeserializer(dec)
	if err := dst.Deserialize(d); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return fmt.Errorf("failed to decode JSON: %w", d.fail(err))
	}
	return nil
}
