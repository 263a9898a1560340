// shapeshift converts a document between JSON, YAML and CBOR.
//
// The input is captured into a format-independent value and replayed into
// the output format, so map order and repeated keys survive the
// conversion wherever the output format allows them.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dhoelle/shapeshift"
	"github.com/dhoelle/shapeshift/cborfmt"
	"github.com/dhoelle/shapeshift/jsonfmt"
	"github.com/dhoelle/shapeshift/yamlfmt"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	from            string
	to              string
	indent          int
	allowDuplicates bool
	allowComments   bool
	verbose         bool
	output          string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("shapeshift", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.from, "from", "f", "json", "input format: json, yaml or cbor")
	flagSet.StringVarP(&opts.to, "to", "t", "yaml", "output format: json, yaml, cbor or cbor-diag")
	flagSet.IntVar(&opts.indent, "indent", 0, "indentation width for JSON and YAML output (0: compact JSON, 2-space YAML)")
	flagSet.BoolVar(&opts.allowDuplicates, "allow-duplicates", false, "accept and emit repeated JSON object keys")
	flagSet.BoolVar(&opts.allowComments, "allow-comments", false, "accept comments and trailing commas in JSON input")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log conversion details to stderr")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write the result to this file instead of stdout")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		logger = newLogger(stderr)
		defer logger.Sync() //nolint:errcheck
	}
	shapeshift.SetLogger(logger)

	var input io.Reader = stdin
	switch rest := flagSet.Args(); len(rest) {
	case 0:
	case 1:
		f, err := os.Open(rest[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	default:
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	value, err := decode(data, &opts)
	if err != nil {
		return err
	}
	logger.Debug("captured input",
		zap.String("format", opts.from),
		zap.Int("bytes", len(data)),
		zap.Stringer("kind", value.Kind()),
	)

	out, err := encode(value, &opts)
	if err != nil {
		return err
	}
	logger.Debug("encoded output",
		zap.String("format", opts.to),
		zap.Int("bytes", len(out)),
	)

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = stdout.Write(out)
	return err
}

// newLogger returns a development logger writing to w.
func newLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

func (o *options) jsonConfig() *jsonfmt.Config {
	cfg := &jsonfmt.Config{
		AllowDuplicateNames: o.allowDuplicates,
		AllowComments:       o.allowComments,
	}
	if o.indent > 0 {
		cfg.Indent = strings.Repeat(" ", o.indent)
	}
	return cfg
}

func decode(data []byte, o *options) (shapeshift.Content, error) {
	var value shapeshift.Content
	var err error
	switch strings.ToLower(o.from) {
	case "json":
		err = jsonfmt.Unmarshal(data, &value, o.jsonConfig())
	case "yaml", "yml":
		err = yamlfmt.Unmarshal(data, &value, nil)
	case "cbor":
		err = cborfmt.Unmarshal(data, &value)
	default:
		return value, fmt.Errorf("unknown input format %q", o.from)
	}
	return value, err
}

func encode(value shapeshift.Content, o *options) ([]byte, error) {
	switch strings.ToLower(o.to) {
	case "json":
		var buf bytes.Buffer
		if err := jsonfmt.MarshalWrite(&buf, value, o.jsonConfig()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "yml":
		return yamlfmt.Marshal(value, &yamlfmt.Config{Indent: o.indent})
	case "cbor":
		return cborfmt.Marshal(value)
	case "cbor-diag":
		b, err := cborfmt.Marshal(value)
		if err != nil {
			return nil, err
		}
		diag, err := cborfmt.Diagnose(b)
		if err != nil {
			return nil, fmt.Errorf("failed to diagnose CBOR: %w", err)
		}
		return []byte(diag + "\n"), nil
	}
	return nil, fmt.Errorf("unknown output format %q", o.to)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `shapeshift converts a document between JSON, YAML and CBOR.

Usage:
  shapeshift [flags] [file]

Reads from stdin when no file is given.

Examples:
  # JSON to YAML
  shapeshift --from json --to yaml config.json

  # YAML to CBOR diagnostic notation
  shapeshift -f yaml -t cbor-diag < values.yaml

Flags:
`)
	flagSet.PrintDefaults()
}
