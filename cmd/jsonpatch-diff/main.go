// Command jsonpatch-diff prints the RFC 6902 JSON Patch that turns one JSON or
// YAML document into another.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"

	jsonpatch "github.com/agentflare-ai/go-jsonpatch"
)

type options struct {
	source, target string
	input          string // auto, json or yaml
	format         string // json, pretty or yaml
	moves          bool
	stats          bool
	color          bool
}

func main() {
	var (
		app      = kingpin.New(filepath.Base(os.Args[0]), "Print the JSON Patch that turns SOURCE into TARGET.").DefaultEnvars()
		debug    = app.Flag("debug", "Enable debug logging").Short('d').Bool()
		input    = app.Flag("input", "Input document format.").Default("auto").Enum("auto", "json", "yaml")
		format   = app.Flag("format", "Output format.").Short('o').Default("json").Enum("json", "pretty", "yaml")
		noMoves  = app.Flag("no-moves", "Never emit move operations.").Bool()
		stats    = app.Flag("stats", "Print a summary of the diff to stderr.").Bool()
		color    = app.Flag("color", "Colorize pretty output.").Default("auto").Enum("auto", "always", "never")
		exitCode = app.Flag("exit-code", "Exit with status 1 when the documents differ.").Bool()
		source   = app.Arg("source", "Source document, or - for stdin.").Required().String()
		target   = app.Arg("target", "Target document, or - for stdin.").Required().String()
	)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logConfig := zap.NewProductionConfig()
	logConfig.Sampling = nil
	logConfig.Level.SetLevel(zap.InfoLevel)
	if *debug {
		logConfig.Level.SetLevel(zap.DebugLevel)
	}
	logger := zap.Must(logConfig.Build()).Named("jsonpatch-diff")
	defer logger.Sync() //nolint:errcheck // nothing useful to do with a failed flush

	o := options{
		source: *source,
		target: *target,
		input:  *input,
		format: *format,
		moves:  !*noMoves,
		stats:  *stats,
		color:  useColor(*color, os.Stdout),
	}

	changed, err := run(o, os.Stdin, os.Stdout, os.Stderr, logger)
	if err != nil {
		logger.Error("diff failed", zap.Error(err))
		os.Exit(2)
	}
	if changed && *exitCode {
		os.Exit(1)
	}
}

func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// run diffs the two documents named in o and writes the patch to stdout. It
// reports whether the documents differ.
func run(o options, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) (bool, error) {
	if o.source == "-" && o.target == "-" {
		return false, fmt.Errorf("only one of source and target can be read from stdin")
	}

	src, err := readDocument(o.source, o.input, stdin)
	if err != nil {
		return false, fmt.Errorf("failed to read source: %w", err)
	}
	dst, err := readDocument(o.target, o.input, stdin)
	if err != nil {
		return false, fmt.Errorf("failed to read target: %w", err)
	}

	st := &jsonpatch.Stats{}
	patch, err := jsonpatch.New(src, dst,
		jsonpatch.WithMoves(o.moves),
		jsonpatch.WithLogger(logger),
		jsonpatch.WithStats(st),
	)
	if err != nil {
		return false, err
	}
	logger.Debug("computed patch",
		zap.String("source", o.source),
		zap.String("target", o.target),
		zap.Int("operations", len(patch)),
		zap.Int("arrays", st.Arrays),
	)

	if err := writePatch(stdout, patch, o.format, o.color); err != nil {
		return false, fmt.Errorf("failed to write patch: %w", err)
	}
	if o.stats {
		if _, err := io.WriteString(stderr, jsonpatch.FormatStats(st, o.color)); err != nil {
			return false, err
		}
	}
	return len(patch) > 0, nil
}

func readDocument(name, input string, stdin io.Reader) (any, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	if input == "yaml" || (input == "auto" && isYAMLFile(name)) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		return stringKeys(doc)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return doc, nil
}

// stringKeys rewrites the map[any]any values yaml.v3 produces for mappings
// with non-string keys into JSON objects. Scalar keys take their YAML text
// form; null keys have no JSON equivalent and are rejected.
func stringKeys(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			conv, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			x[k] = conv
		}
		return x, nil
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			switch k.(type) {
			case string, bool, int, int64, uint64, float64:
			default:
				return nil, fmt.Errorf("unsupported YAML key %v (%T): object keys must be scalars", k, k)
			}
			key := fmt.Sprint(k)
			if _, dup := m[key]; dup {
				return nil, fmt.Errorf("YAML keys collide as %q once converted to strings", key)
			}
			conv, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			m[key] = conv
		}
		return m, nil
	case []any:
		for i, e := range x {
			conv, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			x[i] = conv
		}
		return x, nil
	default:
		return v, nil
	}
}

func isYAMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func writePatch(w io.Writer, patch jsonpatch.Patch, format string, color bool) error {
	switch format {
	case "pretty":
		return jsonpatch.FormatPretty(w, patch, color)
	case "yaml":
		// round-trip through JSON so the operations keep their RFC 6902 shape
		data, err := json.Marshal(patch)
		if err != nil {
			return err
		}
		var ops []any
		if err := json.Unmarshal(data, &ops); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ops); err != nil {
			return err
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(patch, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
}
