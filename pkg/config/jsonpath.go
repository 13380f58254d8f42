package config

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// CompiledPath is a parsed JSONPath expression, built once at config load
// time and reused across every transaction the remapper processes, rather
// than per-marketplace generated code or repeated re-parsing.
type CompiledPath struct {
	raw  string
	path jsonpath.Path
}

// CompilePath parses a JSONPath string. A failure to construct any
// configured JSONPath at startup is treated as fatal, before the pipeline
// ever starts processing batches.
func CompilePath(raw string) (*CompiledPath, error) {
	p, err := jsonpath.New(raw)
	if err != nil {
		return nil, fmt.Errorf("config: invalid jsonpath %q: %w", raw, err)
	}
	return &CompiledPath{raw: raw, path: p}, nil
}

func (c *CompiledPath) String() string { return c.raw }

// Extract evaluates the path against a decoded JSON document (map[string]any
// or []any, as produced by encoding/json) and returns its string form. The
// second return is false when the path yields nothing, which callers must
// treat as "silently absent", never as an error.
func (c *CompiledPath) Extract(doc interface{}) (string, bool) {
	v, err := c.path(context.Background(), doc)
	if err != nil {
		return "", false
	}
	return stringify(v)
}

// stringify renders a JSONPath result as the plain string set_field
// expects. Numbers are rendered without scientific notation or a
// superfluous ".0" suffix so that downstream integer/timestamp parsing
// works on the common case of a JSON number field.
func stringify(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return fmt.Sprintf("%v", t), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}
