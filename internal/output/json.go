// Package output provides formatters for tz output: JSON, jq, Go templates,
// tables, CSV, and JSON Lines.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/itchyny/gojq"
)

// PrintJSON pretty-prints v as indented JSON to w.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Normalize round-trips v through encoding/json so that values with custom
// marshalers become the plain maps, slices, and scalars gojq and templates expect.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return out, nil
}

// FilterFields keeps only fields of each object in data. Non-object items
// pass through unchanged.
func FilterFields(data []any, fields []string) []any {
	if len(fields) == 0 {
		return data
	}
	result := make([]any, 0, len(data))
	for _, item := range data {
		result = append(result, FilterFieldsSingle(item, fields))
	}
	return result
}

// FilterFieldsSingle keeps only fields of data when it is an object.
func FilterFieldsSingle(data any, fields []string) any {
	obj, ok := data.(map[string]any)
	if !ok || len(fields) == 0 {
		return data
	}
	filtered := make(map[string]any, len(fields))
	for _, f := range fields {
		if val, ok := obj[f]; ok {
			filtered[f] = val
		}
	}
	return filtered
}

// ApplyJQ runs a jq expression against data and writes each result to w.
// data must already be normalized.
func ApplyJQ(w io.Writer, data any, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("parsing jq expression: %w", err)
	}

	iter := query.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq evaluation: %w", err)
		}
		if err := PrintJSON(w, v); err != nil {
			return fmt.Errorf("writing jq result: %w", err)
		}
	}
	return nil
}

// ApplyTemplate renders data through a Go text/template and writes to w.
func ApplyTemplate(w io.Writer, data any, tmpl string) error {
	t, err := template.New("").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	_, err = buf.WriteTo(w)
	return err
}
