package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// source reads typed values out of one raw row regardless of its format.
type source interface {
	label(c column) string
	// scalar returns the value as text; ok is false when absent or empty.
	scalar(c column) (s string, ok bool, err error)
	// list returns a cleaned list. split is used when the format carries
	// lists as delimited text.
	list(c column, split func(string) []string) ([]string, error)
}

func sourceOf(row RawRow) source {
	switch r := row.(type) {
	case TabularRow:
		cells := make(map[string]string, len(r.Cells))
		for h, v := range r.Cells {
			cells[fieldKey(h)] = v
		}
		return tabularSource{cells: cells}
	case JSONRow:
		fields := make(map[string]json.RawMessage, len(r.Fields))
		for k, v := range r.Fields {
			fields[fieldKey(k)] = v
		}
		return jsonSource{fields: fields}
	}
	return tabularSource{}
}

type tabularSource struct {
	cells map[string]string
}

func (tabularSource) label(c column) string { return c.header }

func (s tabularSource) scalar(c column) (string, bool, error) {
	v := strings.TrimSpace(s.cells[c.key()])
	return v, v != "", nil
}

func (s tabularSource) list(c column, split func(string) []string) ([]string, error) {
	return split(s.cells[c.key()]), nil
}

type jsonSource struct {
	fields map[string]json.RawMessage
}

func (jsonSource) label(c column) string { return c.json }

func (s jsonSource) scalar(c column) (string, bool, error) {
	raw := bytes.TrimSpace(s.fields[c.key()])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", false, fmt.Errorf("%s is not a valid string", c.json)
		}
		str = strings.TrimSpace(str)
		return str, str != "", nil
	case '[', '{':
		return "", false, fmt.Errorf("%s must be a single value", c.json)
	}
	// numbers and booleans keep their literal text
	return string(raw), true, nil
}

func (s jsonSource) list(c column, _ func(string) []string) ([]string, error) {
	raw := bytes.TrimSpace(s.fields[c.key()])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return clean(nil), nil
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%s must be an array", c.json)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s must be an array", c.json)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = bytes.TrimSpace(it)
		switch {
		case len(it) > 0 && it[0] == '"':
			var str string
			if err := json.Unmarshal(it, &str); err != nil {
				return nil, fmt.Errorf("%s contains an invalid string", c.json)
			}
			out = append(out, str)
		case len(it) > 0 && (it[0] == '[' || it[0] == '{'):
			return nil, fmt.Errorf("%s must contain only strings", c.json)
		default:
			// pincodes are often written as bare numbers
			out = append(out, string(it))
		}
	}
	return clean(out), nil
}
