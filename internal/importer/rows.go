package importer

import (
	"fmt"

	"github.com/goccy/go-json"
)

// RawRow is one parsed record before normalization. It is either a
// TabularRow (CSV, XLSX) or a JSONRow.
type RawRow interface {
	// Label names the row in error messages.
	Label() string
	rawRow()
}

// TabularRow holds string cells keyed by the header text. Line counts the
// header as line 1, so the first data row is line 2.
type TabularRow struct {
	Line  int
	Cells map[string]string
}

func (r TabularRow) Label() string { return fmt.Sprintf("Row %d", r.Line) }
func (TabularRow) rawRow()         {}

// JSONRow holds undecoded values keyed by the object's property names.
// Index is zero-based.
type JSONRow struct {
	Index  int
	Fields map[string]json.RawMessage
}

func (r JSONRow) Label() string { return fmt.Sprintf("Row %d", r.Index+1) }
func (JSONRow) rawRow()         {}
