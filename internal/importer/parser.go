package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// Parse reads r in the given format and returns its rows in file order.
// A file that cannot be read yields a single ParseFailure (or InvalidFormat
// for JSON that is not an array of objects) and no rows.
func Parse(format Format, r io.Reader) ([]RawRow, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON:
		return parseJSON(r)
	case FormatXLSX:
		return parseXLSX(r)
	}
	return nil, formatErr("unsupported import format %q", format)
}

func parseCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErr(err, "malformed CSV")
		}
		records = append(records, rec)
	}
	return tabular(records)
}

func parseXLSX(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseErr(err, "malformed spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErr(nil, "spreadsheet has no worksheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseErr(err, "read worksheet %q", sheets[0])
	}
	return tabular(records)
}

// tabular turns header + records into rows. Blank records are skipped and
// do not advance the line count.
func tabular(records [][]string) ([]RawRow, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, parseErr(nil, "file has no header row")
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []RawRow
	line := 1
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		line++
		cells := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				cells[h] = strings.TrimSpace(rec[i])
			} else {
				cells[h] = ""
			}
		}
		rows = append(rows, TabularRow{Line: line, Cells: cells})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseJSON(r io.Reader) ([]RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, parseErr(err, "read JSON")
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\ufeff")))
	if len(data) == 0 || data[0] != '[' {
		return nil, formatErr("JSON import must be an array of product objects")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, parseErr(err, "malformed JSON")
	}

	rows := make([]RawRow, 0, len(elems))
	for i, el := range elems {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			return nil, formatErr("JSON element %d is not an object", i+1)
		}
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(el, &fields); err != nil {
			return nil, parseErr(err, "malformed JSON object %d", i+1)
		}
		rows = append(rows, JSONRow{Index: i, Fields: fields})
	}
	return rows, nil
}
