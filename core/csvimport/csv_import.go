/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package csvimport reads CSV files into typed records. Each column is
// detected as bool, number, datetime or string from a sample of its cells.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/values"
)

var (
	// ErrEmpty is returned for input without any record.
	ErrEmpty = errors.New("csv file is empty")
	// ErrNoRows is returned for input with a header but no data rows.
	ErrNoRows = errors.New("csv file has no data rows")
	// ErrUnknownIDColumn is returned when ImportOptions.IDColumn names no column.
	ErrUnknownIDColumn = errors.New("id column not found")
)

// Record is one imported row keyed by column id. Cells hold float64,
// bool, time.Time or string values; empty cells are nil.
type Record map[string]any

// ColumnSource overrides how one column is imported.
type ColumnSource struct {
	// Name is the column id (defaults to the header).
	Name string
	// DisplayName is the column header (defaults to the header).
	DisplayName string
	// Kind forces the column type. KindAuto detects it from the data.
	Kind values.Kind
}

// ImportOptions configures CSV import behavior.
type ImportOptions struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma).
	Delimiter rune
	// ColumnSources configures specific columns by header name.
	ColumnSources map[string]ColumnSource
	// SampleSize is the number of rows sampled for type detection.
	SampleSize int
	// IDColumn names the column holding stable row ids. When empty, rows
	// are identified by position.
	IDColumn string
	// Location is used for datetimes without a zone. Defaults to UTC.
	Location *time.Location
}

// DefaultOptions returns default import options.
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader:     true,
		Delimiter:     ',',
		ColumnSources: make(map[string]ColumnSource),
		SampleSize:    100,
	}
}

// Field describes one imported column.
type Field struct {
	ID     string      `json:"id"`
	Header string      `json:"header"`
	Kind   values.Kind `json:"kind"`
}

// Dataset is the result of an import.
type Dataset struct {
	Name    string
	Fields  []Field
	Records []Record

	idColumn string
}

// NewDataset creates a dataset from records built in code. idColumn may be
// empty, in which case rows are identified by position.
func NewDataset(name string, fields []Field, records []Record, idColumn string) *Dataset {
	return &Dataset{Name: name, Fields: fields, Records: records, idColumn: idColumn}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Field returns the field with the given id.
func (d *Dataset) Field(id string) (Field, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// RowID identifies a record by its id column, or by position when the
// dataset has none.
func (d *Dataset) RowID(r Record, index int) string {
	if d.idColumn != "" {
		if v := r[d.idColumn]; v != nil {
			return values.Text(v)
		}
	}
	return strconv.Itoa(index)
}

// Columns returns one column declaration per field. The filter variant is
// suggested from the field kind and the cardinality of its values.
func (d *Dataset) Columns() []columns.Column[Record] {
	out := make([]columns.Column[Record], 0, len(d.Fields))
	for _, f := range d.Fields {
		id := f.ID
		col := columns.Column[Record]{
			ID:       id,
			Header:   f.Header,
			Kind:     f.Kind,
			Accessor: func(r Record) any { return r[id] },
		}
		col.FilterVariant = filtering.SuggestVariant(f.Kind, filtering.Facets(d.Records, &col, nil))
		out = append(out, col)
	}
	return out
}

// ImportFromFile imports a CSV file. The dataset is named after the file.
func ImportFromFile(path string, options ImportOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ds, err := ImportFromReader(file, options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ds, nil
}

// ImportFromReader imports CSV data from an io.Reader.
func ImportFromReader(reader io.Reader, options ImportOptions) (*Dataset, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	var headers []string
	var dataRows [][]string
	if options.HasHeader {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
		dataRows = records
	}
	if len(dataRows) == 0 {
		return nil, ErrNoRows
	}

	sampleSize := options.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	loc := options.Location
	if loc == nil {
		loc = time.UTC
	}

	ds := &Dataset{Fields: make([]Field, len(headers))}
	for i, header := range headers {
		header = strings.TrimSpace(header)
		src := options.ColumnSources[header]
		f := Field{ID: header, Header: header, Kind: src.Kind}
		if src.Name != "" {
			f.ID = src.Name
		}
		if src.DisplayName != "" {
			f.Header = src.DisplayName
		}
		if f.Kind == values.KindAuto {
			f.Kind = detectKind(dataRows, i, sampleSize, loc)
		}
		ds.Fields[i] = f
	}

	if options.IDColumn != "" {
		if _, ok := ds.Field(options.IDColumn); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIDColumn, options.IDColumn)
		}
		ds.idColumn = options.IDColumn
	}

	ds.Records = make([]Record, len(dataRows))
	for r, row := range dataRows {
		rec := make(Record, len(ds.Fields))
		for i, f := range ds.Fields {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			rec[f.ID] = parseCell(value, f.Kind, loc)
		}
		ds.Records[r] = rec
	}
	return ds, nil
}

// parseCell converts a cell to the field kind. Cells that fail to parse
// are kept as strings so they still render and sort last.
func parseCell(value string, kind values.Kind, loc *time.Location) any {
	if value == "" {
		return nil
	}
	switch kind {
	case values.KindNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case values.KindBool:
		if b, ok := values.ParseBool(value); ok {
			return b
		}
	case values.KindDate:
		if t, err := values.ParseDatetime(value, loc); err == nil && !t.IsZero() {
			return t
		}
	}
	return value
}

// detectKind samples a column. A kind is chosen only when every non-empty
// sampled cell parses as it; numbers win over bools so 0/1 columns stay
// numeric.
func detectKind(dataRows [][]string, col, sampleSize int, loc *time.Location) values.Kind {
	isNumber, isBool, isDate := true, true, true
	hasNonEmpty := false

	for j := 0; j < min(sampleSize, len(dataRows)); j++ {
		if col >= len(dataRows[j]) {
			continue
		}
		value := strings.TrimSpace(dataRows[j][col])
		if value == "" {
			continue
		}
		hasNonEmpty = true

		if isNumber {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				isNumber = false
			}
		}
		if isBool {
			if _, ok := values.ParseBool(value); !ok {
				isBool = false
			}
		}
		if isDate {
			if _, err := strconv.ParseFloat(value, 64); err == nil {
				isDate = false
			} else if _, err := values.ParseDatetime(value, loc); err != nil {
				isDate = false
			}
		}
		if !isNumber && !isBool && !isDate {
			break
		}
	}

	switch {
	case !hasNonEmpty:
		return values.KindString
	case isNumber:
		return values.KindNumber
	case isBool:
		return values.KindBool
	case isDate:
		return values.KindDate
	default:
		return values.KindString
	}
}
