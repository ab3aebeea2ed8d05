package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/oxhq/stottr/internal/column"
)

// loadCSVTable reads a CSV file (header row + data rows) into a column
// batch, guessing an int64/float64/string physical type per column: int64
// when every non-empty cell parses as an integer, else float64 when every one
// parses as a float, else string. An empty cell becomes a nil row.
func loadCSVTable(path string) (*column.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return column.New(0), nil
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*column.Column, len(header))
	for i, name := range header {
		vals := make([]any, len(rows))
		for r, row := range rows {
			if i < len(row) && row[i] != "" {
				vals[r] = row[i]
			}
		}
		cols[i] = &column.Column{Name: name, Values: coerceColumn(vals)}
	}
	return column.FromColumns(cols...)
}

// coerceColumn converts a column of string cells to int64 or float64 when
// every non-nil value parses cleanly, else leaves it as strings.
func coerceColumn(vals []any) []any {
	allInt, allFloat, sawString := true, true, false
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		sawString = true
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allFloat = false
		}
	}
	if !sawString {
		return vals
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			out[i] = v
			continue
		}
		switch {
		case allInt:
			n, _ := strconv.ParseInt(s, 10, 64)
			out[i] = n
		case allFloat:
			n, _ := strconv.ParseFloat(s, 64)
			out[i] = n
		default:
			out[i] = s
		}
	}
	return out
}
