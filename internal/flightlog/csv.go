package flightlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes a header row followed by one record per log row.
func WriteCSV(w io.Writer, l *Log) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(l.columns); err != nil {
		return err
	}

	record := make([]string, l.Cols())
	for i := 0; i < l.Len(); i++ {
		for j := range record {
			record[j] = strconv.FormatFloat(l.Value(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a log written by WriteCSV.
func ReadCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("flightlog: read header: %w", err)
	}
	if len(header) == 0 || header[0] != TimeColumn {
		return nil, fmt.Errorf("flightlog: first column must be %q", TimeColumn)
	}

	l := New(header[1:])
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("flightlog: line %d: %w", line, err)
		}

		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("flightlog: line %d column %s: %w", line, header[j], err)
			}
			values[j] = v
		}
		if err := l.Append(values[0], values[1:]); err != nil {
			return nil, fmt.Errorf("flightlog: line %d: %w", line, err)
		}
	}

	l.Freeze()
	return l, nil
}
