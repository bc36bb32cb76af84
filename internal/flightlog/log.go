// Package flightlog holds the tabular time series produced by a flight
// simulation. Column 0 is always time.
package flightlog

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const TimeColumn = "time"

// ErrFrozen is returned when appending to a log that has been handed out.
var ErrFrozen = errors.New("flightlog: log is frozen")

// Log is a row-major table of accepted steps. The driver owns a log while
// a run is in progress and only appends; it freezes the log before
// returning it, after which Append fails with ErrFrozen.
type Log struct {
	columns []string
	data    []float64
	rows    int
	frozen  bool
}

// New creates an empty log with the given model columns. The time column
// is prepended.
func New(columns []string) *Log {
	cols := make([]string, 0, len(columns)+1)
	cols = append(cols, TimeColumn)
	cols = append(cols, columns...)
	return &Log{columns: cols}
}

// Append adds one row. values holds everything but the time column.
func (l *Log) Append(t float64, values []float64) error {
	if l.frozen {
		return ErrFrozen
	}
	if len(values)+1 != len(l.columns) {
		return fmt.Errorf("flightlog: row has %d values, want %d", len(values), len(l.columns)-1)
	}
	l.data = append(l.data, t)
	l.data = append(l.data, values...)
	l.rows++
	return nil
}

// Freeze makes the log read-only. It is idempotent.
func (l *Log) Freeze() { l.frozen = true }

func (l *Log) Frozen() bool { return l.frozen }

func (l *Log) Len() int  { return l.rows }
func (l *Log) Cols() int { return len(l.columns) }

func (l *Log) Columns() []string {
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

// Column returns the index of the named column.
func (l *Log) Column(name string) (int, bool) {
	for i, c := range l.columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

func (l *Log) Value(row, col int) float64 {
	return l.data[row*len(l.columns)+col]
}

func (l *Log) Time(row int) float64 {
	return l.Value(row, 0)
}

// Row returns a copy of row i.
func (l *Log) Row(i int) []float64 {
	n := len(l.columns)
	out := make([]float64, n)
	copy(out, l.data[i*n:(i+1)*n])
	return out
}

// Series returns a copy of one column over all rows.
func (l *Log) Series(col int) []float64 {
	out := make([]float64, l.rows)
	for i := range out {
		out[i] = l.Value(i, col)
	}
	return out
}

// Named returns the series of the named column, or nil if it does not exist.
func (l *Log) Named(name string) []float64 {
	col, ok := l.Column(name)
	if !ok {
		return nil
	}
	return l.Series(col)
}

// MaxAltitude is the largest value of the altitude column, NaN for an
// empty log or a log without altitude.
func (l *Log) MaxAltitude() float64 {
	alt := l.Named("altitude")
	if len(alt) == 0 {
		return math.NaN()
	}
	return floats.Max(alt)
}
