// Package display holds the 4x20 text surface the clock renders to and the
// two targets that implement it: an HD44780 character LCD on I2C and a
// terminal session.
package display

import (
	"unicode/utf8"
)

// Geometry of every render target.
const (
	RowCount = 4
	Columns  = 20
)

// Line is a row of text that never exceeds Columns runes. The only way to
// build one from arbitrary text is NewLine, which truncates.
type Line string

// NewLine truncates s to Columns runes.
func NewLine(s string) Line {
	if utf8.RuneCountInString(s) <= Columns {
		return Line(s)
	}
	n := 0
	for i := range s {
		if n == Columns {
			return Line(s[:i])
		}
		n++
	}
	return Line(s)
}

func (l Line) String() string {
	return string(l)
}

// Rows is one full screen.
type Rows [RowCount]Line

// NewRows builds Rows from up to RowCount strings; missing rows are empty
// and extra ones are dropped.
func NewRows(lines ...string) Rows {
	var r Rows
	for i := 0; i < RowCount && i < len(lines); i++ {
		r[i] = NewLine(lines[i])
	}
	return r
}

// Strings returns the rows as plain strings.
func (r Rows) Strings() []string {
	out := make([]string, RowCount)
	for i, l := range r {
		out[i] = string(l)
	}
	return out
}
