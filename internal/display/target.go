package display

import (
	"errors"
	"fmt"
)

// ErrRowOutOfRange is returned by WriteRow for an index outside [0, RowCount).
var ErrRowOutOfRange = errors.New("row index out of range")

// Target is an output surface that the render dispatcher acquires once per
// render attempt.
type Target interface {
	// Name is used in logs and metrics.
	Name() string
	// Open acquires the device for one render pass.
	Open() (Session, error)
}

// Session is a scoped acquisition of a Target.
type Session interface {
	Clear() error
	WriteRow(index int, text Line) error
	Close() error
}

// Render clears s and writes all rows, stopping at the first error.
func Render(s Session, rows Rows) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	for i, row := range rows {
		if err := s.WriteRow(i, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

func checkRow(index int) error {
	if index < 0 || index >= RowCount {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	return nil
}
