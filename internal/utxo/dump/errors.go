package dump

import (
	"errors"
	"fmt"
)

// ErrMalformedRow marks rows that cannot be mapped onto a record.
var ErrMalformedRow = errors.New("malformed row")

// RowError reports the line and column of a row that failed to parse.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}
