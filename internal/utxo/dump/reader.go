// Package dump reads the delimited-text dumps the join consumes.
package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goodnatureofminers/p2wsh-utxo/pkg/safe"
)

// csvReader wraps encoding/csv and converts its failures into RowErrors.
type csvReader struct {
	r    *csv.Reader
	line int
}

func newCSVReader(r io.Reader) *csvReader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return &csvReader{r: cr}
}

func (c *csvReader) read() ([]string, error) {
	row, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, &RowError{Line: perr.Line, Err: perr.Err}
		}
		return nil, err
	}
	c.line, _ = c.r.FieldPos(0)
	return row, nil
}

func (c *csvReader) uint16Field(column, value string) (uint16, error) {
	v, err := c.uintField(column, value)
	if err != nil {
		return 0, err
	}
	out, err := safe.Uint16(v)
	if err != nil {
		return 0, &RowError{Line: c.line, Column: column, Err: err}
	}
	return out, nil
}

func (c *csvReader) uint32Field(column, value string) (uint32, error) {
	v, err := c.uintField(column, value)
	if err != nil {
		return 0, err
	}
	out, err := safe.Uint32(v)
	if err != nil {
		return 0, &RowError{Line: c.line, Column: column, Err: err}
	}
	return out, nil
}

func (c *csvReader) uintField(column, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &RowError{Line: c.line, Column: column, Err: err}
	}
	return v, nil
}

func fieldCountError(line, want, got int) error {
	return &RowError{Line: line, Err: fmt.Errorf("expected %d fields, got %d", want, got)}
}
