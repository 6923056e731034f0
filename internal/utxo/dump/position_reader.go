package dump

import (
	"io"
	"strings"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

const positionFields = 2

// PositionReader reads a headerless txid,position dump.
type PositionReader struct {
	csv *csvReader
}

func NewPositionReader(r io.Reader) *PositionReader {
	return &PositionReader{csv: newCSVReader(r)}
}

// Next returns the next record or io.EOF once the dump is exhausted.
func (r *PositionReader) Next() (model.PositionRecord, error) {
	row, err := r.csv.read()
	if err != nil {
		return model.PositionRecord{}, err
	}
	if len(row) != positionFields {
		return model.PositionRecord{}, fieldCountError(r.csv.line, positionFields, len(row))
	}

	position, err := r.csv.uint16Field("position", row[1])
	if err != nil {
		return model.PositionRecord{}, err
	}
	return model.PositionRecord{
		TxID:     strings.Clone(row[0]),
		Position: position,
	}, nil
}
