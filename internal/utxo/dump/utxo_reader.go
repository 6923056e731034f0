package dump

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

const (
	columnTxID   = "txid"
	columnVout   = "vout"
	columnHeight = "height"
	columnAmount = "amount"
)

const byteOrderMark = "\ufeff"

var errMissingColumn = errors.New("missing header column")

// UtxoReader reads a UTXO snapshot dump. The first row is a header naming at least
// the txid, vout, height and amount columns; other columns are ignored.
type UtxoReader struct {
	csv     *csvReader
	columns map[string]int
	width   int
}

// NewUtxoReader consumes the header row of r and returns a reader positioned on the first record.
func NewUtxoReader(r io.Reader) (*UtxoReader, error) {
	c := newCSVReader(r)
	header, err := c.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read utxo dump header: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read utxo dump header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnTxID, columnVout, columnHeight, columnAmount} {
		if _, ok := columns[required]; !ok {
			return nil, &RowError{Line: 1, Column: required, Err: errMissingColumn}
		}
	}

	return &UtxoReader{csv: c, columns: columns, width: len(header)}, nil
}

// Next returns the next record or io.EOF once the dump is exhausted.
func (r *UtxoReader) Next() (model.UtxoRecord, error) {
	row, err := r.csv.read()
	if err != nil {
		return model.UtxoRecord{}, err
	}
	if len(row) != r.width {
		return model.UtxoRecord{}, fieldCountError(r.csv.line, r.width, len(row))
	}

	vout, err := r.csv.uint16Field(columnVout, row[r.columns[columnVout]])
	if err != nil {
		return model.UtxoRecord{}, err
	}
	height, err := r.csv.uint32Field(columnHeight, row[r.columns[columnHeight]])
	if err != nil {
		return model.UtxoRecord{}, err
	}
	amount, err := r.csv.uintField(columnAmount, row[r.columns[columnAmount]])
	if err != nil {
		return model.UtxoRecord{}, err
	}

	return model.UtxoRecord{
		TxID:   strings.Clone(row[r.columns[columnTxID]]),
		Vout:   vout,
		Height: height,
		Amount: amount,
	}, nil
}
