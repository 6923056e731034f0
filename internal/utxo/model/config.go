package model

import (
	"errors"
	"fmt"
)

// ErrUnknownOutputFormat is returned for output formats other than json and bin.
var ErrUnknownOutputFormat = errors.New("unknown output format")

// OutputFormat selects how matched records are written.
type OutputFormat string

var (
	// FormatJSON writes pretty-printed part-<N>.json files of bounded size.
	FormatJSON OutputFormat = "json"
	// FormatBinary writes every record into a single p2wsh-utxo.bin file.
	FormatBinary OutputFormat = "bin"
)

// ParseOutputFormat validates a user supplied output format.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case FormatJSON, FormatBinary:
		return OutputFormat(value), nil
	default:
		return "", fmt.Errorf("%w %q, use %q or %q", ErrUnknownOutputFormat, value, FormatJSON, FormatBinary)
	}
}

// Minimization controls whether identifying fields are kept in the output.
type Minimization int

const (
	// MinimizeRedacted drops txid and amount.
	MinimizeRedacted Minimization = iota
	// MinimizeFull keeps txid and amount.
	MinimizeFull
)

// ParseMinimization maps "full" to MinimizeFull; every other value redacts.
func ParseMinimization(value string) Minimization {
	if value == "full" {
		return MinimizeFull
	}
	return MinimizeRedacted
}

func (m Minimization) String() string {
	if m == MinimizeFull {
		return "full"
	}
	return "minimized"
}

// Enrich combines an indexed UTXO with the position of its transaction.
func (m Minimization) Enrich(utxo UtxoRecord, pos PositionRecord) UTXO {
	out := UTXO{
		BlockHeight:      utxo.Height,
		BlockIndex:       pos.Position,
		TransactionIndex: utxo.Vout,
	}
	if m == MinimizeFull {
		id := utxo.TxID
		amount := utxo.Amount
		out.ID = &id
		out.Amount = &amount
	}
	return out
}
