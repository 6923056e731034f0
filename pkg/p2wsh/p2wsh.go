// Package p2wsh embeds a set of unspent P2WSH outputs located by block height,
// in-block position and output index.
//
// The embedded p2wsh-utxo.bin is currently a small placeholder fixture, not a chain
// snapshot. Replace it with the output of
// `scid-join <utxo_dump> <position_dump> bin minimized <dir>` to ship real data.
// A real export may also be stale: outputs might have been spent or created since.
package p2wsh

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/codec"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

// UTXO is an unspent output of the snapshot. ID and Amount are nil because the
// snapshot was generated with minimized data.
type UTXO = model.UTXO

//go:embed p2wsh-utxo.bin
var snapshot []byte

var decodeOnce = sync.OnceValues(func() ([]UTXO, error) {
	utxos, err := codec.Unmarshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("decode embedded p2wsh snapshot: %w", err)
	}
	return utxos, nil
})

// Results returns a copy of the snapshot. It is decoded on first use.
func Results() ([]UTXO, error) {
	utxos, err := decodeOnce()
	if err != nil {
		return nil, err
	}
	return clone(utxos), nil
}

// MustResults is like Results but panics if the snapshot cannot be decoded.
func MustResults() []UTXO {
	utxos, err := Results()
	if err != nil {
		panic(err)
	}
	return utxos
}

func clone(utxos []UTXO) []UTXO {
	out := make([]UTXO, len(utxos))
	for i, u := range utxos {
		out[i] = u.Clone()
	}
	return out
}
