// Package codec implements the binary encoding of UTXO sequences.
//
// A sequence is a CBOR array (core deterministic encoding) whose length prefixes the
// records. Each record is a fixed-order array of five items: block height, txid,
// block index, transaction index and amount. Absent txid or amount is encoded as
// CBOR null, so presence survives a round trip.
package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

type wireUTXO struct {
	_                struct{} `cbor:",toarray"`
	BlockHeight      uint32
	ID               *string
	BlockIndex       uint16
	TransactionIndex uint16
	Amount           *uint64
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode writes utxos to w as one length-prefixed sequence.
func Encode(w io.Writer, utxos []model.UTXO) error {
	if err := encMode.NewEncoder(w).Encode(toWire(utxos)); err != nil {
		return fmt.Errorf("encode %d utxos: %w", len(utxos), err)
	}
	return nil
}

// Marshal returns the encoding of utxos.
func Marshal(utxos []model.UTXO) ([]byte, error) {
	data, err := encMode.Marshal(toWire(utxos))
	if err != nil {
		return nil, fmt.Errorf("encode %d utxos: %w", len(utxos), err)
	}
	return data, nil
}

// Decode reads one sequence from r.
func Decode(r io.Reader) ([]model.UTXO, error) {
	var wire []wireUTXO
	if err := decMode.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode utxos: %w", err)
	}
	return fromWire(wire), nil
}

// Unmarshal decodes data, which must hold exactly one sequence.
func Unmarshal(data []byte) ([]model.UTXO, error) {
	var wire []wireUTXO
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode utxos: %w", err)
	}
	return fromWire(wire), nil
}

func toWire(utxos []model.UTXO) []wireUTXO {
	wire := make([]wireUTXO, len(utxos))
	for i, u := range utxos {
		wire[i] = wireUTXO{
			BlockHeight:      u.BlockHeight,
			ID:               u.ID,
			BlockIndex:       u.BlockIndex,
			TransactionIndex: u.TransactionIndex,
			Amount:           u.Amount,
		}
	}
	return wire
}

func fromWire(wire []wireUTXO) []model.UTXO {
	utxos := make([]model.UTXO, len(wire))
	for i, w := range wire {
		utxos[i] = model.UTXO{
			BlockHeight:      w.BlockHeight,
			ID:               w.ID,
			BlockIndex:       w.BlockIndex,
			TransactionIndex: w.TransactionIndex,
			Amount:           w.Amount,
		}
	}
	return utxos
}
