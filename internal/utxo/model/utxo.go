// Package model defines domain models for the UTXO scid join.
package model

import "github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/scid"

// UtxoRecord is one unspent output read from the UTXO snapshot dump.
type UtxoRecord struct {
	TxID   string
	Vout   uint16
	Height uint32
	Amount uint64
}

// PositionRecord maps a transaction to its position inside the containing block.
type PositionRecord struct {
	TxID     string
	Position uint16
}

// UTXO is an unspent output located by block height, in-block position and output index.
// ID and Amount are nil when the results were generated with minimized data.
type UTXO struct {
	BlockHeight      uint32  `json:"block_height"`
	ID               *string `json:"id,omitempty"`
	BlockIndex       uint16  `json:"block_index"`
	TransactionIndex uint16  `json:"transaction_index"`
	Amount           *uint64 `json:"amount,omitempty"`
}

// SCID returns the short channel id the output would have if it funded a lightning channel.
func (u UTXO) SCID() uint64 {
	return scid.Encode(uint64(u.BlockHeight), uint64(u.BlockIndex), uint64(u.TransactionIndex))
}

// Clone returns a copy that shares no pointers with u.
func (u UTXO) Clone() UTXO {
	if u.ID != nil {
		id := *u.ID
		u.ID = &id
	}
	if u.Amount != nil {
		amount := *u.Amount
		u.Amount = &amount
	}
	return u
}
