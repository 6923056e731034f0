// Package scid packs UTXO coordinates into lightning-style short channel ids.
package scid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxVoutIndex is the largest output index that fits the 2 bytes reserved for it.
	MaxVoutIndex uint64 = 0xffff
	// MaxPosition is the largest in-block position that fits the 3 bytes reserved for it.
	MaxPosition uint64 = 0xffffff

	blockShift    = 40
	positionShift = 16
)

var errMalformed = errors.New("malformed short channel id")

// ShortChannelID is a block height, in-block position and output index packed into one integer.
type ShortChannelID uint64

// Encode packs block height, in-block position and output index.
// Inputs are not range checked; callers keep them within their field widths.
func Encode(block, position, vout uint64) uint64 {
	return (block << blockShift) | (position << positionShift) | vout
}

// Decode splits a packed id back into block height, in-block position and output index.
func Decode(id uint64) (block, position, vout uint64) {
	return id >> blockShift, (id >> positionShift) & MaxPosition, id & MaxVoutIndex
}

// New builds a ShortChannelID from its parts.
func New(block, position, vout uint64) ShortChannelID {
	return ShortChannelID(Encode(block, position, vout))
}

func (s ShortChannelID) Block() uint64 {
	b, _, _ := Decode(uint64(s))
	return b
}

func (s ShortChannelID) Position() uint64 {
	_, p, _ := Decode(uint64(s))
	return p
}

func (s ShortChannelID) Vout() uint64 {
	_, _, v := Decode(uint64(s))
	return v
}

// String renders the id in the BLOCKxPOSITIONxVOUT form used by lightning tooling.
func (s ShortChannelID) String() string {
	b, p, v := Decode(uint64(s))
	return fmt.Sprintf("%dx%dx%d", b, p, v)
}

// Parse reads the BLOCKxPOSITIONxVOUT form.
func Parse(value string) (ShortChannelID, error) {
	parts := strings.Split(value, "x")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w %q", errMalformed, value)
	}
	block, err := strconv.ParseUint(parts[0], 10, 24)
	if err != nil {
		return 0, fmt.Errorf("%w %q: block: %w", errMalformed, value, err)
	}
	position, err := strconv.ParseUint(parts[1], 10, 24)
	if err != nil {
		return 0, fmt.Errorf("%w %q: position: %w", errMalformed, value, err)
	}
	vout, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w %q: vout: %w", errMalformed, value, err)
	}
	return New(block, position, vout), nil
}
