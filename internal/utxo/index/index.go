// Package index groups the UTXO snapshot by transaction id.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dolthub/swiss"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

const defaultCapacity = 1024 * 1024

// UtxoSource yields snapshot records until io.EOF.
type UtxoSource interface {
	Next() (model.UtxoRecord, error)
}

// Builder accumulates records before the index is sealed.
type Builder struct {
	m       *swiss.Map[string, []model.UtxoRecord]
	records int
}

// NewBuilder returns an empty Builder. capacity is a sizing hint; zero picks a default.
func NewBuilder(capacity uint32) *Builder {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	return &Builder{m: swiss.NewMap[string, []model.UtxoRecord](capacity)}
}

// Add appends rec to the group of its txid, keeping insertion order and duplicates.
func (b *Builder) Add(rec model.UtxoRecord) {
	if b.m == nil {
		panic("index: Add on a built index")
	}
	group, _ := b.m.Get(rec.TxID)
	b.m.Put(rec.TxID, append(group, rec))
	b.records++
}

// Build seals the builder into an Index. The builder cannot be used afterwards.
func (b *Builder) Build() *Index {
	if b.m == nil {
		panic("index: Build called twice")
	}
	idx := &Index{m: b.m, records: b.records}
	b.m = nil
	b.records = 0
	return idx
}

// Index is a read-only txid to UTXO grouping.
type Index struct {
	m       *swiss.Map[string, []model.UtxoRecord]
	records int
}

// Lookup returns the UTXOs of txid in insertion order. A hit is never empty.
// The returned slice must not be modified.
func (i *Index) Lookup(txid string) ([]model.UtxoRecord, bool) {
	return i.m.Get(txid)
}

// Len returns the number of distinct transaction ids.
func (i *Index) Len() int {
	return i.m.Count()
}

// Records returns the number of UTXOs across all transactions.
func (i *Index) Records() int {
	return i.records
}

// BuildFromSource drains src into a new index. Any read error aborts the build.
func BuildFromSource(ctx context.Context, src UtxoSource, capacity uint32) (*Index, error) {
	b := NewBuilder(capacity)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return b.Build(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read utxo record %d: %w", b.records+1, err)
		}
		b.Add(rec)
	}
}
