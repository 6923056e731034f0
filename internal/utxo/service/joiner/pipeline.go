// Package joiner streams the position dump against the UTXO index and emits enriched records.
package joiner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/index"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
	"github.com/goodnatureofminers/p2wsh-utxo/pkg/batcher"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of records per JSON part.
	DefaultBatchSize = 10_000

	defaultProgressEvery = 10_000_000
)

// Config selects the output shape of a run.
type Config struct {
	Format       model.OutputFormat
	Minimization model.Minimization
	BatchSize    int
}

// Stats summarizes a finished run.
type Stats struct {
	Scanned       int
	Matched       int
	Parts         int
	MatchedAmount btcutil.Amount
}

// Pipeline joins position records with indexed UTXOs.
type Pipeline struct {
	sink          Sink
	metrics       Metrics
	format        model.OutputFormat
	minimization  model.Minimization
	batchSize     int
	progressEvery int
	logger        *zap.Logger
}

// New validates cfg and builds a Pipeline writing to sink.
func New(sink Sink, metrics Metrics, cfg Config, logger *zap.Logger) (*Pipeline, error) {
	if sink == nil {
		return nil, errors.New("joiner sink is required")
	}
	if metrics == nil {
		return nil, errors.New("joiner metrics is required")
	}
	if _, err := model.ParseOutputFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("batch size %d must be positive", batchSize)
	}

	return &Pipeline{
		sink:          sink,
		metrics:       metrics,
		format:        cfg.Format,
		minimization:  cfg.Minimization,
		batchSize:     batchSize,
		progressEvery: defaultProgressEvery,
		logger: logger.With(
			zap.String("format", string(cfg.Format)),
			zap.Stringer("mode", cfg.Minimization),
		),
	}, nil
}

// Run streams src to exhaustion. Lookup misses are skipped silently. In json mode a part
// is flushed every BatchSize records and once more at the end, even when empty. In bin
// mode every record is held until the end and written as one artifact.
func (p *Pipeline) Run(ctx context.Context, idx *index.Index, src PositionSource) (Stats, error) {
	bound := p.batchSize
	if p.format == model.FormatBinary {
		// TODO: decide with consumers of p2wsh-utxo.bin whether bin output should be chunked like json.
		bound = 0
		p.logger.Warn("binary output ignores the batch size; all matches are held in memory until the end")
	}

	var stats Stats
	b := batcher.New(p.logger.Named("batcher"), p.flush, bound)

	p.logger.Info("analyzing all utxos")
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		pos, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read position record %d: %w", stats.Scanned+1, err)
		}

		stats.Scanned++
		if stats.Scanned%p.progressEvery == 0 {
			p.logger.Info("analyzed utxos", zap.Int("scanned", stats.Scanned), zap.Int("matched", stats.Matched))
		}

		utxos, ok := p.lookup(idx, pos.TxID)
		if !ok {
			continue
		}
		for _, utxo := range utxos {
			if err = b.Add(ctx, p.minimization.Enrich(utxo, pos)); err != nil {
				return stats, fmt.Errorf("flush part %d: %w", b.Flushes()+1, err)
			}
			stats.Matched++
			stats.MatchedAmount += btcutil.Amount(utxo.Amount)
		}
		p.metrics.ObserveMatched(len(utxos))
		stats.Parts = b.Flushes()
	}

	if err := b.Flush(ctx); err != nil {
		return stats, fmt.Errorf("flush final part %d: %w", b.Flushes()+1, err)
	}
	stats.Parts = b.Flushes()

	p.logger.Info("wrote total transactions",
		zap.Int("matched", stats.Matched),
		zap.Int("scanned", stats.Scanned),
		zap.Int("parts", stats.Parts),
		zap.Stringer("amount", stats.MatchedAmount),
	)
	return stats, nil
}

func (p *Pipeline) lookup(idx *index.Index, txid string) ([]model.UtxoRecord, bool) {
	utxos, ok := idx.Lookup(txid)
	p.metrics.ObservePosition(ok)
	return utxos, ok
}

func (p *Pipeline) flush(ctx context.Context, utxos []model.UTXO) error {
	started := time.Now()
	err := p.sink.Write(ctx, utxos)
	p.metrics.ObserveFlush(err, len(utxos), started)
	return err
}
