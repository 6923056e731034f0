// Package service wires the UTXO index and the join pipeline into a single run.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/dump"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/index"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/service/joiner"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/sink"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Config describes one join run.
type Config struct {
	UtxoDumpPath     string
	PositionDumpPath string
	OutputDir        string
	Format           model.OutputFormat
	Minimization     model.Minimization
	BatchSize        int
	// IndexCapacity presizes the index; zero picks a default.
	IndexCapacity uint32
	Progress      bool
}

// ScidJoinService loads the UTXO dump into an index, then streams the position dump against it.
type ScidJoinService struct {
	cfg      Config
	metrics  Metrics
	pipeline *joiner.Pipeline
	logger   *zap.Logger
}

func NewScidJoinService(cfg Config, metrics Metrics, logger *zap.Logger) (*ScidJoinService, error) {
	if metrics == nil {
		return nil, errors.New("scid join metrics is required")
	}
	if cfg.UtxoDumpPath == "" || cfg.PositionDumpPath == "" {
		return nil, errors.New("utxo dump and position dump paths are required")
	}
	logger = logger.With(
		zap.String("format", string(cfg.Format)),
		zap.Stringer("mode", cfg.Minimization),
	)

	out, err := newSink(cfg.Format, cfg.OutputDir, logger.Named("sink"))
	if err != nil {
		return nil, err
	}
	pipeline, err := joiner.New(out, metrics, joiner.Config{
		Format:       cfg.Format,
		Minimization: cfg.Minimization,
		BatchSize:    cfg.BatchSize,
	}, logger.Named("joiner"))
	if err != nil {
		return nil, fmt.Errorf("init joiner: %w", err)
	}

	return &ScidJoinService{
		cfg:      cfg,
		metrics:  metrics,
		pipeline: pipeline,
		logger:   logger,
	}, nil
}

// Run executes both phases. Parts flushed before a failure stay on disk.
func (s *ScidJoinService) Run(ctx context.Context) (joiner.Stats, error) {
	idx, err := s.buildIndex(ctx)
	if err != nil {
		return joiner.Stats{}, err
	}

	in, err := s.open(s.cfg.PositionDumpPath, "joining positions")
	if err != nil {
		return joiner.Stats{}, err
	}
	defer in.Close()

	stats, err := s.pipeline.Run(ctx, idx, dump.NewPositionReader(in))
	if err != nil {
		return stats, fmt.Errorf("join %s: %w", s.cfg.PositionDumpPath, err)
	}
	return stats, nil
}

func (s *ScidJoinService) buildIndex(ctx context.Context) (idx *index.Index, err error) {
	started := time.Now()
	defer func() {
		if err != nil {
			s.metrics.ObserveIndexBuild(err, 0, 0, started)
			return
		}
		s.metrics.ObserveIndexBuild(nil, idx.Records(), idx.Len(), started)
	}()

	in, err := s.open(s.cfg.UtxoDumpPath, "loading utxo set")
	if err != nil {
		return nil, err
	}
	defer in.Close()

	s.logger.Info("dumping p2wsh utxo set", zap.String("path", s.cfg.UtxoDumpPath))
	r, err := dump.NewUtxoReader(in)
	if err != nil {
		return nil, fmt.Errorf("open utxo dump %s: %w", s.cfg.UtxoDumpPath, err)
	}
	idx, err = index.BuildFromSource(ctx, r, s.cfg.IndexCapacity)
	if err != nil {
		return nil, fmt.Errorf("load utxo dump %s: %w", s.cfg.UtxoDumpPath, err)
	}
	s.logger.Info("utxo index built",
		zap.Int("records", idx.Records()),
		zap.Int("transactions", idx.Len()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return idx, nil
}

type input struct {
	io.Reader
	file *os.File
	bar  *progressbar.ProgressBar
}

func (i *input) Close() error {
	if i.bar != nil {
		_ = i.bar.Finish()
	}
	return i.file.Close()
}

func (s *ScidJoinService) open(path, description string) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !s.cfg.Progress {
		return &input{Reader: f, file: f}, nil
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	bar := progressbar.DefaultBytes(info.Size(), description)
	return &input{Reader: io.TeeReader(f, bar), file: f, bar: bar}, nil
}

func newSink(format model.OutputFormat, dir string, logger *zap.Logger) (joiner.Sink, error) {
	switch format {
	case model.FormatJSON:
		return sink.NewJSONParts(dir, logger)
	case model.FormatBinary:
		return sink.NewBinary(dir, logger)
	default:
		_, err := model.ParseOutputFormat(string(format))
		return nil, err
	}
}
