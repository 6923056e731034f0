package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/metrics"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/service"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	BatchSize       int    `long:"batch-size" env:"SCID_JOIN_BATCH_SIZE" description:"records per json part" default:"10000"`
	IndexCapacity   uint32 `long:"index-capacity" env:"SCID_JOIN_INDEX_CAPACITY" description:"expected number of distinct txids in the utxo dump"`
	Progress        bool   `long:"progress" env:"SCID_JOIN_PROGRESS" description:"show progress bars while reading the dumps"`
	MetricsTextfile string `long:"metrics-textfile" env:"SCID_JOIN_METRICS_TEXTFILE" description:"write prometheus metrics to this file when done"`
	LogLevel        string `long:"log-level" env:"SCID_JOIN_LOG_LEVEL" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`

	Args struct {
		UtxoDump      string `positional-arg-name:"utxo_dump_path" description:"csv utxo dump with header (txid,vout,height,amount)"`
		PositionIndex string `positional-arg-name:"position_index_path" description:"headerless csv of txid,position"`
		OutputFormat  string `positional-arg-name:"output_format" description:"json or bin"`
		Minimization  string `positional-arg-name:"minimization_mode" description:"full keeps txid and amount, anything else drops them"`
		OutputDir     string `positional-arg-name:"output_directory" description:"directory for part-<N>.json or p2wsh-utxo.bin"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("scid join failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	format, err := model.ParseOutputFormat(cfg.Args.OutputFormat)
	if err != nil {
		return err
	}
	mode := model.ParseMinimization(cfg.Args.Minimization)

	m := metrics.NewScidJoin(string(format), mode.String())
	svc, err := service.NewScidJoinService(service.Config{
		UtxoDumpPath:     cfg.Args.UtxoDump,
		PositionDumpPath: cfg.Args.PositionIndex,
		OutputDir:        cfg.Args.OutputDir,
		Format:           format,
		Minimization:     mode,
		BatchSize:        cfg.BatchSize,
		IndexCapacity:    cfg.IndexCapacity,
		Progress:         cfg.Progress,
	}, m, logger)
	if err != nil {
		return err
	}

	stats, err := svc.Run(ctx)
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("failed to write metrics", zap.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("%d total matched records", stats.Matched),
		zap.Int("parts", stats.Parts),
		zap.Int("scanned", stats.Scanned),
		zap.Stringer("amount", stats.MatchedAmount),
	)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
