package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/metrics"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/codec"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/dump"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/sink"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ScidJoinSuite struct {
	suite.Suite
	ctx context.Context
	dir string
	out string
}

func TestScidJoinSuite(t *testing.T) {
	suite.Run(t, new(ScidJoinSuite))
}

func (s *ScidJoinSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
	s.out = filepath.Join(s.dir, "out")
}

func (s *ScidJoinSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ScidJoinSuite) newService(utxoPath, positionPath string, format model.OutputFormat, mode model.Minimization) *ScidJoinService {
	svc, err := NewScidJoinService(Config{
		UtxoDumpPath:     utxoPath,
		PositionDumpPath: positionPath,
		OutputDir:        s.out,
		Format:           format,
		Minimization:     mode,
	}, metrics.NewScidJoin(string(format), mode.String()), zap.NewNop())
	s.Require().NoError(err)
	return svc
}

func (s *ScidJoinSuite) TestFullJSONSingleMatch() {
	utxos := s.writeFile("utxodump.csv", "txid,vout,height,amount\nabc,2,100,5000\n")
	positions := s.writeFile("positions.csv", "abc,7\n")

	stats, err := s.newService(utxos, positions, model.FormatJSON, model.MinimizeFull).Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Matched)
	s.Equal(1, stats.Parts)

	raw, err := os.ReadFile(sink.PartPath(s.out, 1))
	s.Require().NoError(err)
	var got []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &got))
	s.Equal([]map[string]any{{
		"block_height":      float64(100),
		"id":                "abc",
		"block_index":       float64(7),
		"transaction_index": float64(2),
		"amount":            float64(5000),
	}}, got)

	_, err = os.Stat(sink.PartPath(s.out, 2))
	s.True(os.IsNotExist(err))
}

func (s *ScidJoinSuite) TestMinimizedBinary() {
	utxos := s.writeFile("utxodump.csv", "count,txid,vout,height,amount,type\n1,abc,2,100,5000,p2wsh\n2,abc,0,100,330,p2wsh\n3,zzz,0,5,1,p2wsh\n")
	positions := s.writeFile("positions.csv", "nope,1\nabc,7\n")

	stats, err := s.newService(utxos, positions, model.FormatBinary, model.MinimizeRedacted).Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.Scanned)
	s.Equal(2, stats.Matched)

	f, err := os.Open(filepath.Join(s.out, sink.BinaryFileName))
	s.Require().NoError(err)
	defer f.Close()
	got, err := codec.Decode(f)
	s.Require().NoError(err)
	s.Equal([]model.UTXO{
		{BlockHeight: 100, BlockIndex: 7, TransactionIndex: 2},
		{BlockHeight: 100, BlockIndex: 7, TransactionIndex: 0},
	}, got)
}

func (s *ScidJoinSuite) TestMalformedUtxoDumpWritesNothing() {
	utxos := s.writeFile("utxodump.csv", "txid,vout,height,amount\nabc,2,100,5000\nabc,70000,100,1\n")
	positions := s.writeFile("positions.csv", "abc,7\n")

	_, err := s.newService(utxos, positions, model.FormatJSON, model.MinimizeFull).Run(s.ctx)
	s.Require().ErrorIs(err, dump.ErrMalformedRow)

	_, statErr := os.Stat(sink.PartPath(s.out, 1))
	s.True(os.IsNotExist(statErr))
}

func (s *ScidJoinSuite) TestMissingInput() {
	positions := s.writeFile("positions.csv", "abc,7\n")

	_, err := s.newService(filepath.Join(s.dir, "absent.csv"), positions, model.FormatJSON, model.MinimizeFull).Run(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, os.ErrNotExist)

	utxos := s.writeFile("utxodump.csv", "txid,vout,height,amount\n")
	_, err = s.newService(utxos, filepath.Join(s.dir, "absent.csv"), model.FormatBinary, model.MinimizeFull).Run(s.ctx)
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *ScidJoinSuite) TestProgressBarDoesNotChangeOutput() {
	utxos := s.writeFile("utxodump.csv", "txid,vout,height,amount\nabc,2,100,5000\n")
	positions := s.writeFile("positions.csv", "abc,7\n")

	svc, err := NewScidJoinService(Config{
		UtxoDumpPath:     utxos,
		PositionDumpPath: positions,
		OutputDir:        s.out,
		Format:           model.FormatJSON,
		Minimization:     model.MinimizeRedacted,
		Progress:         true,
	}, metrics.NewScidJoin("json", "minimized"), zap.NewNop())
	s.Require().NoError(err)

	stats, err := svc.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.Matched)
}

func (s *ScidJoinSuite) TestConfigValidation() {
	m := metrics.NewScidJoin("json", "full")

	_, err := NewScidJoinService(Config{UtxoDumpPath: "a", PositionDumpPath: "b", OutputDir: s.out, Format: "xml"}, m, zap.NewNop())
	s.ErrorIs(err, model.ErrUnknownOutputFormat)

	_, err = NewScidJoinService(Config{PositionDumpPath: "b", OutputDir: s.out, Format: model.FormatJSON}, m, zap.NewNop())
	s.Error(err)

	_, err = NewScidJoinService(Config{UtxoDumpPath: "a", PositionDumpPath: "b", OutputDir: s.out, Format: model.FormatJSON}, nil, zap.NewNop())
	s.Error(err)
}
