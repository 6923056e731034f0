// Package sink writes batches of matched UTXOs to output artifacts.
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/codec"
	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// BinaryFileName is the artifact written in binary mode.
const BinaryFileName = "p2wsh-utxo.bin"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONParts writes each batch to its own part-<N>.json file, N counting from 1.
type JSONParts struct {
	dir    string
	part   int
	logger *zap.Logger
}

func NewJSONParts(dir string, logger *zap.Logger) (*JSONParts, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &JSONParts{dir: dir, logger: logger}, nil
}

// Write stores utxos as a pretty-printed array. An empty batch yields "[]".
func (s *JSONParts) Write(ctx context.Context, utxos []model.UTXO) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if utxos == nil {
		utxos = []model.UTXO{}
	}

	path := PartPath(s.dir, s.part+1)
	err := writeFile(path, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(utxos)
	})
	if err != nil {
		return err
	}
	s.part++
	s.logger.Info("wrote part", zap.Int("part", s.part), zap.Int("transactions", len(utxos)), zap.String("path", path))
	return nil
}

// Parts returns how many part files were written.
func (s *JSONParts) Parts() int {
	return s.part
}

// PartPath returns the path of part n inside dir.
func PartPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("part-%d.json", n))
}

// Binary writes the whole result set into a single p2wsh-utxo.bin file.
type Binary struct {
	dir     string
	written int
	logger  *zap.Logger
}

func NewBinary(dir string, logger *zap.Logger) (*Binary, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &Binary{dir: dir, logger: logger}, nil
}

// Write encodes utxos to p2wsh-utxo.bin, replacing any previous content.
func (s *Binary) Write(ctx context.Context, utxos []model.UTXO) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, BinaryFileName)
	err := writeFile(path, func(w *bufio.Writer) error {
		return codec.Encode(w, utxos)
	})
	if err != nil {
		return err
	}
	s.written++
	s.logger.Info("wrote binary", zap.Int("transactions", len(utxos)), zap.String("path", path))
	return nil
}

// Parts returns how many times the binary file was written.
func (s *Binary) Parts() int {
	return s.written
}

func ensureDir(dir string) error {
	if dir == "" {
		return errors.New("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}

func writeFile(path string, encode func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err = encode(w); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
