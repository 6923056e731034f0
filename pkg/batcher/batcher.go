// Package batcher provides a generic bounded buffer that flushes through a callback.
package batcher

import (
	"context"

	"go.uber.org/zap"
)

// Batcher buffers items and hands them to the flush callback once the buffer reaches
// its size bound. A size bound of zero never flushes on Add; only Flush writes.
// Batcher is not safe for concurrent use.
type Batcher[T any] struct {
	flushCallback func(context.Context, []T) error
	flushSize     int
	logger        *zap.Logger

	buf     []T
	flushes int
}

// New constructs a Batcher. flushSize <= 0 makes the buffer unbounded.
func New[T any](logger *zap.Logger, flushCallback func(context.Context, []T) error, flushSize int) *Batcher[T] {
	if flushSize < 0 {
		flushSize = 0
	}
	return &Batcher[T]{
		logger:        logger,
		flushCallback: flushCallback,
		flushSize:     flushSize,
		buf:           make([]T, 0, flushSize),
	}
}

// Add appends an item and flushes if the buffer just reached the size bound.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.buf = append(b.buf, item)
	if b.flushSize > 0 && len(b.buf) >= b.flushSize {
		return b.flush(ctx)
	}
	return nil
}

// Flush hands the buffered items to the callback even when the buffer is empty.
func (b *Batcher[T]) Flush(ctx context.Context) error {
	return b.flush(ctx)
}

// Len returns the number of buffered items.
func (b *Batcher[T]) Len() int {
	return len(b.buf)
}

// Flushes returns how many times the callback succeeded.
func (b *Batcher[T]) Flushes() int {
	return b.flushes
}

func (b *Batcher[T]) flush(ctx context.Context) error {
	if err := b.flushCallback(ctx, b.buf); err != nil {
		b.logger.Error("batch not flushed", zap.Int("size", len(b.buf)), zap.Error(err))
		return err
	}
	b.logger.Debug("batch flushed", zap.Int("size", len(b.buf)))
	b.flushes++
	b.buf = b.buf[:0]
	return nil
}
