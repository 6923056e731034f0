package joiner

import (
	"context"
	"time"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	PositionSource interface {
		Next() (model.PositionRecord, error)
	}
	Sink interface {
		Write(ctx context.Context, utxos []model.UTXO) error
	}
	Metrics interface {
		ObservePosition(hit bool)
		ObserveMatched(n int)
		ObserveFlush(err error, size int, started time.Time)
	}
)
