package service

import (
	"time"

	"github.com/goodnatureofminers/p2wsh-utxo/internal/utxo/service/joiner"
)

type (
	Metrics interface {
		joiner.Metrics
		ObserveIndexBuild(err error, records, transactions int, started time.Time)
	}
)
