package historyv1

import (
	"context"

	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
)

// Run identifies the run a batch of records belongs to.
type Run struct {
	ID    string
	Venue string
}

// Repository stores the history of a finished run.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=historyv1_mock
type Repository interface {
	StoreSnapshots(ctx context.Context, run Run, snapshots []BalanceSnapshot) (int64, error)
	StoreTrades(ctx context.Context, run Run, trades []*orderbookv1.Trade) (int64, error)
}
