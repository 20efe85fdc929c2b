// Package history exports the balance history and simulated trades of a run
// to QuestDB.
package history

import (
	"context"

	"github.com/jackc/pgx/v5"

	historyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/history/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

var _ historyv1.Repository = (*Repository)(nil)

var (
	balanceColumns = []string{"ts", "run_id", "venue", "key", "value"}
	tradeColumns   = []string{"ts", "run_id", "venue", "trade_id", "order_id", "symbol", "side", "liquidity", "price", "amount", "fee", "entry_ts"}
)

// Repository represents the repository for run history.
type Repository struct {
	client questdb.QuestDBClient
}

// NewRepository creates a new history repository.
func NewRepository(client questdb.QuestDBClient) *Repository {
	return &Repository{
		client: client,
	}
}

func (r *Repository) batchSize() int {
	if n := r.client.BatchSize(); n > 0 {
		return n
	}
	return 1000
}

// copyRows copies rows in chunks of the client batch size.
func (r *Repository) copyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var total int64
	size := r.batchSize()
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}

		n, err := r.client.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows[start:end]))
		if err != nil {
			return total, historyv1.ErrHistoryStore.Errorf("copy %s: %v", table, err)
		}
		total += n
	}
	return total, nil
}

// StoreSnapshots stores the balance history in long format, one row per
// currency, mid price and position of every step.
func (r *Repository) StoreSnapshots(ctx context.Context, run historyv1.Run, snapshots []historyv1.BalanceSnapshot) (int64, error) {
	var rows [][]any
	for _, snap := range snapshots {
		ts := util.NanosToTime(snap.Timestamp)
		for _, v := range snap.Values() {
			rows = append(rows, []any{ts, run.ID, run.Venue, v.Key, v.Value})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return r.copyRows(ctx, "balance_history", balanceColumns, rows)
}

// StoreTrades stores the simulated trades of a run.
func (r *Repository) StoreTrades(ctx context.Context, run historyv1.Run, trades []*orderbookv1.Trade) (int64, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []any{
			util.NanosToTime(t.EventTime),
			run.ID,
			run.Venue,
			int64(t.ID),
			int64(t.OrderID),
			t.Symbol,
			t.Side.String(),
			t.Liquidity(),
			t.Price,
			t.Amount,
			t.Fee,
			util.NanosToTime(t.EntryTime),
		})
	}
	return r.copyRows(ctx, "simulated_trades", tradeColumns, rows)
}
