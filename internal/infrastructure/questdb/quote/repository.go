// Package quote stores and reads recorded top-of-book quotes and public
// trades in QuestDB.
package quote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

var _ feedv1.Source = (*Repository)(nil)

// Repository represents the repository for recorded market data.
type Repository struct {
	client questdb.QuestDBClient
}

// NewRepository creates a new quote repository.
func NewRepository(client questdb.QuestDBClient) *Repository {
	return &Repository{
		client: client,
	}
}

// StoreQuotes stores quotes of symbol.
func (r *Repository) StoreQuotes(ctx context.Context, symbol string, quotes []marketv1.Quote) (int64, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	count, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{"quotes"},
		[]string{"ts", "symbol", "bid_qty", "bid_price", "ask_qty", "ask_price"},
		pgx.CopyFromSlice(len(quotes), func(i int) ([]any, error) {
			q := quotes[i]
			return []any{util.NanosToTime(q.Timestamp), symbol, q.BidQty, q.BidPrice, q.AskQty, q.AskPrice}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy quotes: %w", err)
	}
	return count, nil
}

// StorePrints stores public trades of symbol.
func (r *Repository) StorePrints(ctx context.Context, symbol string, prints []marketv1.Print) (int64, error) {
	if len(prints) == 0 {
		return 0, nil
	}

	count, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{"prints"},
		[]string{"ts", "symbol", "side", "price", "amount"},
		pgx.CopyFromSlice(len(prints), func(i int) ([]any, error) {
			p := prints[i]
			return []any{util.NanosToTime(p.Timestamp), symbol, p.Side.String(), p.Price, p.Amount}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy prints: %w", err)
	}
	return count, nil
}

func window(base string, query feedv1.Query) (string, []any) {
	sql := base + " WHERE symbol = $1"
	args := []any{query.Symbol}
	argIndex := 2

	if query.From != 0 {
		sql += fmt.Sprintf(" AND ts >= $%d", argIndex)
		args = append(args, util.NanosToTime(query.From))
		argIndex++
	}

	if query.To != 0 {
		sql += fmt.Sprintf(" AND ts < $%d", argIndex)
		args = append(args, util.NanosToTime(query.To))
	}

	return sql + " ORDER BY ts ASC", args
}

// LoadQuotes returns the quotes selected by query, oldest first.
func (r *Repository) LoadQuotes(ctx context.Context, query feedv1.Query) ([]marketv1.Quote, error) {
	sql, args := window("SELECT ts, symbol, bid_qty, bid_price, ask_qty, ask_price FROM quotes", query)

	rows, err := r.client.Query(ctx, sql, args...)
	if err != nil {
		return nil, feedv1.ErrFeedLoad.Errorf("query quotes of %s: %v", query.Symbol, err)
	}
	defer rows.Close()

	var quotes []marketv1.Quote
	for rows.Next() {
		row := &Quote{}
		if err := rows.Scan(&row.Timestamp, &row.Symbol, &row.BidQty, &row.BidPrice, &row.AskQty, &row.AskPrice); err != nil {
			return nil, feedv1.ErrFeedLoad.Errorf("scan quote: %v", err)
		}
		quotes = append(quotes, row.toMarket())
	}

	if err := rows.Err(); err != nil {
		return nil, feedv1.ErrFeedLoad.Errorf("iterate quotes: %v", err)
	}

	return quotes, nil
}

// LoadPrints returns the public trades selected by query, oldest first.
func (r *Repository) LoadPrints(ctx context.Context, query feedv1.Query) ([]marketv1.Print, error) {
	sql, args := window("SELECT ts, symbol, side, price, amount FROM prints", query)

	rows, err := r.client.Query(ctx, sql, args...)
	if err != nil {
		return nil, feedv1.ErrFeedLoad.Errorf("query prints of %s: %v", query.Symbol, err)
	}
	defer rows.Close()

	var prints []marketv1.Print
	for rows.Next() {
		row := &Print{}
		if err := rows.Scan(&row.Timestamp, &row.Symbol, &row.Side, &row.Price, &row.Amount); err != nil {
			return nil, feedv1.ErrFeedLoad.Errorf("scan print: %v", err)
		}
		p, ok := row.toMarket()
		if !ok {
			return nil, feedv1.ErrMalformedRecord.Errorf("print at %s has side %q", row.Timestamp, row.Side)
		}
		prints = append(prints, p)
	}

	if err := rows.Err(); err != nil {
		return nil, feedv1.ErrFeedLoad.Errorf("iterate prints: %v", err)
	}

	return prints, nil
}
