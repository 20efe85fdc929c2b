package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	mock "github.com/muhammadchandra19/exchange-simulator/pkg/questdb/mock"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

const t0 = int64(1_700_000_000_000_000_000)

func TestQuoteRepository_StoreQuotes(t *testing.T) {
	quotes := []marketv1.Quote{
		{Timestamp: t0, BidQty: 1, BidPrice: 100, AskQty: 2, AskPrice: 101},
		{Timestamp: t0 + 1000, BidQty: 1, BidPrice: 100.5, AskQty: 2, AskPrice: 101},
	}

	testCases := []struct {
		name     string
		quotes   []marketv1.Quote
		mockFn   func(mock *mock.MockQuestDBClient)
		assertFn func(t *testing.T, count int64, err error)
	}{
		{
			name:   "success",
			quotes: quotes,
			mockFn: func(mock *mock.MockQuestDBClient) {
				mock.EXPECT().CopyFrom(
					gomock.Any(),
					pgx.Identifier{"quotes"},
					[]string{"ts", "symbol", "bid_qty", "bid_price", "ask_qty", "ask_price"},
					gomock.Any(),
				).DoAndReturn(func(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
					var n int64
					for src.Next() {
						values, err := src.Values()
						if err != nil {
							return 0, err
						}
						if n == 0 {
							assert.Equal(t, []any{util.NanosToTime(t0), "BTCUSDT", 1.0, 100.0, 2.0, 101.0}, values)
						}
						n++
					}
					return n, nil
				})
			},
			assertFn: func(t *testing.T, count int64, err error) {
				assert.NoError(t, err)
				assert.Equal(t, int64(2), count)
			},
		},
		{
			name:   "empty",
			quotes: nil,
			mockFn: func(*mock.MockQuestDBClient) {},
			assertFn: func(t *testing.T, count int64, err error) {
				assert.NoError(t, err)
				assert.Zero(t, count)
			},
		},
		{
			name:   "error",
			quotes: quotes,
			mockFn: func(mock *mock.MockQuestDBClient) {
				mock.EXPECT().CopyFrom(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("error"))
			},
			assertFn: func(t *testing.T, count int64, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mock := mock.NewMockQuestDBClient(ctrl)
			tc.mockFn(mock)

			count, err := NewRepository(mock).StoreQuotes(context.Background(), "BTCUSDT", tc.quotes)
			tc.assertFn(t, count, err)
		})
	}
}

func TestQuoteRepository_StorePrints(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockQuestDBClient(ctrl)
	client.EXPECT().CopyFrom(
		gomock.Any(),
		pgx.Identifier{"prints"},
		[]string{"ts", "symbol", "side", "price", "amount"},
		gomock.Any(),
	).DoAndReturn(func(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
		require.True(t, src.Next())
		values, err := src.Values()
		require.NoError(t, err)
		assert.Equal(t, []any{util.NanosToTime(t0), "BTCUSDT", "sell", 99.5, 0.25}, values)
		return 1, nil
	})

	count, err := NewRepository(client).StorePrints(context.Background(), "BTCUSDT", []marketv1.Print{
		{Timestamp: t0, Side: orderbookv1.Sell, Price: 99.5, Amount: 0.25},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQuoteRepository_LoadQuotes(t *testing.T) {
	base := "SELECT ts, symbol, bid_qty, bid_price, ask_qty, ask_price FROM quotes WHERE symbol = $1"

	testCases := []struct {
		name     string
		query    feedv1.Query
		mockFn   func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface)
		assertFn func(t *testing.T, quotes []marketv1.Quote, err error)
	}{
		{
			name:  "success: with window",
			query: feedv1.Query{Symbol: "BTCUSDT", From: t0, To: t0 + 10_000},
			mockFn: func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface) {
				mock.EXPECT().Query(
					gomock.Any(),
					base+" AND ts >= $2 AND ts < $3 ORDER BY ts ASC",
					"BTCUSDT", util.NanosToTime(t0), util.NanosToTime(t0+10_000),
				).Return(mockRows, nil)

				mockRows.EXPECT().Next().Return(true)
				mockRows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
					*dest[0].(*time.Time) = util.NanosToTime(t0 + 1_000)
					*dest[1].(*string) = "BTCUSDT"
					*dest[2].(*float64) = 1.5
					*dest[3].(*float64) = 100
					*dest[4].(*float64) = 2.5
					*dest[5].(*float64) = 101
					return nil
				})
				mockRows.EXPECT().Next().Return(false)
				mockRows.EXPECT().Err().Return(nil)
				mockRows.EXPECT().Close()
			},
			assertFn: func(t *testing.T, quotes []marketv1.Quote, err error) {
				require.NoError(t, err)
				assert.Equal(t, []marketv1.Quote{{Timestamp: t0 + 1_000, BidQty: 1.5, BidPrice: 100, AskQty: 2.5, AskPrice: 101}}, quotes)
			},
		},
		{
			name:  "success: no rows",
			query: feedv1.Query{Symbol: "BTCUSDT"},
			mockFn: func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface) {
				mock.EXPECT().Query(gomock.Any(), base+" ORDER BY ts ASC", "BTCUSDT").Return(mockRows, nil)
				mockRows.EXPECT().Next().Return(false)
				mockRows.EXPECT().Err().Return(nil)
				mockRows.EXPECT().Close()
			},
			assertFn: func(t *testing.T, quotes []marketv1.Quote, err error) {
				assert.NoError(t, err)
				assert.Empty(t, quotes)
			},
		},
		{
			name:  "error: query",
			query: feedv1.Query{Symbol: "BTCUSDT"},
			mockFn: func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface) {
				mock.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
			},
			assertFn: func(t *testing.T, quotes []marketv1.Quote, err error) {
				assert.ErrorIs(t, err, feedv1.ErrFeedLoad)
				assert.Nil(t, quotes)
			},
		},
		{
			name:  "error: scan",
			query: feedv1.Query{Symbol: "BTCUSDT"},
			mockFn: func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface) {
				mock.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockRows, nil)
				mockRows.EXPECT().Next().Return(true)
				mockRows.EXPECT().Scan(gomock.Any()).Return(errors.New("bad column"))
				mockRows.EXPECT().Close()
			},
			assertFn: func(t *testing.T, quotes []marketv1.Quote, err error) {
				assert.ErrorIs(t, err, feedv1.ErrFeedLoad)
			},
		},
		{
			name:  "error: rows",
			query: feedv1.Query{Symbol: "BTCUSDT"},
			mockFn: func(mock *mock.MockQuestDBClient, mockRows *mock.MockRowsInterface) {
				mock.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockRows, nil)
				mockRows.EXPECT().Next().Return(false)
				mockRows.EXPECT().Err().Return(errors.New("interrupted"))
				mockRows.EXPECT().Close()
			},
			assertFn: func(t *testing.T, quotes []marketv1.Quote, err error) {
				assert.ErrorIs(t, err, feedv1.ErrFeedLoad)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRows := mock.NewMockRowsInterface(ctrl)
			mock := mock.NewMockQuestDBClient(ctrl)
			tc.mockFn(mock, mockRows)

			quotes, err := NewRepository(mock).LoadQuotes(context.Background(), tc.query)
			tc.assertFn(t, quotes, err)
		})
	}
}

func TestQuoteRepository_LoadPrints(t *testing.T) {
	query := "SELECT ts, symbol, side, price, amount FROM prints WHERE symbol = $1 AND ts >= $2 ORDER BY ts ASC"

	testCases := []struct {
		name     string
		side     string
		assertFn func(t *testing.T, prints []marketv1.Print, err error)
	}{
		{
			name: "success",
			side: "buy",
			assertFn: func(t *testing.T, prints []marketv1.Print, err error) {
				require.NoError(t, err)
				assert.Equal(t, []marketv1.Print{{Timestamp: t0, Side: orderbookv1.Buy, Price: 100, Amount: 0.5}}, prints)
			},
		},
		{
			name: "unknown side",
			side: "short",
			assertFn: func(t *testing.T, prints []marketv1.Print, err error) {
				assert.ErrorIs(t, err, feedv1.ErrMalformedRecord)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mock.NewMockQuestDBClient(ctrl)
			rows := mock.NewMockRowsInterface(ctrl)
			client.EXPECT().Query(gomock.Any(), query, "BTCUSDT", util.NanosToTime(t0)).Return(rows, nil)
			rows.EXPECT().Next().Return(true)
			rows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
				*dest[0].(*time.Time) = util.NanosToTime(t0)
				*dest[1].(*string) = "BTCUSDT"
				*dest[2].(*string) = tc.side
				*dest[3].(*float64) = 100
				*dest[4].(*float64) = 0.5
				return nil
			})
			rows.EXPECT().Next().Return(false).AnyTimes()
			rows.EXPECT().Err().Return(nil).AnyTimes()
			rows.EXPECT().Close()

			prints, err := NewRepository(client).LoadPrints(context.Background(), feedv1.Query{Symbol: "BTCUSDT", From: t0})
			tc.assertFn(t, prints, err)
		})
	}
}
