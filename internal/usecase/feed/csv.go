package feed

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

var _ feedv1.Source = (*CSVSource)(nil)

// CSVSource reads Tardis style "quotes" and "trades" CSV datasets, plain or
// gzipped. Timestamps are microseconds since the epoch.
type CSVSource struct {
	quotesPath string
	tradesPath string
	open       func(path string) (io.ReadCloser, error)
}

// NewCSVSource creates a source over the given files. An empty trades path
// yields no public trades.
func NewCSVSource(quotesPath, tradesPath string) *CSVSource {
	return &CSVSource{
		quotesPath: quotesPath,
		tradesPath: tradesPath,
		open:       openFile,
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	_ = g.Reader.Close()
	return g.file.Close()
}

// LoadQuotes reads the quotes dataset.
func (s *CSVSource) LoadQuotes(ctx context.Context, query feedv1.Query) ([]marketv1.Quote, error) {
	var quotes []marketv1.Quote
	err := s.scan(ctx, s.quotesPath, query, []string{"timestamp", "bid_amount", "bid_price", "ask_amount", "ask_price"},
		func(ts int64, fields []float64, _ record) error {
			quotes = append(quotes, marketv1.Quote{
				Timestamp: ts,
				BidQty:    fields[0],
				BidPrice:  fields[1],
				AskQty:    fields[2],
				AskPrice:  fields[3],
			})
			return nil
		})
	return quotes, err
}

// LoadPrints reads the trades dataset.
func (s *CSVSource) LoadPrints(ctx context.Context, query feedv1.Query) ([]marketv1.Print, error) {
	if s.tradesPath == "" {
		return nil, nil
	}

	var prints []marketv1.Print
	err := s.scan(ctx, s.tradesPath, query, []string{"timestamp", "price", "amount"},
		func(ts int64, fields []float64, rec record) error {
			side, ok := orderbookv1.ParseSide(rec.get("side"))
			if !ok {
				return feedv1.ErrMalformedRecord.Errorf("%s line %d: side %q", s.tradesPath, rec.line, rec.get("side"))
			}
			prints = append(prints, marketv1.Print{
				Timestamp: ts,
				Side:      side,
				Price:     fields[0],
				Amount:    fields[1],
			})
			return nil
		})
	return prints, err
}

type record struct {
	line    int
	values  []string
	columns map[string]int
}

func (r record) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// scan reads path row by row. The first required column is the microsecond
// timestamp; the rest are parsed as floats and handed to fn in order.
func (s *CSVSource) scan(ctx context.Context, path string, query feedv1.Query, required []string, fn func(ts int64, fields []float64, rec record) error) error {
	f, err := s.open(path)
	if err != nil {
		return feedv1.ErrFeedLoad.Errorf("open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return feedv1.ErrMalformedRecord.Errorf("%s: read header: %v", path, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return feedv1.ErrMalformedRecord.Errorf("%s: missing column %q", path, name)
		}
	}
	_, hasSymbol := columns["symbol"]

	fields := make([]float64, len(required)-1)
	var last int64
	for line := 2; ; line++ {
		if line%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		values, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return feedv1.ErrMalformedRecord.Errorf("%s line %d: %v", path, line, err)
		}
		rec := record{line: line, values: values, columns: columns}

		if hasSymbol && query.Symbol != "" && rec.get("symbol") != query.Symbol {
			continue
		}

		us, err := strconv.ParseInt(rec.get(required[0]), 10, 64)
		if err != nil {
			return feedv1.ErrMalformedRecord.Errorf("%s line %d: timestamp: %v", path, line, err)
		}
		ts := util.MicrosToNanos(us)
		if ts < last {
			return feedv1.ErrUnsorted.Errorf("%s line %d", path, line)
		}
		last = ts
		if !query.Contains(ts) {
			continue
		}

		for i, name := range required[1:] {
			v, err := strconv.ParseFloat(rec.get(name), 64)
			if err != nil {
				return feedv1.ErrMalformedRecord.Errorf("%s line %d: %s: %v", path, line, name, err)
			}
			fields[i] = v
		}

		if err := fn(ts, fields, rec); err != nil {
			return err
		}
	}
}
