package main

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// generator writes a random walk of quotes and a trade every few quotes in
// the Tardis CSV layout.
type generator struct {
	Symbol    string
	Count     int
	BasePrice float64
	Spread    float64
	Seed      int64
	// Start is the first timestamp; zero means 2024-01-01 UTC.
	Start time.Time
}

const (
	quotesHeader = "exchange,symbol,timestamp,local_timestamp,ask_amount,ask_price,bid_price,bid_amount"
	tradesHeader = "exchange,symbol,timestamp,local_timestamp,id,side,price,amount"
)

// WriteFiles writes <symbol>_quotes.csv and <symbol>_trades.csv into dir.
func (g generator) WriteFiles(dir string) (string, string, error) {
	rng := rand.New(rand.NewSource(g.Seed))
	start := g.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	quotes := [][]string{splitHeader(quotesHeader)}
	trades := [][]string{splitHeader(tradesHeader)}

	mid := g.BasePrice
	us := start.UnixMicro()
	for i := 0; i < g.Count; i++ {
		us += 1_000 + rng.Int63n(100_000)
		mid += (rng.Float64() - 0.5) * g.Spread
		if mid <= g.Spread {
			mid = g.BasePrice
		}

		bid := round(mid-g.Spread/2, 1)
		ask := round(mid+g.Spread/2, 1)
		if ask <= bid {
			ask = bid + 0.1
		}
		ts := strconv.FormatInt(us, 10)
		quotes = append(quotes, []string{
			"simulated", g.Symbol, ts, ts,
			formatFloat(size(rng)), formatFloat(ask), formatFloat(bid), formatFloat(size(rng)),
		})

		if i%5 == 4 {
			side, price := "buy", ask
			if rng.Float64() < 0.5 {
				side, price = "sell", bid
			}
			trades = append(trades, []string{
				"simulated", g.Symbol, ts, ts,
				strconv.Itoa(len(trades)), side, formatFloat(price), formatFloat(size(rng)),
			})
		}
	}

	quotesPath := filepath.Join(dir, g.Symbol+"_quotes.csv")
	tradesPath := filepath.Join(dir, g.Symbol+"_trades.csv")
	if err := writeCSV(quotesPath, quotes); err != nil {
		return "", "", err
	}
	if err := writeCSV(tradesPath, trades); err != nil {
		return "", "", err
	}
	return quotesPath, tradesPath, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func splitHeader(h string) []string {
	return strings.Split(h, ",")
}

// size is between 0.01 and 10, three decimals.
func size(rng *rand.Rand) float64 {
	return round(0.01+rng.Float64()*9.99, 3)
}

func round(v float64, decimals int) float64 {
	p, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return p
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
