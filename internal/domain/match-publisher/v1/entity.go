package matchpublisherv1

import (
	"encoding/json"
	"math/rand"
	"time"

	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
)

// MatchEvent is a simulated fill as published to downstream consumers.
type MatchEvent struct {
	EventID   string    `json:"eventID"`
	RunID     string    `json:"runID"`
	Venue     string    `json:"venue"`
	TradeID   uint64    `json:"tradeID"`
	OrderID   uint64    `json:"orderID"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Liquidity string    `json:"liquidity"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Fee       float64   `json:"fee"`
	Timestamp time.Time `json:"timestamp"`
}

// IDSource generates event ids. Ids are ordered by the simulated fill time.
type IDSource struct {
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an IDSource; the same seed yields the same ids for the same run.
func NewIDSource(seed int64) *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// CreateFromTrade creates a match event from a trade.
func (s *IDSource) CreateFromTrade(runID, venue string, trade *orderbookv1.Trade) *MatchEvent {
	ts := time.Unix(0, trade.EventTime).UTC()
	return &MatchEvent{
		EventID:   ulid.MustNew(ulid.Timestamp(ts), s.entropy).String(),
		RunID:     runID,
		Venue:     venue,
		TradeID:   trade.ID,
		OrderID:   trade.OrderID,
		Symbol:    trade.Symbol,
		Side:      trade.Side.String(),
		Liquidity: trade.Liquidity(),
		Price:     trade.Price,
		Volume:    trade.Amount,
		Fee:       trade.Fee,
		Timestamp: ts,
	}
}

// Key returns the partition key of the event.
func (e *MatchEvent) Key() []byte {
	return []byte(e.Venue + ":" + e.Symbol)
}

// ToBytes converts the match event to a byte array.
func ToBytes(matchEvent *MatchEvent) []byte {
	json, err := json.Marshal(matchEvent)
	if err != nil {
		return nil
	}

	return json
}

// FromBytes converts a byte array to a match event.
func FromBytes(data []byte) *MatchEvent {
	var matchEvent MatchEvent
	err := json.Unmarshal(data, &matchEvent)
	if err != nil {
		return nil
	}
	return &matchEvent
}
