package historyv1

// TimestampKey is the key holding the step timestamp in a flattened record.
const TimestampKey = "ts"

// BalanceSnapshot is the venue state recorded after a step.
type BalanceSnapshot struct {
	Timestamp int64              `json:"ts"`
	Balances  map[string]float64 `json:"balances"`
	Mids      map[string]float64 `json:"mids"`
	Positions map[string]float64 `json:"positions,omitempty"`
}

// MidKey returns the flattened key of a symbol's mid price.
func MidKey(symbol string) string {
	return symbol + "_mid"
}

// PositionKey returns the flattened key of a symbol's derivative position.
func PositionKey(symbol string) string {
	return symbol + "_position"
}

// Flatten returns the record as {currency: qty, <symbol>_mid: mid, ts: timestamp}.
// Positions are added as <symbol>_position.
func (s BalanceSnapshot) Flatten() map[string]any {
	out := make(map[string]any, len(s.Balances)+len(s.Mids)+len(s.Positions)+1)
	for currency, qty := range s.Balances {
		out[currency] = qty
	}
	for symbol, mid := range s.Mids {
		out[MidKey(symbol)] = mid
	}
	for symbol, pos := range s.Positions {
		out[PositionKey(symbol)] = pos
	}
	out[TimestampKey] = s.Timestamp
	return out
}

// Values returns the record as (key, value) rows, the long format stored in
// the balance history table.
func (s BalanceSnapshot) Values() []Value {
	rows := make([]Value, 0, len(s.Balances)+len(s.Mids)+len(s.Positions))
	for currency, qty := range s.Balances {
		rows = append(rows, Value{Key: currency, Value: qty})
	}
	for symbol, mid := range s.Mids {
		rows = append(rows, Value{Key: MidKey(symbol), Value: mid})
	}
	for symbol, pos := range s.Positions {
		rows = append(rows, Value{Key: PositionKey(symbol), Value: pos})
	}
	return rows
}

// Value is one entry of a flattened snapshot.
type Value struct {
	Key   string
	Value float64
}
